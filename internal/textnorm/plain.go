package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func isEmoji(r rune) bool {
	return (r >= 0x1F300 && r <= 0x1FAFF) ||
		(r >= 0x2600 && r <= 0x26FF) ||
		(r >= 0x2700 && r <= 0x27BF) ||
		r == 0xFE0F || r == 0x20E3
}

// StripEmoji removes emoji, dingbats and keycap modifiers
func StripEmoji(s string) string {
	return strings.Map(func(r rune) rune {
		if isEmoji(r) {
			return -1
		}
		return r
	}, s)
}

var plainReplacer = strings.NewReplacer(
	"„", `"`, "“", `"`, "‚", "'", "’", "'",
	"…", "...", "—", "-", "–", "-",
	"•", "- ", "·", "-", "×", "x", "÷", "/",
	"→", "->", "←", "<-", "±", "+/-",
	"Ä", "Ae", "Ö", "Oe", "Ü", "Ue",
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
	"\u00a0", " ",
)

// ToPlain renders bot text as plain ASCII for terminals that cannot show
// emoji or umlauts.
func ToPlain(s string) string {
	t := plainReplacer.Replace(StripEmoji(s))

	fold := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	if folded, _, err := transform.String(fold, t); err == nil {
		t = folded
	}

	t = strings.ReplaceAll(t, "\r\n", "\n")
	lines := strings.Split(strings.TrimRight(t, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	t = strings.Join(lines, "\n")

	for strings.Contains(t, "  ") {
		t = strings.ReplaceAll(t, "  ", " ")
	}
	return t
}
