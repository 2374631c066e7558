package textnorm

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Clients on Windows consoles double-encode UTF-8: "×" (C3 97) arrives
// as "Ã—" or "Ã\u0097". Both start with one of these markers.
var mojibakeMarkers = []string{"Ã", "Â"}

// Round-trip encodings, tried in order. Latin-1 covers the C1 control
// variants, Windows-1252 the typographic ones ("Ã—", "Ã„").
var mojibakeEncodings = []*charmap.Charmap{
	charmap.ISO8859_1,
	charmap.Windows1252,
}

var mojibakeTable = strings.NewReplacer(
	"Ã×", "×",
	"Ã—", "×",
	"Ã·", "÷",
	"Ã,", "×,",
	"Ã„", "Ä",
	"Ã–", "Ö",
	"Ãœ", "Ü",
	"Ã¤", "ä",
	"Ã¶", "ö",
	"Ã¼", "ü",
	"ÃŸ", "ß",
)

// HasMojibake reports whether s carries a double-encoding marker
func HasMojibake(s string) bool {
	for _, m := range mojibakeMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// RepairMojibake undoes a UTF-8 → single-byte → UTF-8 double encoding.
// Strings without marker characters are returned unchanged.
func RepairMojibake(s string) string {
	if !HasMojibake(s) {
		return s
	}
	for _, cm := range mojibakeEncodings {
		if fixed, ok := roundTrip(cm, s); ok {
			return fixed
		}
	}
	return mojibakeTable.Replace(s)
}

func roundTrip(cm *charmap.Charmap, s string) (string, bool) {
	raw, err := cm.NewEncoder().String(s)
	if err != nil || !utf8.ValidString(raw) {
		return "", false
	}
	return raw, true
}
