package engine

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/settings"
	"github.com/felixgeelhaar/zahlenpirat/internal/textnorm"
)

// User-facing texts
const (
	MsgApology          = "⚠️ Da ist etwas schiefgelaufen. Bitte versuche es nochmal."
	MsgReset            = "♻️ Alle Standards zurückgesetzt."
	MsgAborted          = "🔓 Abgebrochen."
	MsgOnceOnly         = "🔓 Alles klar – nur jetzt gültig."
	MsgRememberSession  = "🗂️ Gemerkt für diese Sitzung."
	MsgRememberAlways   = "📌 Standard gespeichert."
	MsgChoicePrompt     = "👉 Antworte mit „1“, „2“ oder „3“."
	MsgNumberOnly       = "Bitte gib **nur die Antwort als Zahl** ein (z. B. 12, -3, 3/4 oder 2,5)."
	MsgInvalidName      = "Bitte gib nur deinen Namen ein (max. 20 Zeichen)."
	MsgOperatorDigits   = "Bitte antworte mit Ziffern 1..4."
	MsgFinishTaskFirst  = "Beantworte zuerst die aktuelle Aufgabe."
	MsgNoStandards      = "Weiter ohne gesetzte Standards."
	MsgCurrentStandards = "Weiter mit aktuellen Einstellungen:"
	MsgNamePrompt       = "Wie möchtest du genannt werden?"

	DemoQuestion = "7 + 5 = ?"
	DemoAnswer   = "12"
)

const memorizeMenu = "🧩 Möchtest du diese Auswahl merken?\n" +
	"1️⃣ Nur dieses Mal\n" +
	"2️⃣ Für dieses Gespräch merken\n" +
	"3️⃣ Immer zulassen (Standard setzen)\n\n" +
	MsgChoicePrompt

const operatorMenu = "Welche Operatoren möchtest du verwenden?\n" +
	"1) +  (Addition)\n" +
	"2) -  (Subtraktion)\n" +
	"3) ×  (Multiplikation)\n" +
	"4) ÷  (Division)\n\n" +
	"Mehrere möglich – antworte z. B. mit „13“ oder „1,3“."

var operatorPhrases = map[string]string{
	domain.OpAdd:      "➕ Addition („+“) – Der Schatz wird größer!",
	domain.OpSubtract: "➖ Subtraktion („−“) – Teile gerecht!",
	domain.OpMultiply: "✖️ Multiplikation („×“) – Segel setzen!",
	domain.OpDivide:   "➗ Division („÷“) – gerecht aufteilen!",
}

// FormatConfirmation describes a proposed setting and appends the
// memorize menu.
func FormatConfirmation(key domain.Key, value string) string {
	prefix := fmt.Sprintf("%s: %s", key, value)

	if key == domain.KeyOperators {
		value = textnorm.NormalizeOperatorValue(value)
		prefix = fmt.Sprintf("%s: %s", key, value)

		var parts []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		switch {
		case len(parts) > 1:
			lines := make([]string, len(parts))
			for i, p := range parts {
				if phrase, ok := operatorPhrases[p]; ok {
					lines[i] = phrase
				} else {
					lines[i] = fmt.Sprintf("Operator „%s“", p)
				}
			}
			prefix = strings.Join(lines, "\n")
		case len(parts) == 1:
			if phrase, ok := operatorPhrases[parts[0]]; ok {
				prefix = phrase
			}
		}
	}

	return prefix + "\n\n" + memorizeMenu
}

// OperatorMenu is shown when the operator dialog opens
func OperatorMenu() string {
	return operatorMenu
}

func namePrompt(current string) string {
	if current == "" {
		return MsgNamePrompt
	}
	return fmt.Sprintf("%s (Aktuell: %s)", MsgNamePrompt, current)
}

func formatSettingsLines(s domain.Settings) string {
	var lines []string
	for _, k := range domain.StandardKeys {
		if v, ok := s[string(k)]; ok {
			lines = append(lines, fmt.Sprintf("%s: %s", k, v))
		}
	}
	return strings.Join(lines, "\n")
}

func formatReport(feedback, player string, stats domain.Stats) string {
	addressed := player
	if addressed == "" {
		addressed = "Piratenfreund"
	}
	savedFor := player
	if savedFor == "" {
		savedFor = "Anonymer Matrose"
	}

	var b strings.Builder
	b.WriteString(feedback)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "👉 %s, das war deine %d. Aufgabe – die Prüfung ist beendet! 🏴‍☠️\n\n", addressed, domain.TasksPerRound)
	b.WriteString("🏁 Prüfung beendet!\n")
	fmt.Fprintf(&b, "✅ Richtige Antworten: %d\n", stats.TasksSolved)
	fmt.Fprintf(&b, "❌ Falsche Antworten: %d\n", stats.Wrong())
	fmt.Fprintf(&b, "🏆 Gesamtpunkte: %d\n", stats.Points)
	fmt.Fprintf(&b, "📖 Note: %s\n", domain.Grade(stats.TasksSolved))
	b.WriteString("⏳ Dauer: ca. wenige Minuten\n\n")
	fmt.Fprintf(&b, "💾 Spielstand gespeichert für %s! ⚓\n", savedFor)
	b.WriteString("👉 Was möchtest du tun?\n")
	b.WriteString("1️⃣ Nochmal spielen\n")
	b.WriteString("2️⃣ Schwierigkeit erhöhen\n")
	b.WriteString("3️⃣ Zurück zum Start")
	return b.String()
}

const startMenu = "1️⃣ 🧭 Test\n" +
	"2️⃣ 🏴‍☠️ Zahlenspiele\n" +
	"3️⃣ 🗺️ Lernen\n" +
	"4️⃣ ⚓ Abenteuer & Extras\n"

// StartMenu renders the main menu followed by the loaded standards, if any
func StartMenu(persistent domain.Settings) string {
	if len(persistent) == 0 {
		return startMenu
	}

	disp := settings.Defaults(persistent)
	var b strings.Builder
	b.WriteString(startMenu)
	b.WriteString("\n🔧 Geladene Standards:\n")
	for _, k := range domain.StandardKeys {
		fmt.Fprintf(&b, "• %s: \"%s\"\n", k, disp[string(k)])
	}
	return b.String()
}

// FormatView renders the three settings tiers as text blocks
func FormatView(v settings.View) string {
	return strings.Join([]string{
		formatBlock("Effective (aktiv)", v.Effective),
		formatBlock("Session (nur dieses Gespraech)", v.Session),
		formatBlock("Persistent (immer)", v.Persistent),
	}, "\n\n")
}

func formatBlock(title string, s domain.Settings) string {
	if len(s) == 0 {
		return title + ":\n- (leer)"
	}
	lines := []string{title + ":"}
	for _, k := range domain.StandardKeys {
		if v, ok := s[string(k)]; ok {
			lines = append(lines, fmt.Sprintf("- %s: %s", k, v))
		}
	}
	return strings.Join(lines, "\n")
}
