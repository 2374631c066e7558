package domain

import "strings"

// Key is a canonical setting key. Keys are case-sensitive.
type Key string

const (
	KeyOperators   Key = "Operatoren"
	KeyMode        Key = "Modus"
	KeyGrade       Key = "Klasse"
	KeyDifficulty  Key = "Schwierigkeit"
	KeyNumberRange Key = "Zahlenauswahl"
	KeyName        Key = "Name"
)

// StandardKeys are the keys that take part in precedence resolution,
// in display order.
var StandardKeys = []Key{
	KeyOperators,
	KeyMode,
	KeyGrade,
	KeyDifficulty,
	KeyNumberRange,
}

// AllKeys lists every canonical key, Name included.
var AllKeys = append(append([]Key(nil), StandardKeys...), KeyName)

// String returns the key as stored in JSON documents
func (k Key) String() string {
	return string(k)
}

// IsStandard reports whether the key is one of the five standard settings
func (k Key) IsStandard() bool {
	for _, s := range StandardKeys {
		if s == k {
			return true
		}
	}
	return false
}

// ParseKey resolves a key case-insensitively
func ParseKey(s string) (Key, bool) {
	s = strings.TrimSpace(s)
	for _, k := range AllKeys {
		if strings.EqualFold(string(k), s) {
			return k, true
		}
	}
	return "", false
}

// Canonical operator symbols, in menu order
const (
	OpAdd      = "+"
	OpSubtract = "-"
	OpMultiply = "×"
	OpDivide   = "÷"
)

// Operators is the canonical operator alphabet
var Operators = []string{OpAdd, OpSubtract, OpMultiply, OpDivide}

// IsOperator reports whether s is a canonical operator symbol
func IsOperator(s string) bool {
	switch s {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return true
	}
	return false
}

// Canonical difficulty labels
const (
	DifficultyEasy    = "Leicht"
	DifficultyMedium  = "Mittel"
	DifficultyHard    = "Schwer"
	DifficultyExtreme = "Extrem schwer"
)

// Modes maps the menu digits to the canonical mode labels
var Modes = map[string]string{
	"1": "Prüfung der Zahlen",
	"2": "Zahlenspiele",
	"3": "Lernen",
	"4": "Abenteuer & Extras",
	"5": "Erinnerung",
	"6": "Piraten-Minigames",
}
