// Package connector recognizes "key: value" settings commands in chat input.
package connector

import (
	"strings"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/textnorm"
)

// Setting is a parsed settings command with its normalized value
type Setting struct {
	Key   domain.Key
	Value string
}

var prefixes = []struct {
	prefix string
	key    domain.Key
}{
	{"operatoren:", domain.KeyOperators},
	{"modus:", domain.KeyMode},
	{"klasse:", domain.KeyGrade},
	{"schwierigkeit:", domain.KeyDifficulty},
	{"zahlenauswahl:", domain.KeyNumberRange},
	{"name:", domain.KeyName},
}

// Parse returns the setting named by text. ok is false when text is not
// a settings command.
func Parse(text string) (s Setting, ok bool) {
	t := strings.TrimSpace(text)
	low := strings.ToLower(t)

	for _, p := range prefixes {
		if !strings.HasPrefix(low, p.prefix) {
			continue
		}
		_, value, _ := strings.Cut(t, ":")
		return Setting{Key: p.key, Value: textnorm.ForKey(p.key, value)}, true
	}
	return Setting{}, false
}
