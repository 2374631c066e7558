package engine

import (
	"slices"
	"strings"

	"github.com/felixgeelhaar/zahlenpirat/internal/connector"
)

// Command is an idle-state chat command. The concrete types below are
// the complete set; Classify never returns nil.
type Command interface {
	command()
}

type (
	// CmdReset clears session and persistent standards
	CmdReset struct{}
	// CmdSetting proposes a "key: value" setting
	CmdSetting struct{ Setting connector.Setting }
	// CmdName opens the name dialog
	CmdName struct{}
	// CmdOperators opens the operator menu
	CmdOperators struct{}
	// CmdDemo starts the fixed demo task
	CmdDemo struct{}
	// CmdAhoi starts a round with a generated task
	CmdAhoi struct{}
	// CmdShowSettings is the fallback for anything else
	CmdShowSettings struct{}
)

func (CmdReset) command()        {}
func (CmdSetting) command()      {}
func (CmdName) command()         {}
func (CmdOperators) command()    {}
func (CmdDemo) command()         {}
func (CmdAhoi) command()         {}
func (CmdShowSettings) command() {}

// ResetPhrase is the command that wipes all standards
const ResetPhrase = "standard zurücksetzen"

var (
	nameWords     = []string{"name", "spieler", "name ändern", "name aendern"}
	operatorWords = []string{"operatoren", "operator", "ops"}
)

// IsReset reports whether text is the reset command
func IsReset(text string) bool {
	return strings.ToLower(strings.TrimSpace(text)) == ResetPhrase
}

// Classify maps free text to a command
func Classify(text string) Command {
	if IsReset(text) {
		return CmdReset{}
	}
	if s, ok := connector.Parse(text); ok {
		return CmdSetting{Setting: s}
	}

	low := strings.ToLower(strings.TrimSpace(text))
	switch {
	case slices.Contains(nameWords, low):
		return CmdName{}
	case slices.Contains(operatorWords, low):
		return CmdOperators{}
	case low == "demo":
		return CmdDemo{}
	case low == "ahoi":
		return CmdAhoi{}
	}
	return CmdShowSettings{}
}
