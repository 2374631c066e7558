package engine

import (
	"testing"

	"github.com/felixgeelhaar/zahlenpirat/internal/connector"
	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{"standard zurücksetzen", CmdReset{}},
		{"Standard Zurücksetzen", CmdReset{}},
		{"operatoren: x", CmdSetting{Setting: connector.Setting{Key: domain.KeyOperators, Value: "×"}}},
		{"Name: Lea", CmdSetting{Setting: connector.Setting{Key: domain.KeyName, Value: "Lea"}}},
		{"name", CmdName{}},
		{"Spieler", CmdName{}},
		{"name ändern", CmdName{}},
		{"name aendern", CmdName{}},
		{"operatoren", CmdOperators{}},
		{"operator", CmdOperators{}},
		{" OPS ", CmdOperators{}},
		{"demo", CmdDemo{}},
		{"Ahoi", CmdAhoi{}},
		{"ahoi matrosen", CmdShowSettings{}},
		{"", CmdShowSettings{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Classify(tt.in); got != tt.want {
				t.Errorf("Classify(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsNumericAnswer(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"12", true},
		{"-3", true},
		{" 7 ", true},
		{"2,5", true},
		{"2.5", true},
		{"-0,75", true},
		{",5", true},
		{"3/4", true},
		{"-3/-4", true},
		{"3 / 4", true},
		{"", false},
		{"zwölf", false},
		{"1-2", false},
		{"--3", false},
		{"1.2.3", false},
		{"3/4/5", false},
		{"/4", false},
		{"3/", false},
	}

	for _, tt := range tests {
		if got := IsNumericAnswer(tt.in); got != tt.want {
			t.Errorf("IsNumericAnswer(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSameAnswer(t *testing.T) {
	if !sameAnswer("2,5", "2.5") {
		t.Error("comma and dot decimals should match")
	}
	if sameAnswer("12.0", "12") {
		t.Error("answers are compared textually")
	}
}

func TestDialogMode_String(t *testing.T) {
	modes := []DialogMode{ModeIdle, ModeAwaitingMemorizeChoice, ModeAwaitingName, ModeAwaitingOperatorChoice, ModeAwaitingTaskAnswer}
	seen := map[string]bool{}
	for _, m := range modes {
		s := m.String()
		if s == "unknown" || seen[s] {
			t.Errorf("mode %d has bad name %q", m, s)
		}
		seen[s] = true
	}
}
