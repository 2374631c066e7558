package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Status is the lifecycle status of a recorded practice session
type Status string

const (
	StatusRunning   Status = "laufend"
	StatusCompleted Status = "abgeschlossen"
	StatusAborted   Status = "abgebrochen"
)

// Valid reports whether the status is one of the known values
func (s Status) Valid() bool {
	switch s {
	case StatusRunning, StatusCompleted, StatusAborted:
		return true
	}
	return false
}

// DefaultMode is recorded when a session carries no mode
const DefaultMode = "Test"

// SessionRecord is one entry of a player's practice history.
// Field names follow the JSON layout of the scores file.
type SessionRecord struct {
	Player      string       `json:"spieler,omitempty"`
	Mode        string       `json:"modus"`
	Grade       *FlexString  `json:"klasse"`
	Difficulty  *FlexString  `json:"schwierigkeit"`
	Operators   OperatorList `json:"operatoren"`
	NumberRange string       `json:"zahlenauswahl,omitempty"`
	Status      Status       `json:"status"`
	TasksTotal  int          `json:"aufgabenGesamt"`
	TasksSolved int          `json:"aufgabenGeloest"`
	Points      int          `json:"punkte"`
	SessionID   string       `json:"sessionId"`
	Date        string       `json:"datum"`
	DateEnd     string       `json:"datumEnde,omitempty"`
}

// ApplyDefaults fills the fields a client may omit
func (r *SessionRecord) ApplyDefaults() {
	if r.Mode == "" {
		r.Mode = DefaultMode
	}
	if r.Status == "" {
		r.Status = StatusAborted
	}
	if r.Operators == nil {
		r.Operators = OperatorList{}
	}
}

// RecordFromSettings builds a running record from effective settings and stats
func RecordFromSettings(player string, s Settings, stats Stats) SessionRecord {
	rec := SessionRecord{
		Player:      player,
		Mode:        s[string(KeyMode)],
		Operators:   ParseOperatorList(s[string(KeyOperators)]),
		NumberRange: s[string(KeyNumberRange)],
		Status:      StatusRunning,
		TasksTotal:  stats.TasksTotal,
		TasksSolved: stats.TasksSolved,
		Points:      stats.Points,
	}
	if v := s[string(KeyGrade)]; v != "" {
		rec.Grade = NewFlexString(v)
	}
	if v := s[string(KeyDifficulty)]; v != "" {
		rec.Difficulty = NewFlexString(v)
	}
	rec.ApplyDefaults()
	return rec
}

// Timestamp formats t the way record dates are stored
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FlexString accepts both JSON strings and numbers.
// Clients send the grade as either "3" or 3.
type FlexString string

// NewFlexString returns a pointer to v
func NewFlexString(v string) *FlexString {
	f := FlexString(v)
	return &f
}

// String returns the raw value
func (f *FlexString) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// Int returns the numeric value, or def when it is not an integer
func (f *FlexString) Int(def int) int {
	if f == nil {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(*f)))
	if err != nil {
		return def
	}
	return n
}

// OperatorList accepts a JSON array or a comma separated string
type OperatorList []string

// ParseOperatorList splits a comma joined operator value
func ParseOperatorList(s string) OperatorList {
	out := OperatorList{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (o *OperatorList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*o = OperatorList{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = ParseOperatorList(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*o = list
	return nil
}
