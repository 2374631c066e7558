package engine

import (
	"sync"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
)

// DialogMode is the sub-dialog a session is currently in.
// Exactly one mode is active at any time.
type DialogMode int

const (
	ModeIdle DialogMode = iota
	ModeAwaitingMemorizeChoice
	ModeAwaitingName
	ModeAwaitingOperatorChoice
	ModeAwaitingTaskAnswer
)

func (m DialogMode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeAwaitingMemorizeChoice:
		return "awaiting_memorize_choice"
	case ModeAwaitingName:
		return "awaiting_name"
	case ModeAwaitingOperatorChoice:
		return "awaiting_operator_choice"
	case ModeAwaitingTaskAnswer:
		return "awaiting_task_answer"
	default:
		return "unknown"
	}
}

// MarshalText renders the mode by name in JSON snapshots
func (m DialogMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// State is the dialog state of one chat session
type State struct {
	Mode DialogMode `json:"mode"`

	// Setting proposed to the memorize dialog
	PendingKey   domain.Key `json:"pendingKey,omitempty"`
	PendingValue string     `json:"pendingValue,omitempty"`

	SessionStandards domain.Settings `json:"sessionStandards"`
	ExpectedAnswer   string          `json:"expectedAnswer,omitempty"`
	PlayerName       string          `json:"playerName,omitempty"`
	// Stats are the session totals and only grow. Round counts the
	// answers of the current round and restarts after each report.
	Stats domain.Stats `json:"stats"`
	Round domain.Stats `json:"round"`
}

func newState() State {
	return State{SessionStandards: domain.Settings{}}
}

func (s *State) clearPending() {
	s.PendingKey = ""
	s.PendingValue = ""
}

// clone returns a deep copy safe to hand out of the session lock
func (s State) clone() State {
	s.SessionStandards = s.SessionStandards.Clone()
	return s
}

// Session guards the state of one session id
type Session struct {
	mu    sync.Mutex
	state State
}

func newSession() *Session {
	return &Session{state: newState()}
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}
