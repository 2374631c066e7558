// Package engine implements the chat dialog of Zahlenpirat.
//
// Every message of a session goes through Engine.HandleUserInput, which
// routes it according to the session's DialogMode:
//
//	reset command (any mode)
//	  -> memorize choice  (1 / 2 / 3 after a setting was proposed)
//	  -> task answer      (after demo, ahoi or a follow-up task)
//	  -> name dialog
//	  -> operator dialog
//	  -> idle command     (see Classify)
//
// Settings resolve explicit > session > persistent; see package settings.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/settings"
	"github.com/felixgeelhaar/zahlenpirat/internal/tasks"
	"github.com/felixgeelhaar/zahlenpirat/internal/textnorm"
)

// TaskSource produces the tasks asked in chat
type TaskSource interface {
	Next() tasks.Task
}

// Completion describes a finished practice round
type Completion struct {
	SessionID  string
	PlayerName string
	Record     domain.SessionRecord
}

// CompletionSink is notified when a round of TasksPerRound answers ends
type CompletionSink interface {
	SessionCompleted(ctx context.Context, c Completion) error
}

// Engine runs the dialog state machine for all sessions
type Engine struct {
	sessions SessionStore
	store    settings.Store
	tasks    TaskSource
	sink     CompletionSink
	logger   *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithSessions replaces the in-memory session store
func WithSessions(s SessionStore) Option {
	return func(e *Engine) { e.sessions = s }
}

// WithTaskSource replaces the random task generator
func WithTaskSource(t TaskSource) Option {
	return func(e *Engine) { e.tasks = t }
}

// WithCompletionSink registers a receiver for finished rounds
func WithCompletionSink(s CompletionSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine on top of the persistent settings store
func New(store settings.Store, opts ...Option) *Engine {
	e := &Engine{
		sessions: NewMemorySessions(),
		store:    store,
		tasks:    tasks.NewGenerator(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleUserInput processes one chat message and returns the reply.
// It always returns displayable text: internal failures are logged and
// answered with MsgApology.
func (e *Engine) HandleUserInput(ctx context.Context, sessionID, text string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic handling chat input",
				"session_id", sessionID,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			reply = MsgApology
		}
	}()

	reply, done, err := e.handleLocked(ctx, sessionID, text)
	if err != nil {
		e.logger.Error("handle chat input", "session_id", sessionID, "error", err)
		return MsgApology
	}

	if done != nil && e.sink != nil {
		if err := e.sink.SessionCompleted(ctx, *done); err != nil {
			e.logger.Error("record completed session", "session_id", sessionID, "error", err)
		}
	}
	return reply
}

func (e *Engine) handleLocked(ctx context.Context, sessionID, text string) (string, *Completion, error) {
	sess := e.sessions.GetOrCreate(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	before := sess.state.Mode
	reply, done, err := e.handle(ctx, sessionID, &sess.state, text)
	if after := sess.state.Mode; after != before {
		e.logger.Debug("dialog transition", "session_id", sessionID, "from", before, "to", after)
	}
	return reply, done, err
}

func (e *Engine) handle(ctx context.Context, sessionID string, st *State, raw string) (string, *Completion, error) {
	t := strings.TrimSpace(raw)

	if IsReset(t) {
		reply, err := e.reset(ctx, st)
		return reply, nil, err
	}

	switch st.Mode {
	case ModeAwaitingMemorizeChoice:
		reply, err := e.memorizeChoice(ctx, st, t)
		return reply, nil, err
	case ModeAwaitingTaskAnswer:
		return e.taskAnswer(ctx, sessionID, st, t)
	case ModeAwaitingName:
		return e.nameDialog(st, t), nil, nil
	case ModeAwaitingOperatorChoice:
		return e.operatorDialog(st, t), nil, nil
	}

	reply, err := e.idle(ctx, st, raw)
	return reply, nil, err
}

// reset wipes session and persistent standards. The dialog mode is left
// as it is.
func (e *Engine) reset(ctx context.Context, st *State) (string, error) {
	st.SessionStandards = domain.Settings{}
	if err := e.store.Reset(ctx); err != nil {
		return "", fmt.Errorf("reset persistent settings: %w", err)
	}
	return MsgReset, nil
}

func (e *Engine) memorizeChoice(ctx context.Context, st *State, choice string) (string, error) {
	if choice != "1" && choice != "2" && choice != "3" {
		return MsgChoicePrompt, nil
	}

	key, value := st.PendingKey, st.PendingValue
	st.clearPending()
	st.Mode = ModeIdle

	if key == "" {
		return MsgAborted, nil
	}
	value = textnorm.ForKey(key, value)

	switch choice {
	case "1":
		if key == domain.KeyName {
			st.PlayerName = value
		}
		return MsgOnceOnly, nil
	case "2":
		if key == domain.KeyName {
			st.PlayerName = value
		} else {
			st.SessionStandards.Set(key, value)
		}
		return MsgRememberSession, nil
	}

	err := e.store.Update(ctx, func(persistent domain.Settings) error {
		persistent.Set(key, value)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("save persistent settings: %w", err)
	}
	if key == domain.KeyName {
		st.PlayerName = value
	}
	return MsgRememberAlways, nil
}

func (e *Engine) taskAnswer(ctx context.Context, sessionID string, st *State, answer string) (string, *Completion, error) {
	if !IsNumericAnswer(answer) {
		return MsgNumberOnly, nil, nil
	}

	expected := strings.ReplaceAll(st.ExpectedAnswer, ",", ".")
	correct := sameAnswer(answer, expected)
	st.Mode = ModeIdle
	st.ExpectedAnswer = ""
	st.Stats.Record(correct)
	st.Round.Record(correct)

	var feedback string
	if correct {
		feedback = fmt.Sprintf("✅ Richtig, aye! ⚓\nDie Lösung ist %s.", expected)
	} else {
		feedback = fmt.Sprintf("❌ Leider falsch. Erwartet war: %s", expected)
	}

	if !st.Round.RoundComplete() {
		return feedback + "\n\n⚔️ Nächste Aufgabe: " + e.nextTask(st), nil, nil
	}

	persistent := e.loadPersistent(ctx)
	player := st.PlayerName
	if player == "" {
		player = persistent[string(domain.KeyName)]
	}

	holder := player
	if holder == "" {
		holder = sessionID
	}
	effective := settings.Canonicalize(settings.Resolve(nil, st.SessionStandards, persistent))
	record := domain.RecordFromSettings(holder, effective, st.Round)
	record.Status = domain.StatusCompleted

	reply := formatReport(feedback, player, st.Round)
	st.Round = domain.Stats{}

	return reply, &Completion{SessionID: sessionID, PlayerName: player, Record: record}, nil
}

func (e *Engine) nameDialog(st *State, candidate string) string {
	if !ValidName(candidate) {
		return MsgInvalidName
	}
	st.Mode = ModeAwaitingMemorizeChoice
	st.PendingKey = domain.KeyName
	st.PendingValue = candidate
	return FormatConfirmation(domain.KeyName, candidate)
}

func (e *Engine) operatorDialog(st *State, input string) string {
	ops := operatorsFromDigits(input)
	if len(ops) == 0 {
		return MsgOperatorDigits
	}
	value := strings.Join(ops, ",")
	st.Mode = ModeAwaitingMemorizeChoice
	st.PendingKey = domain.KeyOperators
	st.PendingValue = value
	return FormatConfirmation(domain.KeyOperators, value)
}

func (e *Engine) idle(ctx context.Context, st *State, raw string) (string, error) {
	switch cmd := Classify(raw).(type) {
	case CmdReset:
		return e.reset(ctx, st)

	case CmdSetting:
		st.Mode = ModeAwaitingMemorizeChoice
		st.PendingKey = cmd.Setting.Key
		st.PendingValue = cmd.Setting.Value
		return FormatConfirmation(cmd.Setting.Key, cmd.Setting.Value), nil

	case CmdName:
		if st.Mode == ModeAwaitingTaskAnswer {
			return MsgFinishTaskFirst, nil
		}
		current := e.loadPersistent(ctx)[string(domain.KeyName)]
		if current == "" {
			current = st.PlayerName
		}
		st.Mode = ModeAwaitingName
		return namePrompt(current), nil

	case CmdOperators:
		if st.Mode == ModeAwaitingTaskAnswer {
			return MsgFinishTaskFirst, nil
		}
		st.Mode = ModeAwaitingOperatorChoice
		return OperatorMenu(), nil

	case CmdDemo:
		st.Mode = ModeAwaitingTaskAnswer
		st.ExpectedAnswer = DemoAnswer
		return "Demo-Aufgabe: " + DemoQuestion, nil

	case CmdAhoi:
		return "⚔️ Erste Aufgabe: " + e.nextTask(st), nil

	case CmdShowSettings:
		merged := settings.Resolve(nil, st.SessionStandards, e.loadPersistent(ctx))
		if len(merged) == 0 {
			return MsgNoStandards, nil
		}
		return MsgCurrentStandards + "\n" + formatSettingsLines(merged), nil

	default:
		return "", fmt.Errorf("unhandled command %T", cmd)
	}
}

func (e *Engine) nextTask(st *State) string {
	task := e.tasks.Next()
	st.Mode = ModeAwaitingTaskAnswer
	st.ExpectedAnswer = task.Answer
	return task.Question
}

// loadPersistent reads the persistent tier for display purposes.
// Read failures degrade to empty settings.
func (e *Engine) loadPersistent(ctx context.Context) domain.Settings {
	persistent, err := e.store.Load(ctx)
	if err != nil {
		e.logger.Warn("load persistent settings", "error", err)
		return domain.Settings{}
	}
	if persistent == nil {
		return domain.Settings{}
	}
	return persistent
}

// EffectiveSettings returns the resolved settings of a session together
// with the session and persistent tiers they were resolved from.
func (e *Engine) EffectiveSettings(ctx context.Context, sessionID string) (settings.View, error) {
	snap := e.sessions.GetOrCreate(sessionID).Snapshot()

	persistent, err := e.store.Load(ctx)
	if err != nil {
		return settings.View{}, fmt.Errorf("load persistent settings: %w", err)
	}
	return settings.NewView(snap.SessionStandards, persistent), nil
}

// Snapshot returns a copy of a session's state. ok is false for
// unknown sessions.
func (e *Engine) Snapshot(sessionID string) (State, bool) {
	sess, ok := e.sessions.Get(sessionID)
	if !ok {
		return State{}, false
	}
	return sess.Snapshot(), true
}

// PersistentSettings returns the "always" tier
func (e *Engine) PersistentSettings(ctx context.Context) (domain.Settings, error) {
	return e.store.Load(ctx)
}

// SessionCount returns the number of known sessions
func (e *Engine) SessionCount() int {
	return e.sessions.Len()
}
