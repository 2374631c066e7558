package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/engine"
	"github.com/felixgeelhaar/zahlenpirat/internal/events"
)

// Service records sessions and drives their status transitions
type Service struct {
	store     Store
	publisher events.Publisher
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithPublisher publishes lifecycle events for every change
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides session id generation
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a history service
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: events.NopPublisher{},
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save appends a record to the player's history. Missing fields get
// their defaults; sessionId and datum are always generated.
func (s *Service) Save(ctx context.Context, player string, rec domain.SessionRecord) (domain.SessionRecord, error) {
	return s.save(ctx, player, rec, events.SessionSaved)
}

// SessionCompleted records a finished chat round under the player's
// name. Rounds of anonymous sessions are keyed by the session id.
func (s *Service) SessionCompleted(ctx context.Context, done engine.Completion) error {
	player := strings.TrimSpace(done.PlayerName)
	if player == "" {
		player = done.SessionID
	}
	_, err := s.RecordCompleted(ctx, player, done.Record)
	return err
}

// RecordCompleted stores a finished round and announces it
func (s *Service) RecordCompleted(ctx context.Context, player string, rec domain.SessionRecord) (domain.SessionRecord, error) {
	rec.Status = domain.StatusCompleted
	return s.save(ctx, player, rec, events.SessionCompleted)
}

func (s *Service) save(ctx context.Context, player string, rec domain.SessionRecord, kind events.Type) (domain.SessionRecord, error) {
	player = strings.TrimSpace(player)
	if player == "" {
		return domain.SessionRecord{}, domain.ErrEmptyPlayer
	}
	if rec.Status != "" && !rec.Status.Valid() {
		return domain.SessionRecord{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, rec.Status)
	}

	rec.ApplyDefaults()
	if rec.Player == "" {
		rec.Player = player
	}
	rec.SessionID = s.newID()
	rec.Date = domain.Timestamp(s.now())

	if err := s.store.Append(ctx, player, rec); err != nil {
		return domain.SessionRecord{}, err
	}

	s.publish(ctx, kind, player, rec)
	return rec, nil
}

// History returns all sessions of a player, oldest first
func (s *Service) History(ctx context.Context, player string) ([]domain.SessionRecord, error) {
	return s.store.List(ctx, player)
}

// Transition is the outcome of End or Abort
type Transition struct {
	Changed bool                 `json:"changed"`
	Message string               `json:"message"`
	Session domain.SessionRecord `json:"session"`
}

// End marks the player's most recent running session as completed
func (s *Service) End(ctx context.Context, player string) (Transition, error) {
	return s.transition(ctx, player, domain.StatusCompleted, "Session abgeschlossen", events.SessionEnded)
}

// Abort marks the player's most recent running session as aborted
func (s *Service) Abort(ctx context.Context, player string) (Transition, error) {
	return s.transition(ctx, player, domain.StatusAborted, "Session abgebrochen", events.SessionAborted)
}

func (s *Service) transition(ctx context.Context, player string, to domain.Status, msg string, kind events.Type) (Transition, error) {
	changed := false
	rec, err := s.store.UpdateLast(ctx, player, func(rec *domain.SessionRecord) bool {
		if rec.Status != domain.StatusRunning {
			return false
		}
		rec.Status = to
		rec.DateEnd = domain.Timestamp(s.now())
		changed = true
		return true
	})
	if err != nil {
		return Transition{}, err
	}

	if !changed {
		return Transition{
			Message: fmt.Sprintf("Letzte Session ist bereits '%s'.", rec.Status),
			Session: rec,
		}, nil
	}

	s.publish(ctx, kind, player, rec)
	return Transition{Changed: true, Message: msg, Session: rec}, nil
}

// NoSessionMessage is the user-facing text for players without history
func NoSessionMessage(player string) string {
	return fmt.Sprintf("Keine Session für Spieler '%s' gefunden.", player)
}

// IsNoSession reports whether err means the player has no history
func IsNoSession(err error) bool {
	return errors.Is(err, domain.ErrNoSession)
}

// LeaderboardEntry is one ranked session
type LeaderboardEntry struct {
	Rank   int    `json:"rang"`
	Player string `json:"spieler"`
	Points int    `json:"punkte"`
	Mode   string `json:"modus"`
	Date   string `json:"datum"`
}

// Leaderboard ranks all recorded sessions by points
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	players, err := s.store.Players(ctx)
	if err != nil {
		return nil, err
	}

	var entries []LeaderboardEntry
	for _, p := range players {
		recs, err := s.store.List(ctx, p)
		if err != nil {
			return nil, err
		}
		for _, r := range recs {
			entries = append(entries, LeaderboardEntry{Player: p, Points: r.Points, Mode: r.Mode, Date: r.Date})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (s *Service) publish(ctx context.Context, kind events.Type, player string, rec domain.SessionRecord) {
	if err := s.publisher.Publish(ctx, events.NewEvent(kind, player, rec)); err != nil {
		s.logger.Warn("publish session event", "type", kind, "spieler", player, "error", err)
	}
}
