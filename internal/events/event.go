// Package events publishes practice-session lifecycle events to RabbitMQ.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
)

// Type names a session lifecycle event
type Type string

const (
	SessionSaved     Type = "session.saved"
	SessionCompleted Type = "session.completed"
	SessionEnded     Type = "session.ended"
	SessionAborted   Type = "session.aborted"
)

// Event is the message body published for every lifecycle change
type Event struct {
	ID         uuid.UUID            `json:"id"`
	Type       Type                 `json:"type"`
	Player     string               `json:"spieler"`
	Record     domain.SessionRecord `json:"record"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// NewEvent creates an event stamped with a fresh id and the current time
func NewEvent(t Type, player string, rec domain.SessionRecord) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		Player:     player,
		Record:     rec,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops all events
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// LogPublisher writes events to the log instead of a broker
type LogPublisher struct {
	Logger *slog.Logger
}

func (p LogPublisher) Publish(ctx context.Context, e Event) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "session event",
		"event_id", e.ID,
		"type", e.Type,
		"spieler", e.Player,
		"status", e.Record.Status,
		"punkte", e.Record.Points,
	)
	return nil
}
