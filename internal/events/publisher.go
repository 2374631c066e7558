package events

import (
	"context"
	"fmt"
	"log/slog"
)

// AMQPPublisher publishes events to the RabbitMQ event queue
type AMQPPublisher struct {
	conn *Connection
}

// NewAMQPPublisher creates a publisher on an open connection
func NewAMQPPublisher(conn *Connection) *AMQPPublisher {
	return &AMQPPublisher{conn: conn}
}

// Publish sends one event
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	if err := p.conn.PublishJSON(ctx, e); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}

	slog.Debug("published session event",
		"event_id", e.ID,
		"type", e.Type,
		"spieler", e.Player,
	)
	return nil
}

// Close closes the underlying connection
func (p *AMQPPublisher) Close() error {
	return p.conn.Close()
}
