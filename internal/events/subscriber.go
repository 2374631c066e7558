package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Handler processes one received event
type Handler func(ctx context.Context, e Event) error

// Subscribe consumes events from the queue until ctx is cancelled.
// Messages that fail to decode are dropped; handler errors requeue the
// message once.
func Subscribe(ctx context.Context, conn *Connection, handler Handler) error {
	ch := conn.Channel()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		conn.Queue(),
		"",    // consumer tag (auto-generated)
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}

			var e Event
			if err := json.Unmarshal(msg.Body, &e); err != nil {
				slog.Error("failed to decode session event", "error", err)
				msg.Nack(false, false)
				continue
			}

			if err := handler(ctx, e); err != nil {
				slog.Error("session event handler failed", "event_id", e.ID, "error", err)
				msg.Nack(false, !msg.Redelivered)
				continue
			}
			msg.Ack(false)
		}
	}
}
