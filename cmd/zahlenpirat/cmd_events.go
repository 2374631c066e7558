package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/zahlenpirat/internal/config"
	"github.com/felixgeelhaar/zahlenpirat/internal/events"
)

var eventsJSON bool

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect session events on RabbitMQ",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print session events as they arrive",
	RunE:  runEventsTail,
}

func init() {
	eventsTailCmd.Flags().BoolVar(&eventsJSON, "json", false, "Print raw JSON events")
	eventsCmd.AddCommand(eventsTailCmd)
}

func runEventsTail(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadLocalConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Events.URL == "" {
		return errors.New("no RabbitMQ URL configured (rabbitmq_url in secrets.yaml or RABBITMQ_URL)")
	}

	conn, err := events.NewConnection(events.ConnectionConfig{URL: cfg.Events.URL, Queue: cfg.Events.Queue})
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(cmd.ErrOrStderr(), "Listening on %s (Ctrl-C to stop)\n", conn.Queue())
	return events.Subscribe(ctx, conn, func(_ context.Context, e events.Event) error {
		return printEvent(out, e, eventsJSON)
	})
}

func printEvent(out io.Writer, e events.Event, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(out).Encode(e)
	}
	_, err := fmt.Fprintf(out, "%s  %-18s %-12s status=%s punkte=%d\n",
		e.OccurredAt.Local().Format("15:04:05"), e.Type, e.Player, e.Record.Status, e.Record.Points)
	return err
}
