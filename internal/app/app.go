// Package app wires storage, events and the chat engine from the local
// configuration. It is shared by the daemon and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/zahlenpirat/internal/config"
	"github.com/felixgeelhaar/zahlenpirat/internal/engine"
	"github.com/felixgeelhaar/zahlenpirat/internal/events"
	"github.com/felixgeelhaar/zahlenpirat/internal/history"
	"github.com/felixgeelhaar/zahlenpirat/internal/settings"
	"github.com/felixgeelhaar/zahlenpirat/internal/storage/local"
	"github.com/felixgeelhaar/zahlenpirat/internal/storage/postgres"
	"github.com/felixgeelhaar/zahlenpirat/internal/storage/sqlite"
	"github.com/felixgeelhaar/zahlenpirat/internal/tasks"
)

// SQLiteFile is the database file name inside the data directory
const SQLiteFile = "zahlenpirat.db"

// Services bundles everything the front-ends need
type Services struct {
	Settings settings.Store
	History  *history.Service
	Engine   *engine.Engine
	Tasks    *tasks.Generator
	// Fallback is nil unless fallback.base_url is configured
	Fallback *history.FallbackSaver

	closers []func() error
}

// Build opens the configured storage backend and event publisher and
// assembles the services on top of them. dir is the config directory.
func Build(ctx context.Context, cfg *config.LocalConfig, dir string, logger *slog.Logger) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Services{Tasks: tasks.NewGenerator()}

	historyStore, err := s.openStorage(ctx, cfg, dir, logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	publisher, err := s.openPublisher(cfg, logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.History = history.NewService(historyStore,
		history.WithPublisher(publisher),
		history.WithLogger(logger),
	)
	s.Engine = engine.New(s.Settings,
		engine.WithTaskSource(s.Tasks),
		engine.WithCompletionSink(s.History),
		engine.WithLogger(logger),
	)

	if cfg.Fallback.BaseURL != "" {
		s.Fallback = history.NewFallbackSaver(history.FallbackConfig{
			BaseURL:     cfg.Fallback.BaseURL,
			FallbackURL: cfg.Fallback.FallbackURL,
			Timeout:     time.Duration(cfg.Fallback.TimeoutSeconds) * time.Second,
			Logger:      logger,
		})
	}

	return s, nil
}

func (s *Services) openStorage(ctx context.Context, cfg *config.LocalConfig, dir string, logger *slog.Logger) (history.Store, error) {
	dataDir := cfg.DataPath(dir)

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		db, err := sqlite.Open(filepath.Join(dataDir, SQLiteFile))
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		s.Settings = sqlite.NewSettingsStore(db)
		logger.Info("storage ready", "backend", config.BackendSQLite, "path", dataDir)
		return sqlite.NewHistoryStore(db), nil

	case config.BackendPostgres:
		if cfg.Storage.DatabaseURL == "" {
			return nil, errors.New("postgres backend needs a database url (DATABASE_URL or secrets.yaml)")
		}
		pool, err := postgres.Connect(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() error { pool.Close(); return nil })
		s.Settings = postgres.NewSettingsStore(pool)
		logger.Info("storage ready", "backend", config.BackendPostgres)
		return postgres.NewHistoryStore(pool), nil

	default:
		docs, err := local.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("open data dir: %w", err)
		}
		s.Settings = settings.NewFileStore(docs)
		logger.Info("storage ready", "backend", config.BackendJSON, "path", dataDir)
		return history.NewFileStore(docs), nil
	}
}

func (s *Services) openPublisher(cfg *config.LocalConfig, logger *slog.Logger) (events.Publisher, error) {
	if !cfg.Events.Enabled || cfg.Events.URL == "" {
		return events.LogPublisher{Logger: logger}, nil
	}

	conn, err := events.NewConnection(events.ConnectionConfig{
		URL:   cfg.Events.URL,
		Queue: cfg.Events.Queue,
	})
	if err != nil {
		return nil, fmt.Errorf("connect event broker: %w", err)
	}
	pub := events.NewAMQPPublisher(conn)
	s.closers = append(s.closers, pub.Close)
	logger.Info("publishing session events", "queue", conn.Queue())
	return pub, nil
}

// Close releases storage and broker connections in reverse order
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
