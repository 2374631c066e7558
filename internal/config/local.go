// Package config loads the daemon configuration from ~/.zahlenpirat.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// LocalConfig holds the configuration of the daemon and the CLI
type LocalConfig struct {
	Daemon    DaemonConfig    `yaml:"daemon"`
	Storage   StorageConfig   `yaml:"storage"`
	Fallback  FallbackConfig  `yaml:"fallback"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Events    EventsConfig    `yaml:"events"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// DaemonConfig holds HTTP server settings
type DaemonConfig struct {
	Port     int    `yaml:"port"`
	Bind     string `yaml:"bind"`
	LogLevel string `yaml:"log_level"`
}

// Addr returns the listen address
func (d DaemonConfig) Addr() string {
	return fmt.Sprintf("%s:%d", d.Bind, d.Port)
}

// StorageConfig selects where settings and history live
type StorageConfig struct {
	Backend string `yaml:"backend"`
	// DataDir holds settings.json, scores.json and the SQLite file.
	// Relative paths are resolved against the config directory.
	DataDir     string `yaml:"data_dir"`
	DatabaseURL string `yaml:"-"` // secrets.yaml or DATABASE_URL
}

// FallbackConfig points at the remote save endpoints
type FallbackConfig struct {
	BaseURL        string `yaml:"base_url"`
	FallbackURL    string `yaml:"fallback_url,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// TelegramConfig holds bot settings
type TelegramConfig struct {
	Enabled            bool   `yaml:"enabled"`
	PollTimeoutSeconds int    `yaml:"poll_timeout_seconds"`
	Token              string `yaml:"-"`
}

// EventsConfig holds RabbitMQ publishing settings
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Queue   string `yaml:"queue"`
	URL     string `yaml:"-"`
}

// RateLimitConfig limits requests per client IP
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerSecond int  `yaml:"requests_per_second"`
	Burst             int  `yaml:"burst"`
}

// SecretsConfig holds credentials loaded from secrets.yaml
type SecretsConfig struct {
	TelegramToken string `yaml:"telegram_token,omitempty"`
	DatabaseURL   string `yaml:"database_url,omitempty"`
	RabbitMQURL   string `yaml:"rabbitmq_url,omitempty"`
}

// Dir returns the configuration directory: $ZAHLENPIRAT_HOME or
// ~/.zahlenpirat
func Dir() (string, error) {
	if dir := os.Getenv("ZAHLENPIRAT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".zahlenpirat"), nil
}

// EnsureDir creates the configuration directory and its subdirectories
func EnsureDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	for _, sub := range []string{"", "logs", "data"} {
		path := filepath.Join(dir, sub)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("create dir %s: %w", path, err)
		}
	}
	return dir, nil
}

// DefaultLocalConfig returns the configuration used when no file exists
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{
		Daemon: DaemonConfig{
			Port:     5000,
			Bind:     "127.0.0.1",
			LogLevel: "info",
		},
		Storage: StorageConfig{
			Backend: BackendJSON,
			DataDir: "data",
		},
		Fallback: FallbackConfig{
			TimeoutSeconds: 5,
		},
		Telegram: TelegramConfig{
			PollTimeoutSeconds: 30,
		},
		Events: EventsConfig{
			Queue: "zahlenpirat.sessions",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 10,
			Burst:             30,
		},
	}
}

// DataPath resolves the data directory against the config directory
func (c *LocalConfig) DataPath(dir string) string {
	if filepath.IsAbs(c.Storage.DataDir) {
		return c.Storage.DataDir
	}
	return filepath.Join(dir, c.Storage.DataDir)
}

// Validate reports configuration that cannot work
func (c *LocalConfig) Validate() error {
	var errs []error
	if c.Daemon.Port <= 0 || c.Daemon.Port > 65535 {
		errs = append(errs, fmt.Errorf("daemon.port %d out of range", c.Daemon.Port))
	}
	switch c.Storage.Backend {
	case BackendJSON, BackendSQLite:
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("storage.backend postgres needs database_url in secrets.yaml or DATABASE_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.backend %q", c.Storage.Backend))
	}
	if c.Telegram.Enabled && c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram.enabled needs telegram_token in secrets.yaml or TELEGRAM_BOT_TOKEN"))
	}
	if c.Events.Enabled && c.Events.URL == "" {
		errs = append(errs, errors.New("events.enabled needs rabbitmq_url in secrets.yaml or RABBITMQ_URL"))
	}
	return errors.Join(errs...)
}

// LoadLocalConfig reads config.yaml and secrets.yaml from Dir and applies
// environment overrides
func LoadLocalConfig() (*LocalConfig, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(dir)
}

// LoadFrom reads the configuration from dir
func LoadFrom(dir string) (*LocalConfig, error) {
	cfg := DefaultLocalConfig()

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := loadSecrets(dir, cfg); err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func loadSecrets(dir string, cfg *LocalConfig) error {
	data, err := os.ReadFile(filepath.Join(dir, "secrets.yaml"))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read secrets: %w", err)
	}

	var secrets SecretsConfig
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return fmt.Errorf("parse secrets: %w", err)
	}

	cfg.Telegram.Token = secrets.TelegramToken
	cfg.Storage.DatabaseURL = secrets.DatabaseURL
	cfg.Events.URL = secrets.RabbitMQURL
	return nil
}

// SaveLocalConfig writes config.yaml
func SaveLocalConfig(cfg *LocalConfig) error {
	dir, err := EnsureDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SaveSecrets writes secrets.yaml readable by the owner only
func SaveSecrets(secrets SecretsConfig) error {
	dir, err := EnsureDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("marshal secrets: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "secrets.yaml"), data, 0600); err != nil {
		return fmt.Errorf("write secrets: %w", err)
	}
	return nil
}
