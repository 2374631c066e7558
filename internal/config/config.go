package config

import (
	"os"
	"strconv"
)

// applyEnv lets the environment override file values. Hosted
// deployments configure the daemon through these variables only.
func applyEnv(cfg *LocalConfig) {
	cfg.Daemon.Port = getEnvInt("PORT", cfg.Daemon.Port)
	cfg.Daemon.Bind = getEnv("ZAHLENPIRAT_BIND", cfg.Daemon.Bind)
	cfg.Daemon.LogLevel = getEnv("ZAHLENPIRAT_LOG_LEVEL", cfg.Daemon.LogLevel)
	cfg.Storage.Backend = getEnv("ZAHLENPIRAT_STORAGE", cfg.Storage.Backend)
	cfg.Storage.DatabaseURL = getEnv("DATABASE_URL", cfg.Storage.DatabaseURL)
	cfg.Fallback.BaseURL = getEnv("ZAHLENPIRAT_SAVE_URL", cfg.Fallback.BaseURL)
	cfg.Events.URL = getEnv("RABBITMQ_URL", cfg.Events.URL)
	cfg.Events.Enabled = getEnvBool("ZAHLENPIRAT_EVENTS", cfg.Events.Enabled)

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.Token = token
		cfg.Telegram.Enabled = true
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
