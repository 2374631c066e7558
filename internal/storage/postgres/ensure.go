package postgres

import (
	"github.com/felixgeelhaar/zahlenpirat/internal/history"
	"github.com/felixgeelhaar/zahlenpirat/internal/settings"
)

// Ensure PostgreSQL stores implement the storage interfaces.
var (
	_ settings.Store = (*SettingsStore)(nil)
	_ history.Store  = (*HistoryStore)(nil)
)
