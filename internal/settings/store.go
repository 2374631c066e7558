// Package settings persists user preferences and resolves the effective
// configuration of a chat session.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/storage/local"
	"github.com/felixgeelhaar/zahlenpirat/internal/textnorm"
)

// Store persists the "always" tier of settings
type Store interface {
	Load(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, s domain.Settings) error
	Reset(ctx context.Context) error
	// Update runs fn on the current settings and stores the map fn leaves
	// behind, as one step that no other writer can interleave with.
	// Nothing is stored when fn returns an error.
	Update(ctx context.Context, fn func(domain.Settings) error) error
}

// DocumentName is the file name (without extension) of the settings document
const DocumentName = "settings"

// FileStore keeps persistent settings in settings.json inside the data
// directory. A missing or unreadable document loads as empty settings.
type FileStore struct {
	docs *local.Store
	mu   sync.Mutex
}

// NewFileStore creates a settings store on top of a document store
func NewFileStore(docs *local.Store) *FileStore {
	return &FileStore{docs: docs}
}

// Load returns the persistent settings with mojibake repaired
func (s *FileStore) Load(ctx context.Context) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data domain.Settings
	if err := s.docs.Load("", DocumentName, &data); err != nil {
		if !errors.Is(err, local.ErrNotFound) {
			slog.Warn("settings document unreadable, using empty settings", "error", err)
		}
		return domain.Settings{}, nil
	}

	return repair(data), nil
}

// Save overwrites the persistent settings
func (s *FileStore) Save(ctx context.Context, data domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data == nil {
		data = domain.Settings{}
	}
	if err := s.docs.Save("", DocumentName, data); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Update is a locked read-modify-write of settings.json
func (s *FileStore) Update(ctx context.Context, fn func(domain.Settings) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := local.Update(s.docs, "", DocumentName, func(doc *domain.Settings) error {
		current := repair(*doc)
		if err := fn(current); err != nil {
			return err
		}
		*doc = current
		return nil
	})
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

// Reset stores an empty settings document
func (s *FileStore) Reset(ctx context.Context) error {
	return s.Save(ctx, domain.Settings{})
}

func repair(data domain.Settings) domain.Settings {
	out := make(domain.Settings, len(data))
	for k, v := range data {
		out[k] = textnorm.RepairMojibake(v)
	}
	return out
}

// Placeholder is shown for standard keys without a value
const Placeholder = "–"

// Defaults returns all standard keys for display, filling gaps with
// Placeholder. Values are not reformatted.
func Defaults(persistent domain.Settings) domain.Settings {
	out := make(domain.Settings, len(domain.StandardKeys))
	for _, k := range domain.StandardKeys {
		v := persistent[string(k)]
		if isBlank(v) {
			v = Placeholder
		}
		out[string(k)] = v
	}
	return out
}
