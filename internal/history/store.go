// Package history records practice sessions per player.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/storage/local"
)

// Store is the per-player session log. Appends and updates of one
// player never lose concurrent writes.
type Store interface {
	Append(ctx context.Context, player string, rec domain.SessionRecord) error
	List(ctx context.Context, player string) ([]domain.SessionRecord, error)
	// UpdateLast applies fn to the player's most recent record and stores
	// the result when fn reports a change. Players without records yield
	// domain.ErrNoSession.
	UpdateLast(ctx context.Context, player string, fn func(rec *domain.SessionRecord) bool) (domain.SessionRecord, error)
	Players(ctx context.Context) ([]string, error)
}

// DocumentName is the file name (without extension) of the history document
const DocumentName = "scores"

// errUnchanged aborts an update without writing
var errUnchanged = errors.New("unchanged")

type playerHistory struct {
	Sessions []domain.SessionRecord `json:"sessions"`
}

type scoresDocument map[string]*playerHistory

// FileStore keeps the history of all players in scores.json.
// A missing or corrupt document reads as empty.
type FileStore struct {
	docs *local.Store
}

// NewFileStore creates a history store on top of a document store
func NewFileStore(docs *local.Store) *FileStore {
	return &FileStore{docs: docs}
}

func (s *FileStore) Append(ctx context.Context, player string, rec domain.SessionRecord) error {
	err := local.Update(s.docs, "", DocumentName, func(doc *scoresDocument) error {
		if *doc == nil {
			*doc = scoresDocument{}
		}
		h := (*doc)[player]
		if h == nil {
			h = &playerHistory{}
			(*doc)[player] = h
		}
		h.Sessions = append(h.Sessions, rec)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append session: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context, player string) ([]domain.SessionRecord, error) {
	doc := s.load()
	h := doc[player]
	if h == nil {
		return []domain.SessionRecord{}, nil
	}
	return h.Sessions, nil
}

func (s *FileStore) UpdateLast(ctx context.Context, player string, fn func(rec *domain.SessionRecord) bool) (domain.SessionRecord, error) {
	var out domain.SessionRecord

	err := local.Update(s.docs, "", DocumentName, func(doc *scoresDocument) error {
		h := (*doc)[player]
		if h == nil || len(h.Sessions) == 0 {
			return domain.ErrNoSession
		}
		last := &h.Sessions[len(h.Sessions)-1]
		changed := fn(last)
		out = *last
		if !changed {
			return errUnchanged
		}
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return out, nil
	}
	if err != nil {
		return domain.SessionRecord{}, err
	}
	return out, nil
}

func (s *FileStore) Players(ctx context.Context) ([]string, error) {
	doc := s.load()
	players := make([]string, 0, len(doc))
	for p := range doc {
		players = append(players, p)
	}
	sort.Strings(players)
	return players, nil
}

func (s *FileStore) load() scoresDocument {
	var doc scoresDocument
	if err := s.docs.Load("", DocumentName, &doc); err != nil {
		if !errors.Is(err, local.ErrNotFound) {
			slog.Warn("history document unreadable, using empty history", "error", err)
		}
		return scoresDocument{}
	}
	return doc
}
