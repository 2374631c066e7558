package settings

import (
	"context"
	"strings"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/textnorm"
)

// View is the three-tier picture of a session's settings
type View struct {
	Effective  domain.Settings `json:"effective"`
	Session    domain.Settings `json:"session"`
	Persistent domain.Settings `json:"persistent"`
}

// Resolve merges the tiers for the standard keys. For every key the first
// non-empty value of explicit, session and persistent wins; keys without
// any value are absent from the result.
func Resolve(explicit, session, persistent domain.Settings) domain.Settings {
	out := make(domain.Settings)
	for _, k := range domain.StandardKeys {
		for _, tier := range []domain.Settings{explicit, session, persistent} {
			if v := tier[string(k)]; v != "" {
				out[string(k)] = v
				break
			}
		}
	}
	return out
}

// normalizable are the keys with a dedicated normalizer
var normalizable = []domain.Key{domain.KeyOperators, domain.KeyDifficulty, domain.KeyMode}

// Canonicalize returns a copy with operator, difficulty and mode values
// normalized. Other keys are copied as they are.
func Canonicalize(s domain.Settings) domain.Settings {
	out := s.Clone()
	for _, k := range normalizable {
		if v, ok := out[string(k)]; ok {
			out[string(k)] = textnorm.ForKey(k, v)
		}
	}
	return out
}

// NewView resolves and canonicalizes all three tiers
func NewView(session, persistent domain.Settings) View {
	return View{
		Effective:  Canonicalize(Resolve(nil, session, persistent)),
		Session:    Canonicalize(session),
		Persistent: Canonicalize(persistent),
	}
}

// NormalizeValue prepares a value received over the API for storage:
// mojibake is repaired and the key's normalizer applied. Keys without a
// normalizer are stored verbatim.
func NormalizeValue(key, value string) string {
	k := domain.Key(key)
	for _, n := range normalizable {
		if n == k {
			return textnorm.ForKey(k, textnorm.RepairMojibake(value))
		}
	}
	return value
}

// Apply merges payload into the persistent settings and returns the
// stored result.
func Apply(ctx context.Context, store Store, payload map[string]string) (domain.Settings, error) {
	var saved domain.Settings
	err := store.Update(ctx, func(current domain.Settings) error {
		for k, v := range payload {
			current[k] = NormalizeValue(k, v)
		}
		saved = current.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Set stores one key and returns the value as saved
func Set(ctx context.Context, store Store, key, value string) (string, error) {
	saved, err := Apply(ctx, store, map[string]string{key: value})
	if err != nil {
		return "", err
	}
	return saved[key], nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
