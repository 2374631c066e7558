package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
)

const (
	// PrimaryPath is tried first
	PrimaryPath = "/save"
	// SecondaryPath is tried once when the primary save fails
	SecondaryPath = "/postSaveExtended"

	defaultFallbackTimeout = 5 * time.Second
	maxResponseBody        = 1 << 20
)

// FallbackResult reports which endpoint accepted the save
type FallbackResult struct {
	Status string          `json:"status"`
	Source string          `json:"source,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// FallbackConfig configures a FallbackSaver
type FallbackConfig struct {
	// BaseURL hosts the primary save endpoint
	BaseURL string
	// FallbackURL hosts the secondary endpoint. Defaults to BaseURL.
	FallbackURL string
	Timeout     time.Duration
	Client      *http.Client
	Logger      *slog.Logger
}

// FallbackSaver posts a session to the primary save endpoint and falls
// back to the extended endpoint once. Each endpoint sits behind its own
// circuit breaker so a dead primary stops costing a timeout per save.
type FallbackSaver struct {
	client    *http.Client
	primary   string
	secondary string
	logger    *slog.Logger

	primaryCB   circuitbreaker.CircuitBreaker[[]byte]
	secondaryCB circuitbreaker.CircuitBreaker[[]byte]
}

// NewFallbackSaver creates a fallback saver
func NewFallbackSaver(cfg FallbackConfig) *FallbackSaver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultFallbackTimeout
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	fallback := strings.TrimRight(cfg.FallbackURL, "/")
	if fallback == "" {
		fallback = base
	}

	s := &FallbackSaver{
		client:    client,
		primary:   base + PrimaryPath,
		secondary: fallback + SecondaryPath,
		logger:    logger,
	}
	s.primaryCB = s.newBreaker(PrimaryPath)
	s.secondaryCB = s.newBreaker(SecondaryPath)
	return s
}

func (s *FallbackSaver) newBreaker(endpoint string) circuitbreaker.CircuitBreaker[[]byte] {
	return circuitbreaker.New[[]byte](circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			s.logger.Warn("save endpoint circuit breaker state change",
				"endpoint", endpoint,
				"from", from.String(),
				"to", to.String())
		},
	})
}

// statusError is a non-2xx answer from a save endpoint
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// SaveWithFallback never returns an error; failures are reported in
// the result.
func (s *FallbackSaver) SaveWithFallback(ctx context.Context, payload any) FallbackResult {
	body, err := json.Marshal(payload)
	if err != nil {
		return FallbackResult{Status: "error", Error: fmt.Sprintf("Fallback fehlgeschlagen: %v", err)}
	}

	data, err := s.primaryCB.Execute(ctx, func(ctx context.Context) ([]byte, error) {
		return s.post(ctx, s.primary, body)
	})
	if err == nil {
		return FallbackResult{Status: "ok", Source: PrimaryPath, Data: asJSON(data)}
	}
	s.logger.Warn("primary save failed, trying fallback", "url", s.primary, "error", err)

	data, err = s.secondaryCB.Execute(ctx, func(ctx context.Context) ([]byte, error) {
		return s.post(ctx, s.secondary, body)
	})
	if err == nil {
		return FallbackResult{Status: "ok", Source: SecondaryPath, Data: asJSON(data)}
	}

	var se *statusError
	if errors.As(err, &se) {
		return FallbackResult{Status: "error", Source: SecondaryPath, Error: se.Body}
	}
	s.logger.Error("fallback save failed", "url", s.secondary, "error", err)
	return FallbackResult{Status: "error", Error: fmt.Sprintf("Fallback fehlgeschlagen: %v", err)}
}

func (s *FallbackSaver) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{Code: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

// asJSON keeps valid JSON as is and wraps anything else in a string
func asJSON(data []byte) json.RawMessage {
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(data) {
		return json.RawMessage(data)
	}
	quoted, _ := json.Marshal(string(data))
	return json.RawMessage(quoted)
}
