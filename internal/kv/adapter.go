package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
)

// SchemaVersion is the envelope version written by Save.
const SchemaVersion = 1

// Breaker defaults: three consecutive failed writes suspend writes for 30s.
const (
	DefaultBreakerThreshold = 3
	DefaultBreakerCooldown  = 30 * time.Second
)

var (
	// ErrNewerSchema is returned by Read for a payload whose envelope
	// version is newer than SchemaVersion.
	ErrNewerSchema = errors.New("payload written by a newer schema version")

	// ErrCorrupt is returned by Read for a payload that could not be
	// unwrapped, was rejected by the schema, or could not be decoded.
	ErrCorrupt = errors.New("corrupted payload")
)

// Schema validates a raw JSON payload before it is decoded.
type Schema interface {
	Validate(data []byte) error
}

// Adapter provides typed, best-effort persistence over a Backend.
type Adapter struct {
	backend   Backend
	namespace string
	logger    *slog.Logger
	threshold uint32
	cooldown  time.Duration
	breaker   *gobreaker.CircuitBreaker[struct{}]
	loads     singleflight.Group

	// frozen holds full keys whose stored payload is newer than this
	// client understands. Save and Remove leave them alone.
	frozen sync.Map
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithNamespace prefixes every key with "<ns>:".
func WithNamespace(ns string) Option {
	return func(a *Adapter) {
		a.namespace = ns
	}
}

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = l
	}
}

// WithBreaker sets how many consecutive write failures suspend writes and
// for how long.
func WithBreaker(threshold uint32, cooldown time.Duration) Option {
	return func(a *Adapter) {
		a.threshold = threshold
		a.cooldown = cooldown
	}
}

// New creates an Adapter over backend.
func New(backend Backend, opts ...Option) *Adapter {
	a := &Adapter{
		backend:   backend,
		logger:    slog.Default(),
		threshold: DefaultBreakerThreshold,
		cooldown:  DefaultBreakerCooldown,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "kv-writes",
		MaxRequests: 1,
		Timeout:     a.cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= a.threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			a.logger.Warn("persistence breaker state changed",
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return a
}

// Key returns the namespaced backend key.
func (a *Adapter) Key(key string) string {
	if a.namespace == "" {
		return key
	}
	return a.namespace + ":" + key
}

// LoadOption configures a single Load call.
type LoadOption func(*loadConfig)

type loadConfig struct {
	schema Schema
}

// WithSchema validates the stored payload before decoding it.
func WithSchema(s Schema) LoadOption {
	return func(c *loadConfig) {
		c.schema = s
	}
}

// Load reads key and decodes it into a T.
//
// Returns (def, false) when the key is absent, unreadable, corrupted,
// rejected by the schema, or written by a newer schema version.
// See Read for what happens to the stored payload in each case.
func Load[T any](ctx context.Context, a *Adapter, key string, def T, opts ...LoadOption) (T, bool) {
	v, err := Read[T](ctx, a, key, opts...)
	if err != nil {
		return def, false
	}
	return v, true
}

// Read reads key and decodes it into a T.
//
// Errors: ErrNotFound for an absent key, ErrCorrupt for a payload that was
// discarded, ErrNewerSchema for a newer payload, or the backend error.
// A newer payload stays in the backend and the key becomes read-only for
// this Adapter, so later writes cannot replace data this client cannot
// represent.
func Read[T any](ctx context.Context, a *Adapter, key string, opts ...LoadOption) (T, error) {
	var value T
	cfg := loadConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	raw, err := a.read(ctx, key)
	if err != nil {
		return value, err
	}

	data, version, err := unwrap(raw)
	if err != nil {
		return value, a.discard(ctx, key, err)
	}
	if version > SchemaVersion {
		a.frozen.Store(a.Key(key), struct{}{})
		a.logger.Warn("payload written by newer schema, key is read-only",
			"key", a.Key(key),
			"version", version,
			"supported", SchemaVersion,
		)
		return value, fmt.Errorf("%s: %w (version %d)", a.Key(key), ErrNewerSchema, version)
	}

	if cfg.schema != nil {
		if err := cfg.schema.Validate(data); err != nil {
			return value, a.discard(ctx, key, err)
		}
	}

	if err := json.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, a.discard(ctx, key, fmt.Errorf("decode payload: %w", err))
	}
	return value, nil
}

// ReadOnly reports whether key holds a newer payload that Save and Remove
// will not touch.
func (a *Adapter) ReadOnly(key string) bool {
	_, ok := a.frozen.Load(a.Key(key))
	return ok
}

// Save serializes value into a versioned envelope and writes it.
// Failures are logged; the caller's in-memory state remains authoritative.
func (a *Adapter) Save(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		a.logger.Error("encode payload failed", "key", a.Key(key), "error", err)
		return
	}
	version := SchemaVersion
	raw, err := json.Marshal(envelope{SchemaVersion: &version, Data: data})
	if err != nil {
		a.logger.Error("encode envelope failed", "key", a.Key(key), "error", err)
		return
	}

	full := a.Key(key)
	if a.skipFrozen(full) {
		return
	}
	a.write(full, "storage write failed, keeping in-memory state", func() error {
		return a.backend.Set(ctx, full, string(raw))
	})
}

// Remove deletes key. Failures are logged and swallowed.
func (a *Adapter) Remove(ctx context.Context, key string) {
	full := a.Key(key)
	if a.skipFrozen(full) {
		return
	}
	a.write(full, "storage remove failed", func() error {
		return a.backend.Delete(ctx, full)
	})
}

func (a *Adapter) write(key, msg string, fn func() error) {
	_, err := a.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	switch {
	case err == nil:
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		a.logger.Debug("persistence suspended, skipping write", "key", key)
	default:
		a.logger.Warn(msg, "key", key, "error", err)
	}
}

func (a *Adapter) skipFrozen(full string) bool {
	if _, ok := a.frozen.Load(full); !ok {
		return false
	}
	a.logger.Debug("key holds a newer payload, skipping write", "key", full)
	return true
}

func (a *Adapter) read(ctx context.Context, key string) ([]byte, error) {
	full := a.Key(key)
	v, err, _ := a.loads.Do(full, func() (any, error) {
		return a.backend.Get(ctx, full)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		a.logger.Warn("storage read failed", "key", full, "error", err)
		return nil, fmt.Errorf("read %s: %w", full, err)
	}
	return []byte(v.(string)), nil
}

// discard removes a corrupted payload and returns the ErrCorrupt for it.
func (a *Adapter) discard(ctx context.Context, key string, cause error) error {
	a.logger.Warn("discarding corrupted payload", "key", a.Key(key), "error", cause)
	a.Remove(ctx, key)
	return fmt.Errorf("%s: %w: %v", a.Key(key), ErrCorrupt, cause)
}

type envelope struct {
	SchemaVersion *int            `json:"schemaVersion"`
	Data          json.RawMessage `json:"data"`
}

// unwrap extracts the payload and its version. Bare payloads are version 0.
func unwrap(raw []byte) (json.RawMessage, int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, 0, errors.New("empty payload")
	}
	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil && env.SchemaVersion != nil {
			if len(env.Data) == 0 {
				return nil, 0, errors.New("envelope has no data")
			}
			return env.Data, *env.SchemaVersion, nil
		}
	}
	return trimmed, 0, nil
}
