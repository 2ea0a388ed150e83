package kv

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// Backend errors.
var (
	// ErrNotFound is returned by Backend.Get for a missing key.
	ErrNotFound = errors.New("key not found")

	// ErrQuotaExceeded is returned when a write would exceed the storage quota.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrUnavailable is returned when storage is disabled or unreachable.
	ErrUnavailable = errors.New("storage unavailable")
)

// Backend is raw string storage keyed by string.
// Implementations must return ErrNotFound from Get for a missing key.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryBackend is an in-process Backend.
//
// It can emulate a locked-down browser storage: SetQuota limits the total
// bytes held and SetDisabled makes every call fail with ErrUnavailable.
type MemoryBackend struct {
	mu       sync.Mutex
	data     map[string]string
	quota    int
	disabled bool
	writes   int
}

// NewMemoryBackend creates an empty, unlimited backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]string)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disabled {
		return "", ErrUnavailable
	}
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.disabled {
		return ErrUnavailable
	}
	if m.quota > 0 {
		size := len(key) + len(value)
		for k, v := range m.data {
			if k != key {
				size += len(k) + len(v)
			}
		}
		if size > m.quota {
			return ErrQuotaExceeded
		}
	}
	m.data[key] = value
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disabled {
		return ErrUnavailable
	}
	delete(m.data, key)
	return nil
}

// SetQuota limits the total bytes (keys plus values). Zero means unlimited.
func (m *MemoryBackend) SetQuota(bytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quota = bytes
}

// SetDisabled toggles the storage-disabled mode.
func (m *MemoryBackend) SetDisabled(disabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disabled = disabled
}

// Raw returns the stored string for key, bypassing the disabled mode.
func (m *MemoryBackend) Raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

// Seed writes a raw value, bypassing quota and disabled mode.
// Used to plant legacy or corrupted payloads.
func (m *MemoryBackend) Seed(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// Writes returns the number of Set calls received, including failed ones.
func (m *MemoryBackend) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Keys returns every stored key in sorted order.
func (m *MemoryBackend) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
