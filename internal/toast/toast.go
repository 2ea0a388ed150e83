package toast

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTTL applies when a toast is pushed without a positive TTL.
const DefaultTTL = 5000 * time.Millisecond

// Level is the visual severity of a toast.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	switch l {
	case LevelInfo, LevelSuccess, LevelError:
		return true
	}
	return false
}

// Toast is a live notification.
type Toast struct {
	ID        string        `json:"id"`
	Message   string        `json:"message"`
	Level     Level         `json:"level"`
	TTL       time.Duration `json:"ttl"`
	CreatedAt time.Time     `json:"createdAt"`
}

// ExpiresAt returns the instant the toast's timer is due.
func (t Toast) ExpiresAt() time.Time {
	return t.CreatedAt.Add(t.TTL)
}

// IDGenerator produces unique toast ids.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-ordered UUIDv7 ids.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
