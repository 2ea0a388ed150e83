package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	content := `storage:
  driver: redis
  redis_addr: cache:6379
  namespace: shop
toast:
  ttl: 3s
  limit: 4
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, "cache:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, "shop", cfg.Storage.Namespace)
	assert.Equal(t, "storefront.db", cfg.Storage.Path, "unset keys keep defaults")
	assert.Equal(t, 3*time.Second, cfg.Toast.TTL)
	assert.Equal(t, 4, cfg.Toast.Limit)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("storage:\n  drivr: memory\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown driver", "storage:\n  driver: mongo\n", "unknown storage.driver"},
		{"sqlite without path", "storage:\n  driver: sqlite\n  path: \"\"\n", "storage.path is required"},
		{"redis without addr", "storage:\n  driver: redis\n  redis_addr: \"\"\n", "storage.redis_addr is required"},
		{"negative ttl", "toast:\n  ttl: -1s\n", "toast.ttl"},
		{"negative limit", "toast:\n  limit: -2\n", "toast.limit"},
		{"bad level", "log:\n  level: loud\n", "unknown log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}
