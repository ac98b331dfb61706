package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "velada.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout.Std())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
listen: ":9090"
log:
  level: debug
backend:
  base_url: https://api.example.com
  token: s3cret
  timeout: 10s
store:
  backend: redis
  addr: localhost:6379
  ttl: 48h
  lock: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, "s3cret", cfg.Backend.Token)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout.Std())
	assert.Equal(t, StoreRedis, cfg.Store.Backend)
	assert.Equal(t, "localhost:6379", cfg.Store.Addr)
	assert.Equal(t, 48*time.Hour, cfg.Store.TTL.Std())
	assert.True(t, cfg.Store.Lock)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_ValidatesStoreSettings(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"unknown backend", "store:\n  backend: cassandra\n"},
		{"file without dir", "store:\n  backend: file\n"},
		{"redis without addr", "store:\n  backend: redis\n"},
		{"postgres without dsn", "store:\n  backend: postgres\n"},
		{"empty backend url", "backend:\n  base_url: \"\"\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}
