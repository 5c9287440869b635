package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "storesync.db", cfg.Database)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 1, cfg.Sync.FirstPage)
	assert.Equal(t, 25, cfg.Sync.PageSize)
	assert.Equal(t, 100, cfg.Sync.FullPageSize)
	assert.False(t, cfg.Dispatch.Strict)
}

func TestParse_PartialFileKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("database: /tmp/cache.db\nlog:\n  level: debug\nsync:\n  page_size: 50\n"))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/cache.db", cfg.Database)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 50, cfg.Sync.PageSize)
	assert.Equal(t, 1, cfg.Sync.FirstPage)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"page size too large", "sync:\n  page_size: 500\n"},
		{"unknown level", "log:\n  level: verbose\n"},
		{"unknown field", "cache: true\n"},
		{"empty database", "database: \"\"\n"},
		{"wrong type", "dispatch:\n  strict: yes please\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			var ce *Error
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Sync.PageSize)

	path := filepath.Join(dir, "storesync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dispatch:\n  strict: true\nlog:\n  format: json\n"), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Dispatch.Strict)

	var buf bytes.Buffer
	cfg.NewLogger(&buf).Info("hello", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	require.NoError(t, os.WriteFile(path, []byte("sync:\n  first_page: 0\n"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	data, err := cfg.Marshal()
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}
