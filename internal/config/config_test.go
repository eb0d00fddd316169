package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:8080/api", cfg.Backend.BaseURL)
	assert.Equal(t, "2s", cfg.Polling.Interval)
	assert.Equal(t, 5, cfg.Polling.MaxConsecutiveFailures)
	assert.Equal(t, 10, cfg.Assign.BatchSize)
	assert.True(t, cfg.Assign.SkipExisting)
	assert.Equal(t, "normal", cfg.Assign.Priority)
	assert.Equal(t, "default", cfg.Selection.Slot)
	assert.Equal(t, " ", cfg.Keys.ToggleSelect)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"backend": {"base_url": "https://desk.example.com/api", "timeout": "5s"}, "polling": {"interval": "500ms"}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://desk.example.com/api", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.GetBackendTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.GetPollInterval())
	// Untouched fields keep their defaults
	assert.Equal(t, 10, cfg.Assign.BatchSize)
}

func TestLoadConfig_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := DefaultConfig()
	cfg.Backend.BaseURL = "https://desk.example.com/api"
	cfg.Selection.Slot = "attorney-42"
	require.NoError(t, cfg.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestGetPollInterval_Fallbacks(t *testing.T) {
	tests := []struct {
		name     string
		interval string
		want     time.Duration
	}{
		{"empty", "", 2 * time.Second},
		{"garbage", "soon", 2 * time.Second},
		{"zero", "0s", 2 * time.Second},
		{"valid", "250ms", 250 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Polling.Interval = tt.interval
			assert.Equal(t, tt.want, cfg.GetPollInterval())
		})
	}
}

func TestGetBackendTimeout_Fallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend.Timeout = "not-a-duration"
	assert.Equal(t, 30*time.Second, cfg.GetBackendTimeout())
}
