package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// BackendConfig holds connection settings for the case-desk API
type BackendConfig struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
	Timeout string `json:"timeout"`
}

// PollingConfig controls how job progress is observed
type PollingConfig struct {
	// Interval between status requests, e.g. "2s"
	Interval string `json:"interval"`
	// MaxConsecutiveFailures bounds transient poll errors before the
	// operation is reported as failed
	MaxConsecutiveFailures int `json:"max_consecutive_failures"`
}

// AssignConfig holds defaults for bulk assignment submissions
type AssignConfig struct {
	BatchSize    int    `json:"batch_size"`
	SkipExisting bool   `json:"skip_existing"`
	Priority     string `json:"priority"` // low, normal, high
}

// SelectionConfig controls local persistence of the selection set
type SelectionConfig struct {
	// Slot is the key the selected ids are saved under
	Slot string `json:"slot"`
	// DBPath overrides the default local database location
	DBPath string `json:"db_path"`
}

// KeyBindings holds configurable keyboard shortcuts for the selection surface
type KeyBindings struct {
	ToggleSelect   string `json:"toggle_select"`   // default: space
	SelectAll      string `json:"select_all"`      // default: Ctrl+A
	ClearSelection string `json:"clear_selection"` // default: Escape
}

// Config holds all configuration for the caselink client
type Config struct {
	Backend   BackendConfig   `json:"backend"`
	Polling   PollingConfig   `json:"polling"`
	Assign    AssignConfig    `json:"assign"`
	Selection SelectionConfig `json:"selection"`
	Keys      KeyBindings     `json:"keys"`

	// Logging
	LogFile string `json:"log_file"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL: "http://localhost:8080/api",
			Timeout: "30s",
		},
		Polling: PollingConfig{
			Interval:               "2s",
			MaxConsecutiveFailures: 5,
		},
		Assign: AssignConfig{
			BatchSize:    10,
			SkipExisting: true,
			Priority:     "normal",
		},
		Selection: SelectionConfig{
			Slot: "default",
		},
		Keys:    DefaultKeyBindings(),
		LogFile: "",
	}
}

// DefaultKeyBindings returns default keyboard shortcuts
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		ToggleSelect:   " ",
		SelectAll:      "ctrl-a",
		ClearSelection: "esc",
	}
}

// LoadConfig loads configuration from a file, falling back to defaults
// for any field the file does not set
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	return cfg, nil
}

// DefaultConfigPath returns the default configuration file location
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "caselink", "config.json")
}

// DefaultDBPath returns the default local database location
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "caselink", "caselink.sqlite3")
}

// DefaultLogDir returns the default log directory path
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "caselink")
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetBackendTimeout returns the parsed request timeout for the backend client
func (c *Config) GetBackendTimeout() time.Duration {
	if c.Backend.Timeout != "" {
		if d, err := time.ParseDuration(c.Backend.Timeout); err == nil {
			return d
		}
	}
	return 30 * time.Second
}

// GetPollInterval returns the parsed interval between job status requests
func (c *Config) GetPollInterval() time.Duration {
	if c.Polling.Interval != "" {
		if d, err := time.ParseDuration(c.Polling.Interval); err == nil && d > 0 {
			return d
		}
	}
	return 2 * time.Second
}
