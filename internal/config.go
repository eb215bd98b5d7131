package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the daemon's file-level configuration. Everything has a
// usable default; a missing config file is not an error.
type Config struct {
	// DBPath is the SQLite store location.
	DBPath string `yaml:"db_path"`
	// Transcript is the chat snapshot file to watch.
	Transcript string `yaml:"transcript"`
	// Model overrides the generation model name.
	Model string `yaml:"model"`
	// DebounceMS overrides the change-detector debounce window.
	DebounceMS int `yaml:"debounce_ms"`
	// ListenAddr is the HTTP API bind address; empty disables the API.
	ListenAddr string `yaml:"listen_addr"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		DBPath:     filepath.Join(home, ".inbox-assist", "assist.db"),
		Transcript: "transcript.txt",
	}
}

// LoadConfig reads the YAML config at path, layered over defaults.
// An empty path or missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
