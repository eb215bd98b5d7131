package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `db_path: /tmp/custom.db
transcript: /tmp/chat.txt
model: gemini-pro
debounce_ms: 250
listen_addr: 127.0.0.1:9000
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DBPath != "/tmp/custom.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Transcript != "/tmp/chat.txt" {
		t.Errorf("Transcript = %q", cfg.Transcript)
	}
	if cfg.Model != "gemini-pro" || cfg.DebounceMS != 250 || cfg.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config should not fail: %v", err)
	}
	defaults := DefaultConfig()
	if cfg.Transcript != defaults.Transcript {
		t.Errorf("Transcript = %q, want default %q", cfg.Transcript, defaults.Transcript)
	}

	// Empty path also yields defaults.
	cfg, err = LoadConfig("")
	if err != nil {
		t.Fatalf("empty path should not fail: %v", err)
	}
	if cfg.DBPath == "" {
		t.Error("default DBPath should be set")
	}
}

func TestLoadConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("model: gemini-pro\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Model != "gemini-pro" {
		t.Errorf("Model = %q", cfg.Model)
	}
	// Unset fields keep their defaults.
	if cfg.Transcript != DefaultConfig().Transcript {
		t.Errorf("Transcript = %q, want default", cfg.Transcript)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- broken"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
