package internal

import (
	"context"
	"testing"
)

// clearSettingsEnv isolates tests from ambient environment overrides.
func clearSettingsEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("INBOX_ASSIST_AI_ENABLED", "")
	t.Setenv("INBOX_ASSIST_MODEL", "")
}

func TestLoadSettingsDefaults(t *testing.T) {
	clearSettingsEnv(t)
	ctx := context.Background()
	kv := NewMemoryKV()

	settings := LoadSettings(ctx, kv)
	if !settings.AIEnabled {
		t.Error("AIEnabled should default to true")
	}
	if settings.Model != defaultModel {
		t.Errorf("Model = %q, want %q", settings.Model, defaultModel)
	}
}

func TestLoadSettingsFromStore(t *testing.T) {
	clearSettingsEnv(t)
	ctx := context.Background()
	kv := NewMemoryKV()

	saved := Settings{APIKey: "stored-key", AIEnabled: false, Model: "gemini-pro"}
	if err := SaveSettings(ctx, kv, saved); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	settings := LoadSettings(ctx, kv)
	if settings != saved {
		t.Errorf("LoadSettings = %+v, want %+v", settings, saved)
	}
}

func TestLoadSettingsEnvOverrides(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	if err := SaveSettings(ctx, kv, Settings{APIKey: "stored", AIEnabled: true, Model: "m1"}); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("INBOX_ASSIST_AI_ENABLED", "false")
	t.Setenv("INBOX_ASSIST_MODEL", "m2")

	settings := LoadSettings(ctx, kv)
	if settings.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env override", settings.APIKey)
	}
	if settings.AIEnabled {
		t.Error("AIEnabled should follow env override")
	}
	if settings.Model != "m2" {
		t.Errorf("Model = %q, want env override", settings.Model)
	}
}

func TestLoadSettingsStorageFailure(t *testing.T) {
	clearSettingsEnv(t)
	ctx := context.Background()
	kv := NewMemoryKV()
	kv.FailGet = true

	// Unreadable store degrades to defaults, never fails.
	settings := LoadSettings(ctx, kv)
	if !settings.AIEnabled || settings.Model != defaultModel {
		t.Errorf("expected defaults on storage failure, got %+v", settings)
	}
}

func TestEnsureInitialized(t *testing.T) {
	clearSettingsEnv(t)
	ctx := context.Background()
	kv := NewMemoryKV()

	if err := EnsureInitialized(ctx, kv); err != nil {
		t.Fatalf("EnsureInitialized failed: %v", err)
	}
	_, found, err := kv.Get(ctx, ScopeSync, settingsKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("settings record should exist after initialization")
	}

	// A second run must not clobber user changes.
	if err := SaveSettings(ctx, kv, Settings{APIKey: "user-key", AIEnabled: false}); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	if err := EnsureInitialized(ctx, kv); err != nil {
		t.Fatalf("EnsureInitialized failed: %v", err)
	}
	settings := LoadSettings(ctx, kv)
	if settings.APIKey != "user-key" || settings.AIEnabled {
		t.Errorf("initialization overwrote stored settings: %+v", settings)
	}
}
