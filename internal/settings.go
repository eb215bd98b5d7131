package internal

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
)

const settingsKey = "settings"

// storedSettings reads the persisted record from the sync scope with
// no environment overlay. Missing or unreadable settings fall back to
// defaults; loading never fails the caller.
func storedSettings(ctx context.Context, kv KVStore) Settings {
	settings := DefaultSettings()

	data, found, err := kv.Get(ctx, ScopeSync, settingsKey)
	if err != nil {
		LogWarn("Failed to load settings, using defaults: %v", err)
	} else if found {
		if err := json.Unmarshal(data, &settings); err != nil {
			LogWarn("Failed to decode settings, using defaults: %v", err)
			settings = DefaultSettings()
		}
	}
	return settings
}

// LoadSettings reads the persisted settings from the sync scope and
// applies environment overrides.
func LoadSettings(ctx context.Context, kv KVStore) Settings {
	settings := storedSettings(ctx, kv)

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		settings.APIKey = key
	}
	if v := os.Getenv("INBOX_ASSIST_AI_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			settings.AIEnabled = enabled
		}
	}
	if model := os.Getenv("INBOX_ASSIST_MODEL"); model != "" {
		settings.Model = model
	}

	return settings
}

// SaveSettings persists settings to the sync scope.
func SaveSettings(ctx context.Context, kv KVStore, settings Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return &StorageError{Scope: ScopeSync, Key: settingsKey, Op: "encode", Err: err}
	}
	return kv.Set(ctx, ScopeSync, settingsKey, data)
}

// EnsureInitialized writes the default settings on first run so later
// loads see a concrete record rather than the missing-key fallback.
func EnsureInitialized(ctx context.Context, kv KVStore) error {
	_, found, err := kv.Get(ctx, ScopeSync, settingsKey)
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	LogInfo("First run, writing default settings")
	return SaveSettings(ctx, kv, DefaultSettings())
}
