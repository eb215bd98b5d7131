package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/seralo/inbox-assist/testutil"
)

// runCommand executes the root command with args and a temp store.
func runCommand(t *testing.T, storePath string, args ...string) error {
	t.Helper()
	full := append([]string{"--db", storePath}, args...)
	rootCmd.SetArgs(full)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	err := rootCmd.Execute()

	// Flag variables persist between Execute calls; reset the overrides.
	dbPath = ""
	settingsAPIKey = ""
	settingsModel = ""
	settingsEnable = false
	settingsDisable = false
	return err
}

func TestHistoryCommandEmptyStore(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	dbPath := filepath.Join(dir, "assist.db")

	if err := runCommand(t, dbPath, "history"); err != nil {
		t.Fatalf("history failed on empty store: %v", err)
	}
	if err := runCommand(t, dbPath, "history", "--conversations"); err != nil {
		t.Fatalf("history --conversations failed on empty store: %v", err)
	}
}

func TestClearCommandForce(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	dbPath := filepath.Join(dir, "assist.db")

	if err := runCommand(t, dbPath, "clear", "--force"); err != nil {
		t.Fatalf("clear --force failed: %v", err)
	}
}

func TestSettingsCommandRoundTrip(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	dbPath := filepath.Join(dir, "assist.db")

	if err := runCommand(t, dbPath, "settings", "--model", "gemini-pro", "--disable"); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}
	if err := runCommand(t, dbPath, "settings"); err != nil {
		t.Fatalf("settings read failed: %v", err)
	}
}
