package internal

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestKV(t *testing.T) *SQLiteKV {
	t.Helper()
	kv, err := OpenKV(filepath.Join(t.TempDir(), "assist.db"))
	if err != nil {
		t.Fatalf("OpenKV failed: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestSQLiteKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)

	if err := kv.Set(ctx, ScopeLocal, "greeting", []byte("hello")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, found, err := kv.Get(ctx, ScopeLocal, "greeting")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("expected key to be found")
	}
	if string(value) != "hello" {
		t.Errorf("value = %q, want %q", value, "hello")
	}

	// Overwrite.
	if err := kv.Set(ctx, ScopeLocal, "greeting", []byte("goodbye")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, _, _ = kv.Get(ctx, ScopeLocal, "greeting")
	if string(value) != "goodbye" {
		t.Errorf("value after overwrite = %q, want %q", value, "goodbye")
	}
}

func TestSQLiteKVScopesIsolated(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)

	if err := kv.Set(ctx, ScopeSync, "settings", []byte("a")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := kv.Set(ctx, ScopeLocal, "settings", []byte("b")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	syncVal, _, _ := kv.Get(ctx, ScopeSync, "settings")
	localVal, _, _ := kv.Get(ctx, ScopeLocal, "settings")
	if string(syncVal) != "a" || string(localVal) != "b" {
		t.Errorf("scopes not isolated: sync=%q local=%q", syncVal, localVal)
	}
}

func TestSQLiteKVMissingAndDelete(t *testing.T) {
	ctx := context.Background()
	kv := openTestKV(t)

	_, found, err := kv.Get(ctx, ScopeLocal, "missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("missing key should not be found")
	}

	if err := kv.Set(ctx, ScopeLocal, "temp", []byte("x")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := kv.Delete(ctx, ScopeLocal, "temp"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	_, found, _ = kv.Get(ctx, ScopeLocal, "temp")
	if found {
		t.Error("deleted key should not be found")
	}
}
