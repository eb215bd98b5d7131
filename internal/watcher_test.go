package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileChangeSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transcript.txt")
	if err := os.WriteFile(path, []byte("hello\n"), 0644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	source, err := NewFileChangeSource(path)
	if err != nil {
		t.Fatalf("NewFileChangeSource failed: %v", err)
	}
	defer source.Close()

	detector := NewChangeDetector(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go source.Run(ctx, detector)

	// Give the watcher a moment to arm before writing.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("hello\nworld\n"), 0644); err != nil {
		t.Fatalf("rewrite transcript: %v", err)
	}

	select {
	case <-detector.Events:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change event after writing the transcript")
	}
}

func TestFileChangeSourceIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transcript.txt")
	if err := os.WriteFile(path, []byte("hello\n"), 0644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	source, err := NewFileChangeSource(path)
	if err != nil {
		t.Fatalf("NewFileChangeSource failed: %v", err)
	}
	defer source.Close()

	detector := NewChangeDetector(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go source.Run(ctx, detector)

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("noise\n"), 0644); err != nil {
		t.Fatalf("write sibling: %v", err)
	}

	select {
	case <-detector.Events:
		t.Fatal("sibling file changes should not produce events")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFileChangeSourceMissingDir(t *testing.T) {
	if _, err := NewFileChangeSource(filepath.Join(t.TempDir(), "missing", "t.txt")); err == nil {
		t.Error("expected error when the transcript directory does not exist")
	}
}
