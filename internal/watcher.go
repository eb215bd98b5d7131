package internal

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// FileChangeSource feeds filesystem changes on the transcript file into
// a ChangeDetector. The parent directory is watched rather than the
// file itself, so editors that replace the file on save keep working.
type FileChangeSource struct {
	path    string
	watcher *fsnotify.Watcher
}

// NewFileChangeSource creates a source for the transcript at path.
func NewFileChangeSource(path string) (*FileChangeSource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("resolve transcript path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch transcript directory: %w", err)
	}

	return &FileChangeSource{path: abs, watcher: watcher}, nil
}

// Run forwards relevant events to detector until ctx is cancelled.
func (s *FileChangeSource) Run(ctx context.Context, detector *ChangeDetector) {
	base := filepath.Base(s.path)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			LogDebug("Transcript changed: %s", event.Op)
			detector.Notify()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			LogWarn("Watcher error: %v", err)
		}
	}
}

// Close stops watching.
func (s *FileChangeSource) Close() error {
	return s.watcher.Close()
}
