package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	deadcode "github.com/fwojciec/deadcodehunter"
)

// Watcher forwards on-disk changes of tracked files to a DocumentSyncer.
type Watcher struct {
	syncer  deadcode.DocumentSyncer
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	mu    sync.Mutex
	files map[string]bool
	dirs  map[string]bool
}

// NewWatcher creates a Watcher. Call Add for each file to track and Run to
// start forwarding events.
func NewWatcher(syncer deadcode.DocumentSyncer, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		syncer:  syncer,
		logger:  logger,
		watcher: w,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
	}, nil
}

// Add tracks path. Directories are watched rather than files so that editors
// that save by renaming a temporary file are still observed.
func (w *Watcher) Add(path string) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[path] = true
	if w.dirs[dir] {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.dirs[dir] = true
	return nil
}

// Run forwards events until ctx is canceled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	w.mu.Lock()
	tracked := w.files[path]
	w.mu.Unlock()
	if !tracked {
		return
	}
	uri := deadcode.URIFromPath(path)

	switch {
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				w.logger.Warn("failed to read changed file", "path", path, "error", err)
			}
			return
		}
		if err := w.syncer.DidChange(ctx, uri, string(data)); err != nil {
			// The document was closed after a remove; reopen it.
			if err := w.syncer.DidOpen(ctx, uri, string(data)); err != nil {
				w.logger.Warn("failed to sync file", "path", path, "error", err)
			}
		}
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		if _, err := os.Stat(path); err == nil {
			return
		}
		if err := w.syncer.DidClose(ctx, uri); err != nil {
			w.logger.Warn("failed to close file", "path", path, "error", err)
		}
	}
}
