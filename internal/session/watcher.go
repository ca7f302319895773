package session

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher feeds a session context from filesystem events. It watches a
// directory tree recursively and records every written or created file,
// so a session can be tracked without hook integration.
type Watcher struct {
	watcher *fsnotify.Watcher
	ctx     *Context
	store   *ContextStore
	log     *slog.Logger

	// Directory names to skip entirely.
	ignorePaths []string

	// Called after each recorded file, with the file path.
	onUpdate func(string)

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWatcher creates a watcher that records activity into ctx and, when
// store is non-nil, persists the context after every update.
func NewWatcher(ctx *Context, store *ContextStore, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	return &Watcher{
		watcher:     fsw,
		ctx:         ctx,
		store:       store,
		log:         log,
		ignorePaths: []string{".git", ".qflow", "node_modules", ".DS_Store"},
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// SetUpdateCallback sets a callback invoked after each recorded file.
func (w *Watcher) SetUpdateCallback(cb func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onUpdate = cb
}

// AddRoot watches a directory tree. Subdirectories are added individually
// since fsnotify watches are not recursive.
func (w *Watcher) AddRoot(root string) error {
	if err := w.watcher.Add(root); err != nil {
		return err
	}
	return w.watchDirRecursive(root)
}

func (w *Watcher) watchDirRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}

		base := filepath.Base(path)
		for _, ignore := range w.ignorePaths {
			if base == ignore {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if info.IsDir() {
			_ = w.watcher.Add(path)
		}
		return nil
	})
}

// Start begins processing events in the background.
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Stop shuts down the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	close(w.stopCh)
	_ = w.watcher.Close()
	<-w.doneCh
}

// Snapshot returns a copy of the tracked context.
func (w *Watcher) Snapshot() *Context {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := NewContext(w.ctx.SessionID)
	for f := range w.ctx.Files {
		snap.Files[f] = struct{}{}
	}
	for m := range w.ctx.Modules {
		snap.Modules[m] = struct{}{}
	}
	for d := range w.ctx.Directories {
		snap.Directories[d] = struct{}{}
	}
	snap.StartedAt = w.ctx.StartedAt
	snap.LastUpdated = w.ctx.LastUpdated
	return snap
}

// watchLoop processes filesystem events with a short debounce, since many
// editors emit several events for a single save.
func (w *Watcher) watchLoop() {
	defer close(w.doneCh)

	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C // drain initial timer

	pending := make(map[string]fsnotify.Event)

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending[event.Name] = event
			debounceTimer.Reset(50 * time.Millisecond)

		case <-debounceTimer.C:
			events := pending
			pending = make(map[string]fsnotify.Event)
			for _, event := range events {
				w.handleEvent(event)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if w.ignored(path) {
		return
	}

	// New directories need their own watch.
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if event.Op&fsnotify.Create != 0 {
			_ = w.watchDirRecursive(path)
		}
		return
	}

	w.mu.Lock()
	w.ctx.AddFile(path)
	if w.store != nil {
		if err := w.store.Save(w.ctx); err != nil {
			w.log.Warn("failed to persist session context", "error", err)
		}
	}
	cb := w.onUpdate
	w.mu.Unlock()

	if cb != nil {
		cb(path)
	}
}

func (w *Watcher) ignored(path string) bool {
	sep := string(filepath.Separator)
	for _, ignore := range w.ignorePaths {
		if strings.Contains(path, sep+ignore+sep) ||
			strings.HasSuffix(path, sep+ignore) ||
			filepath.Base(path) == ignore {
			return true
		}
	}
	return false
}
