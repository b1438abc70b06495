package snapshot

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of writes from a host rewriting a snapshot.
const DefaultDebounce = 200 * time.Millisecond

// Event reports a settled change to one snapshot file.
type Event struct {
	Path    string
	Removed bool
}

// WatchOptions configures a Watcher.
type WatchOptions struct {
	Debounce time.Duration
	Matcher  *Matcher
}

// Watcher watches a directory tree for snapshot changes and calls its
// handler once per file after writes have been quiet for the debounce
// interval. Removals are reported immediately.
//
//	w, err := snapshot.NewWatcher(opts, func(ev snapshot.Event) { ... }, logger)
//	if err != nil {
//	    return err
//	}
//	if err := w.Start(root); err != nil {
//	    return err
//	}
//	defer w.Stop()
type Watcher struct {
	watcher *fsnotify.Watcher
	handle  func(Event)
	logger  *slog.Logger
	options WatchOptions
	root    string

	timers   map[string]*time.Timer
	timersMu sync.Mutex

	stopChan chan struct{}
	done     chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex
}

// NewWatcher creates a Watcher. A nil matcher uses the default patterns.
func NewWatcher(options WatchOptions, handle func(Event), logger *slog.Logger) (*Watcher, error) {
	if handle == nil {
		return nil, fmt.Errorf("snapshot watcher needs a handler")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if options.Debounce <= 0 {
		options.Debounce = DefaultDebounce
	}
	if options.Matcher == nil {
		m, err := NewMatcher(nil, nil)
		if err != nil {
			return nil, err
		}
		options.Matcher = m
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		watcher:  fw,
		handle:   handle,
		logger:   logger,
		options:  options,
		timers:   make(map[string]*time.Timer),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start watches root and every non-excluded directory below it.
func (w *Watcher) Start(root string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return fmt.Errorf("watcher already stopped")
	}
	if w.started {
		return fmt.Errorf("watcher already started")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve root path: %w", err)
	}
	w.root = abs

	if err := w.watcher.Add(abs); err != nil {
		return fmt.Errorf("failed to watch %s: %w", abs, err)
	}
	w.addTree(abs)

	w.started = true
	w.logger.Info("snapshot watcher started", "root", abs, "debounce", w.options.Debounce)
	go w.eventLoop()
	return nil
}

// addTree adds watches for the subdirectories of dir.
func (w *Watcher) addTree(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() || path == dir {
			return nil
		}
		if w.ignoredDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Stop stops the watcher and cancels pending notifications. Idempotent.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	close(w.stopChan)
	w.mu.Unlock()

	w.timersMu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = make(map[string]*time.Timer)
	w.timersMu.Unlock()

	err := w.watcher.Close()
	if started {
		<-w.done
	}
	w.logger.Info("snapshot watcher stopped")
	return err
}

func (w *Watcher) eventLoop() {
	defer close(w.done)
	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("snapshot watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.ignoredDir(path) {
				if err := w.watcher.Add(path); err != nil {
					w.logger.Warn("failed to watch directory", "path", path, "error", err)
				}
				w.addTree(path)
			}
			return
		}
	}

	if !w.matches(path) {
		return
	}
	w.logger.Debug("snapshot event", "op", event.Op.String(), "file", path)

	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.debounce(path)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.cancel(path)
		w.handle(Event{Path: path, Removed: true})
	}
}

// debounce schedules a notification for path, replacing any pending one.
func (w *Watcher) debounce(path string) {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(w.options.Debounce, func() {
		w.timersMu.Lock()
		current := w.timers[path] == t
		if current {
			delete(w.timers, path)
		}
		w.timersMu.Unlock()

		if current {
			w.handle(Event{Path: path})
		}
	})
	w.timers[path] = t
}

func (w *Watcher) cancel(path string) {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) matches(path string) bool {
	return w.options.Matcher.Matches(w.rel(path))
}

func (w *Watcher) ignoredDir(path string) bool {
	rel := w.rel(path)
	return w.options.Matcher.Excluded(rel) || w.options.Matcher.Excluded(rel+"/")
}

// Pending returns the number of notifications waiting on the debounce timer.
func (w *Watcher) Pending() int {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()
	return len(w.timers)
}
