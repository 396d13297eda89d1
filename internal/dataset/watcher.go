package dataset

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"flowledger/internal/logging"
)

// Watcher watches the loaded dataset file for external changes and signals
// settled changes on a channel so the UI can offer a reload. It watches the
// file's parent directory and filters events down to the one file, which
// survives editors that replace-on-save.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	path        string
	dir         string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	changes     chan Change
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats WatcherStats
}

// Change is one settled external modification of the dataset file.
type Change struct {
	Path string
	Op   string
	At   time.Time
}

// WatcherStats tracks watcher activity for debugging.
type WatcherStats struct {
	FilesCreated    int
	FilesModified   int
	FilesRemoved    int
	ChangesSignaled int
	Errors          int
	LastEventTime   time.Time
	LastEventType   string
}

// NewWatcher creates a watcher for the dataset file at path. Debounce values
// at or below zero fall back to 500ms.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		watcher:     fsw,
		path:        abs,
		dir:         filepath.Dir(abs),
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		changes:     make(chan Change, 1),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Changes returns the channel settled changes are delivered on. The channel
// is buffered with capacity one; while a change is pending, further changes
// collapse into it.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	logging.Watcher("watching %s for changes to %s", w.dir, filepath.Base(w.path))

	go w.run(ctx)

	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.WatcherError("error closing watcher: %v", err)
	}
	logging.Watcher("stopped")
}

// run is the main event loop.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	debounceTicker := time.NewTicker(100 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Watcher("context cancelled")
			return

		case <-w.stopCh:
			logging.WatcherDebug("stop signal received")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				logging.WatcherDebug("event channel closed")
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				logging.WatcherDebug("error channel closed")
				return
			}
			logging.WatcherError("watch error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-debounceTicker.C:
			w.processDebouncedEvents()
		}
	}
}

// handleEvent records a single filesystem event for debounced processing.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Only the dataset file itself matters.
	if filepath.Clean(event.Name) != w.path {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Remove != 0:
		eventType = "remove"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	default:
		return // Ignore chmod, etc.
	}

	logging.WatcherDebug("%s event for %s", eventType, event.Name)

	w.mu.Lock()
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventType = eventType

	switch eventType {
	case "create":
		w.stats.FilesCreated++
	case "modify":
		w.stats.FilesModified++
	case "remove", "rename":
		w.stats.FilesRemoved++
	}

	w.debounceMap[eventType] = time.Now()
	w.mu.Unlock()
}

// processDebouncedEvents signals events that have settled past the debounce
// window.
func (w *Watcher) processDebouncedEvents() {
	w.mu.Lock()
	now := time.Now()
	toSignal := make([]string, 0)

	for op, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			toSignal = append(toSignal, op)
			delete(w.debounceMap, op)
		}
	}
	w.mu.Unlock()

	for _, op := range toSignal {
		w.signalChange(op)
	}
}

// signalChange delivers one settled change, collapsing into a pending one if
// the consumer has not drained the channel yet.
func (w *Watcher) signalChange(op string) {
	change := Change{Path: w.path, Op: op, At: time.Now()}
	select {
	case w.changes <- change:
		w.mu.Lock()
		w.stats.ChangesSignaled++
		w.mu.Unlock()
		logging.Watcher("dataset changed on disk (%s)", op)
	default:
		logging.WatcherDebug("change already pending, dropping %s", op)
	}
}

// Stats returns the current watcher statistics.
func (w *Watcher) Stats() WatcherStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// ResetStats resets the watcher statistics.
func (w *Watcher) ResetStats() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats = WatcherStats{}
}

// IsWatching returns true if the watcher is currently running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}
