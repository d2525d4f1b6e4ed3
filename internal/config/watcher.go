package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"strata/pkg/logging"
)

const (
	// DefaultDebounceInterval is the time to wait before triggering a reload
	// after the last file change is detected.
	DefaultDebounceInterval = 500 * time.Millisecond

	// DefaultWatchInterval is the polling interval used when fsnotify is not
	// available.
	DefaultWatchInterval = 2 * time.Second
)

// WatcherConfig holds configuration for the definition watcher.
type WatcherConfig struct {
	// Dir is the directory containing definition files.
	Dir string

	// WatchInterval is the fallback polling interval when fsnotify is not available.
	WatchInterval time.Duration

	// DebounceInterval collapses bursts of changes into a single callback.
	DebounceInterval time.Duration

	// OnChange is called when definition files are created, modified or removed.
	OnChange func()
}

// Watcher monitors a directory of YAML definitions and calls OnChange after
// files change.  It uses fsnotify with a fallback to polling.
type Watcher struct {
	mu sync.Mutex

	config WatcherConfig

	// fsWatcher is the fsnotify watcher (may be nil if fsnotify is unavailable)
	fsWatcher *fsnotify.Watcher

	// stopCh signals the watcher to stop
	stopCh chan struct{}

	// running indicates if the watcher is active
	running bool

	// lastModTimes tracks the last modification times for fallback polling
	lastModTimes map[string]time.Time
	polled       bool

	debounceTimer *time.Timer
	debounceMu    sync.Mutex
}

// NewWatcher creates a new definition watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.WatchInterval == 0 {
		config.WatchInterval = DefaultWatchInterval
	}
	if config.DebounceInterval == 0 {
		config.DebounceInterval = DefaultDebounceInterval
	}

	return &Watcher{
		config:       config,
		lastModTimes: make(map[string]time.Time),
	}
}

// Start begins watching for definition changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.stopCh = make(chan struct{})
	w.running = true

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("Watcher", "fsnotify not available, falling back to polling: %v", err)
		go w.pollForChanges(w.stopCh)
		return nil
	}

	if err := watcher.Add(w.config.Dir); err != nil {
		logging.Warn("Watcher", "Failed to watch directory %s, falling back to polling: %v",
			w.config.Dir, err)
		watcher.Close()
		go w.pollForChanges(w.stopCh)
		return nil
	}
	w.fsWatcher = watcher

	// Capture channels before releasing lock to avoid race conditions
	go w.processEvents(w.stopCh, watcher.Events, watcher.Errors)

	logging.Info("Watcher", "Started watching %s for definition changes", w.config.Dir)
	return nil
}

// processEvents handles fsnotify events.
func (w *Watcher) processEvents(stopCh <-chan struct{}, eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("Watcher", err, "fsnotify error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !isYAMLFile(event.Name) {
		return
	}

	// Chmod alone does not change the definition
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	logging.Debug("Watcher", "Definition file changed: %s (%s)", event.Name, event.Op)
	w.triggerReloadDebounced()
}

// triggerReloadDebounced triggers a reload after a debounce period.
func (w *Watcher) triggerReloadDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.config.DebounceInterval, func() {
		w.mu.Lock()
		running := w.running
		callback := w.config.OnChange
		w.mu.Unlock()

		if running && callback != nil {
			callback()
		}
	})
}

// pollForChanges implements fallback polling when fsnotify is not available.
func (w *Watcher) pollForChanges(stopCh <-chan struct{}) {
	ticker := time.NewTicker(w.config.WatchInterval)
	defer ticker.Stop()

	w.checkForChanges()

	for {
		select {
		case <-stopCh:
			return

		case <-ticker.C:
			if w.checkForChanges() {
				logging.Debug("Watcher", "Definition changes detected via polling")
				w.triggerReloadDebounced()
			}
		}
	}
}

// checkForChanges records the current modification times and reports whether
// any file was added, modified or removed since the previous call.
func (w *Watcher) checkForChanges() bool {
	files, err := listYAMLFiles(w.config.Dir)
	if err != nil {
		logging.Debug("Watcher", "Failed to list %s: %v", w.config.Dir, err)
		return false
	}

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	first := !w.polled
	w.polled = true
	changed := false
	current := make(map[string]time.Time, len(files))
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		current[file] = info.ModTime()
		if last, exists := w.lastModTimes[file]; !exists || info.ModTime().After(last) {
			changed = true
		}
	}
	if len(current) != len(w.lastModTimes) {
		changed = true
	}
	w.lastModTimes = current

	return changed && !first
}

// Stop gracefully stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.stopCh)

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()

	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			logging.Warn("Watcher", "Error closing fsnotify watcher: %v", err)
		}
		w.fsWatcher = nil
	}

	logging.Info("Watcher", "Stopped watching %s", filepath.Clean(w.config.Dir))
	return nil
}

// IsRunning returns whether the watcher is currently active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
