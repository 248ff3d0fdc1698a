// Package watcher handles file system watching for the daemon.
package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DebounceDelay is how long a file must stay quiet before its change is reported.
const DebounceDelay = 100 * time.Millisecond

// EventType represents the type of file system event.
type EventType int

// Event types for file system changes.
const (
	EventSettingsChanged EventType = iota
)

// Event represents a file system change event.
type Event struct {
	Type EventType
	Path string
}

// Watcher watches the settings file for external edits.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	eventsChan chan Event
	done       chan struct{}
	stopOnce   sync.Once
	log        *zap.Logger

	settingsPath string

	debounce   map[string]*time.Timer
	debounceMu sync.Mutex
}

// New creates a watcher for the settings file at settingsPath.
func New(settingsPath string, log *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher:    fsWatcher,
		eventsChan:   make(chan Event, 16),
		done:         make(chan struct{}),
		log:          log.Named("watcher"),
		settingsPath: filepath.Clean(settingsPath),
		debounce:     make(map[string]*time.Timer),
	}, nil
}

// Events returns the channel for receiving events.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Start watches the settings file's directory. Editors and atomic saves
// replace the file, so the directory is watched rather than the file.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.settingsPath)
	if err := w.fsWatcher.Add(dir); err != nil {
		return err
	}
	w.log.Info("watching settings", zap.String("path", w.settingsPath))

	go w.processEvents()
	return nil
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.debounceMu.Lock()
		for path, timer := range w.debounce {
			timer.Stop()
			delete(w.debounce, path)
		}
		w.debounceMu.Unlock()
	})
}

// processEvents processes file system events.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// handleEvent processes a single file system event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Atomic writes (write tmp, rename onto target) show up as Create or
	// Rename on the target rather than Write.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	if filepath.Clean(event.Name) != w.settingsPath {
		return
	}

	w.log.Debug("fsnotify", zap.Stringer("op", event.Op), zap.String("path", event.Name))
	w.debounceEvent(event.Name, func() {
		w.emit(Event{Type: EventSettingsChanged, Path: w.settingsPath})
	})
}

// debounceEvent debounces events for the same path.
func (w *Watcher) debounceEvent(path string, fn func()) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}

	w.debounce[path] = time.AfterFunc(DebounceDelay, func() {
		w.debounceMu.Lock()
		delete(w.debounce, path)
		w.debounceMu.Unlock()
		fn()
	})
}

func (w *Watcher) emit(ev Event) {
	select {
	case w.eventsChan <- ev:
	case <-w.done:
	}
}
