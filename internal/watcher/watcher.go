// Package watcher monitors a project tree for file changes and feeds
// debounced, filtered events into the pipeline. Raw fsnotify events
// arrive per syscall; the debouncer batches them so a save that touches
// a file three times produces one update.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/larnav/internal/config"
	"github.com/standardbeagle/larnav/internal/debug"
	"github.com/standardbeagle/larnav/internal/project"
)

// EventType classifies what happened to a file.
type EventType int

const (
	EventCreate EventType = iota
	EventWrite
	EventRemove
)

// Event is one debounced file change, path relative to the project root.
type Event struct {
	Path string
	Type EventType
}

// Handler receives batches of debounced events. Events for the same
// file collapse to the latest state; distinct files keep no relative
// order.
type Handler func(events []Event)

// Watcher monitors the project tree.
type Watcher struct {
	proj    *project.Project
	cfg     *config.Config
	fs      *fsnotify.Watcher
	handler Handler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pending map[string]EventType
	timer   *time.Timer

	statsMu sync.RWMutex
	stats   Stats
}

// Stats counts watcher activity.
type Stats struct {
	EventsSeen      int64
	EventsDelivered int64
	Errors          int64
}

func New(proj *project.Project, cfg *config.Config, handler Handler) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		proj:    proj,
		cfg:     cfg,
		fs:      fs,
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[string]EventType),
	}, nil
}

// Start adds watches for every directory in the scan surface and begins
// processing events.
func (w *Watcher) Start() error {
	if err := w.addWatches(w.proj.Root); err != nil {
		return fmt.Errorf("add watches under %s: %w", w.proj.Root, err)
	}
	w.wg.Add(1)
	go w.processEvents()
	debug.LogWatch("watching %s\n", w.proj.Root)
	return nil
}

// Stop shuts the watcher down. Events pending in the debounce window
// are dropped; the caller is tearing the pipeline down anyway.
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.fs.Close()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	w.wg.Wait()
	return err
}

// addWatches walks the tree adding one watch per directory. Symlink
// cycles are broken by tracking resolved paths.
func (w *Watcher) addWatches(root string) error {
	visited := make(map[string]bool)

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}

		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visited[real] {
			return filepath.SkipDir
		}
		visited[real] = true

		rel := w.proj.Rel(path)
		if rel != "." && w.proj.Ignored(rel, true) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			debug.LogWatch("watch %s: %v\n", path, err)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.statsMu.Lock()
			w.stats.Errors++
			w.statsMu.Unlock()
			debug.LogWatch("watcher error: %v\n", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	w.statsMu.Lock()
	w.stats.EventsSeen++
	w.statsMu.Unlock()

	rel := w.proj.Rel(event.Name)

	info, statErr := os.Stat(event.Name)
	if statErr != nil {
		// Gone already: removes and renames both land here.
		if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && w.trackable(rel) {
			w.enqueue(rel, EventRemove)
		}
		return
	}

	if info.IsDir() {
		// New directories join the watch set so files created inside
		// them are seen.
		if event.Op&fsnotify.Create != 0 && !w.proj.Ignored(rel, true) {
			if err := w.fs.Add(event.Name); err != nil {
				debug.LogWatch("watch new dir %s: %v\n", event.Name, err)
			}
		}
		return
	}

	if !w.trackable(rel) {
		return
	}
	if w.cfg.Scan.MaxFileSize > 0 && info.Size() > w.cfg.Scan.MaxFileSize {
		return
	}

	switch {
	case event.Op&fsnotify.Create != 0:
		w.enqueue(rel, EventCreate)
	case event.Op&fsnotify.Write != 0:
		w.enqueue(rel, EventWrite)
	}
}

// trackable reports whether a file participates in the pipeline:
// sources, env files, and anything else inside the scan surface.
func (w *Watcher) trackable(rel string) bool {
	if rel == "" || rel == "." {
		return false
	}
	if w.proj.Ignored(rel, false) {
		return false
	}
	return true
}

// enqueue records the latest event for a path and arms the flush timer.
func (w *Watcher) enqueue(rel string, t EventType) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// A create followed by a write within one window is still a create;
	// anything followed by a remove is a remove.
	prev, seen := w.pending[rel]
	switch {
	case !seen:
		w.pending[rel] = t
	case t == EventRemove:
		w.pending[rel] = EventRemove
	case prev == EventCreate:
		// keep create
	default:
		w.pending[rel] = t
	}

	delay := time.Duration(w.cfg.Engine.InputDebounceMs) * time.Millisecond
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(delay, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = make(map[string]EventType)
	w.mu.Unlock()

	if len(pending) == 0 || w.ctx.Err() != nil {
		return
	}

	// Removes first so resources free before their replacements load.
	events := make([]Event, 0, len(pending))
	for rel, t := range pending {
		if t == EventRemove {
			events = append(events, Event{Path: rel, Type: t})
		}
	}
	for rel, t := range pending {
		if t != EventRemove {
			events = append(events, Event{Path: rel, Type: t})
		}
	}

	w.statsMu.Lock()
	w.stats.EventsDelivered += int64(len(events))
	w.statsMu.Unlock()

	debug.LogWatch("delivering %d debounced events\n", len(events))
	w.handler(events)
}

// GetStats returns a copy of the activity counters.
func (w *Watcher) GetStats() Stats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	return w.stats
}
