// Package watcher provides recursive filesystem watching with debouncing,
// used to trigger index synchronization when workspace files change.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"lsindex/src/internal/common"
)

// Event represents a debounced file change event
type Event struct {
	Path string
	Op   fsnotify.Op
	Time time.Time
}

// Handler is called with debounced events
type Handler func(Event)

// FileWatcher watches a directory tree recursively and delivers debounced
// change events for files matching a set of extensions. New
// subdirectories are picked up as they appear; hidden and well-known
// build directories are never watched.
type FileWatcher struct {
	watcher    *fsnotify.Watcher
	handler    Handler
	extensions map[string]bool
	debounce   time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	done    chan struct{}
	stopped bool
}

const defaultDebounce = 500 * time.Millisecond

var skipDirectories = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"build":        true,
	"dist":         true,
	"out":          true,
	"bin":          true,
	"obj":          true,
	"__pycache__":  true,
	"coverage":     true,
	"tmp":          true,
	"temp":         true,
}

// NewFileWatcher creates a watcher for the given file extensions (with
// leading dot, e.g. ".go"). An empty extension list watches every file.
func NewFileWatcher(extensions []string, handler Handler) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	extSet := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		extSet[ext] = true
	}
	return &FileWatcher{
		watcher:    w,
		handler:    handler,
		extensions: extSet,
		debounce:   defaultDebounce,
		pending:    make(map[string]*time.Timer),
		done:       make(chan struct{}),
	}, nil
}

// SetDebounce overrides the debounce interval, used by tests
func (fw *FileWatcher) SetDebounce(d time.Duration) {
	fw.debounce = d
}

// Watch adds a directory tree to the watch set
func (fw *FileWatcher) Watch(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || skipDirectories[name]) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			common.ScanLogger.Warn("failed to watch %s: %v", path, err)
		}
		return nil
	})
}

// Start runs the event loop until Stop is called or ctx is cancelled
func (fw *FileWatcher) Start(ctx context.Context) {
	go fw.loop(ctx)
}

func (fw *FileWatcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.done:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			common.ScanLogger.Warn("watch error: %v", err)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	// Watch directories created after startup.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			name := filepath.Base(event.Name)
			if !strings.HasPrefix(name, ".") && !skipDirectories[name] {
				if err := fw.watcher.Add(event.Name); err != nil {
					common.ScanLogger.Warn("failed to watch %s: %v", event.Name, err)
				}
			}
			return
		}
	}

	if !fw.matches(event.Name) {
		return
	}
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.stopped {
		return
	}
	if timer, ok := fw.pending[event.Name]; ok {
		timer.Stop()
	}
	path, op := event.Name, event.Op
	fw.pending[path] = time.AfterFunc(fw.debounce, func() {
		fw.mu.Lock()
		delete(fw.pending, path)
		stopped := fw.stopped
		fw.mu.Unlock()
		if stopped {
			return
		}
		fw.handler(Event{Path: path, Op: op, Time: time.Now()})
	})
}

func (fw *FileWatcher) matches(path string) bool {
	if len(fw.extensions) == 0 {
		return true
	}
	return fw.extensions[filepath.Ext(path)]
}

// Stop shuts the watcher down and cancels pending debounced events
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return nil
	}
	fw.stopped = true
	for path, timer := range fw.pending {
		timer.Stop()
		delete(fw.pending, path)
	}
	fw.mu.Unlock()

	close(fw.done)
	return fw.watcher.Close()
}
