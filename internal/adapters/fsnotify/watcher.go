// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It watches the directory holding a corpus file, filters events down to
// that file, and debounces rapid events (editors often trigger multiple
// writes per save).
package fsnotify

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceInterval is the quiet period required before a callback.
const debounceInterval = 50 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw      *fsnotify.Watcher
	done    chan struct{}
	stopped bool
	timer   *time.Timer // pending debounced callback
	mu      sync.Mutex  // guards stopped and timer; held while onChange runs
}

// NewWatcher creates a new file system watcher.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:   fw,
		done: make(chan struct{}),
	}, nil
}

// Watch starts monitoring path. onChange is called with the absolute path
// of the file after each debounced write or create. Editors that save by
// writing a scratch file and renaming it over path produce a create.
// onChange must not call Stop.
func (w *Watcher) Watch(path string, onChange func(filePath string)) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	// Watch the directory so the watch survives rename-on-save.
	if err := w.fw.Add(filepath.Dir(absPath)); err != nil {
		return err
	}

	// Trailing-edge debounce: fire once the file has been quiet for
	// debounceInterval.
	fire := func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.stopped {
			return
		}
		onChange(absPath)
	}

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if !matches(absPath, event.Name) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				w.schedule(fire)

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// Errors are swallowed — fsnotify recovers automatically

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// schedule arms the debounce timer, or pushes it back if already armed.
func (w *Watcher) schedule(fire func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(debounceInterval, fire)
		return
	}
	w.timer.Reset(debounceInterval)
}

// Stop ends monitoring and releases all resources. It waits for a running
// callback to return; no callback starts afterwards.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	return w.fw.Close()
}

// matches reports whether an event for name concerns the watched file.
func matches(watched, name string) bool {
	abs, err := filepath.Abs(name)
	return err == nil && abs == watched
}
