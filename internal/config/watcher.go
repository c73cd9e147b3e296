package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports writes to a set of config/theme files so callers can
// reload and refresh.
type Watcher struct {
	fsw      *fsnotify.Watcher
	onChange func(path string)

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// Watch starts watching the given paths. onChange is invoked from the
// watcher goroutine with the path that changed. Paths that do not exist
// are skipped.
func Watch(paths []string, onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	for _, p := range paths {
		// Best effort: a missing config file just isn't watched.
		_ = fsw.Add(p)
	}

	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
				w.onChange(ev.Name)
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.fsw.Close()
	<-w.done
	return err
}
