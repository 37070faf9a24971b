package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/glstudios/laplace/engine/core"
)

// Watcher reports changes of the configuration file. It never blocks: the
// owner drains it with Poll from its own loop.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher
	current Configuration
}

// NewWatcher watches the directory of store. The file itself is replaced
// by rename on every write, so watching it directly would lose track of it.
func NewWatcher(store *Store, current Configuration) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := w.Add(store.Dir()); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", store.Dir(), err)
	}
	core.LogDebug("watching %s for configuration changes", store.Dir())
	return &Watcher{
		store:   store,
		watcher: w,
		current: current,
	}, nil
}

// Poll drains pending notifications. It returns the reloaded configuration
// and true when the file changed to a different value.
func (w *Watcher) Poll() (Configuration, bool, error) {
	touched := false
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return w.current, false, nil
			}
			if filepath.Base(event.Name) != FileName {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				touched = true
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return w.current, false, nil
			}
			return w.current, false, fmt.Errorf("config watcher: %w", err)
		default:
			return w.reload(touched)
		}
	}
}

func (w *Watcher) reload(touched bool) (Configuration, bool, error) {
	if !touched {
		return w.current, false, nil
	}
	c, err := w.store.Load()
	if err != nil {
		return w.current, false, err
	}
	if c == w.current {
		return c, false, nil
	}
	w.current = c
	return c, true, nil
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
