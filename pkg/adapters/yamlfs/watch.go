package yamlfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce groups bursts of editor writes into a single reload signal.
const debounce = 100 * time.Millisecond

// Watch implements ports.Watchable.
// It watches the version directory and every locale directory for YAML changes.
// Locale directories created after Watch starts are picked up as well.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}

	if err := w.Add(l.Dir()); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", l.Dir(), err)
	}
	entries, err := os.ReadDir(l.Dir())
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to list %s: %w", l.Dir(), err)
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := w.Add(l.LocaleDir(e.Name())); err != nil {
				w.Close()
				return nil, fmt.Errorf("failed to watch locale %s: %w", e.Name(), err)
			}
		}
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer w.Close()

		var timer *time.Timer
		var fire <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case evt, ok := <-w.Events:
				if !ok {
					return
				}
				if evt.Has(fsnotify.Create) {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						_ = w.Add(evt.Name)
						continue
					}
				}
				if !relevant(evt) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				select {
				case ch <- struct{}{}:
				default:
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return ch, nil
}

func relevant(evt fsnotify.Event) bool {
	if evt.Op == fsnotify.Chmod {
		return false
	}
	ext := strings.ToLower(filepath.Ext(evt.Name))
	return ext == ".yaml" || ext == ".yml"
}
