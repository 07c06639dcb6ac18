package content

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/aretw0/novella/internal/logging"
	"github.com/aretw0/novella/pkg/domain"
	"github.com/aretw0/novella/pkg/ports"
)

// Reloadable is a ports.ContentStore whose backing Store can be swapped atomically.
// Readers always observe one complete snapshot per call.
type Reloadable struct {
	current atomic.Pointer[Store]
}

var _ ports.ContentStore = (*Reloadable)(nil)

// NewReloadable wraps an initial store.
func NewReloadable(initial *Store) *Reloadable {
	r := &Reloadable{}
	r.current.Store(initial)
	return r
}

// Current returns the active snapshot.
func (r *Reloadable) Current() *Store {
	return r.current.Load()
}

// Swap replaces the active snapshot.
func (r *Reloadable) Swap(s *Store) {
	r.current.Store(s)
}

// Reload rebuilds the store from the loader. On failure the previous snapshot stays active.
func (r *Reloadable) Reload(loader ports.ContentLoader, opts ...Option) error {
	s, err := Load(loader, opts...)
	if err != nil {
		return err
	}
	r.Swap(s)
	return nil
}

// WatchAndReload reloads content every time the watcher signals a change until ctx ends.
// Failed reloads are logged and leave the previous content active.
func (r *Reloadable) WatchAndReload(ctx context.Context, loader ports.ContentLoader, w ports.Watchable, logger *slog.Logger, opts ...Option) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	ch, err := w.Watch(ctx)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				if err := r.Reload(loader, opts...); err != nil {
					logger.Error("Content reload failed; keeping previous version", "err", err)
					continue
				}
				logger.Info("Content reloaded", "version", r.Version(), "locales", r.Locales())
			}
		}
	}()
	return nil
}

func (r *Reloadable) Node(locale, id string) (domain.Node, bool) {
	return r.Current().Node(locale, id)
}

func (r *Reloadable) Nodes(locale string) []domain.Node {
	return r.Current().Nodes(locale)
}

func (r *Reloadable) Locales() []string {
	return r.Current().Locales()
}

func (r *Reloadable) HasLocale(locale string) bool {
	return r.Current().HasLocale(locale)
}

func (r *Reloadable) UIText(locale string) map[string]string {
	return r.Current().UIText(locale)
}

func (r *Reloadable) Version() string {
	return r.Current().Version()
}
