package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/novella/internal/logging"
	"github.com/aretw0/novella/pkg/domain"
	"github.com/aretw0/novella/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a distributed session lock.
const DefaultLockTTL = 30 * time.Second

// Manager serializes access to each player session over a SessionStore.
type Manager struct {
	store  ports.SessionStore
	locks  *keyLock
	logger *slog.Logger

	locker  ports.DistributedLocker
	lockTTL time.Duration
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker adds a distributed lock so replicas sharing a store do not race.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) { m.locker = locker }
}

// WithLockTTL sets the expiry of distributed locks. Non-positive values are ignored.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   newKeyLock(),
		logger:  logging.NewNop(),
		lockTTL: DefaultLockTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

func (m *Manager) Load(ctx context.Context, sessionID string) (sess *domain.Session, err error) {
	err = m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		sess, err = m.store.Load(ctx, sessionID)
		return err
	})
	return sess, err
}

func (m *Manager) Save(ctx context.Context, sessionID string, sess *domain.Session) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, sess)
	})
}

func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List is not locked; it only reads IDs.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Update runs a read-modify-write cycle on one session under its lock.
// fn receives nil when the session does not exist yet. Its result is saved only
// when fn succeeds, so a failed engine operation never persists partial changes.
// A nil result with a nil error leaves the store untouched.
func (m *Manager) Update(ctx context.Context, sessionID string, fn func(*domain.Session) (*domain.Session, error)) (*domain.Session, error) {
	var saved *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		current, err := m.store.Load(ctx, sessionID)
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			current = nil
		case err != nil:
			return fmt.Errorf("failed to load session: %w", err)
		}

		next, err := fn(current)
		if err != nil || next == nil {
			return err
		}
		if err := m.store.Save(ctx, sessionID, next); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		saved = next
		return nil
	})
	return saved, err
}

// WithLock runs fn while holding the session's local lock and, when configured,
// its distributed lock.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	unlock := m.locks.lock(sessionID)
	defer unlock()

	if m.locker == nil {
		return fn(ctx)
	}

	release, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire distributed lock: %w", err)
	}
	defer func() {
		if err := release(ctx); err != nil {
			m.logger.Warn("Distributed lock not released; it will expire",
				"session_id", sessionID,
				"ttl", m.lockTTL,
				"err", err,
			)
		}
	}()
	return fn(ctx)
}
