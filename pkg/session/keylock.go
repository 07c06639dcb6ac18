package session

import "sync"

// keyLock hands out one mutex per key. Entries are reference counted
// and removed when the last holder unlocks, so idle sessions cost nothing.
type keyLock struct {
	mu      sync.Mutex
	entries map[string]*keyEntry
}

type keyEntry struct {
	sync.Mutex
	waiters int
}

func newKeyLock() *keyLock {
	return &keyLock{entries: map[string]*keyEntry{}}
}

// lock blocks until key is free and returns the matching unlock.
func (k *keyLock) lock(key string) (unlock func()) {
	k.mu.Lock()
	e := k.entries[key]
	if e == nil {
		e = &keyEntry{}
		k.entries[key] = e
	}
	e.waiters++
	k.mu.Unlock()

	e.Lock()
	return func() {
		e.Unlock()

		k.mu.Lock()
		if e.waiters--; e.waiters == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

// size reports the number of keys currently held or awaited.
func (k *keyLock) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
