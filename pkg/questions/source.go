package questions

import (
	"math/rand/v2"
	"sync"
)

// Source supplies uniform random integers in [0, n).
// Tests inject a fixed Source to make generated questions deterministic.
type Source interface {
	IntN(n int) int
}

// lockedSource serializes access to a *rand.Rand, which is not safe for concurrent use.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a goroutine-safe Source seeded with the given values.
func NewSource(seed1, seed2 uint64) Source {
	return &lockedSource{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// globalSource draws from the auto-seeded top-level math/rand/v2 functions.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// between returns a uniform integer in the closed range [lo, hi].
func between(src Source, lo, hi int) int {
	return lo + src.IntN(hi-lo+1)
}
