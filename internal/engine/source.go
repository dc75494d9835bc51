package engine

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Random is the entropy source used for start times and shuffling.
type Random interface {
	// IntN returns a uniform int in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// NewRandom returns a seeded PCG source. It is not safe for concurrent use.
func NewRandom(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// LockedRandom serializes access to a Random shared across goroutines.
type LockedRandom struct {
	mu  sync.Mutex
	rnd Random
}

func NewLockedRandom(rnd Random) *LockedRandom {
	return &LockedRandom{rnd: rnd}
}

func (l *LockedRandom) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rnd.IntN(n)
}

// Clock returns timestamps in milliseconds. Readings are stored with a session and
// compared by whichever process handles the next action, so they must share an origin.
type Clock interface {
	NowMillis() float64
}

// MonotonicClock reports milliseconds since the Unix epoch. The wall clock is read once
// at creation; later readings advance on the runtime monotonic clock and never go backwards.
type MonotonicClock struct {
	origin      time.Time
	originEpoch float64
}

func NewMonotonicClock() *MonotonicClock {
	now := time.Now()
	return &MonotonicClock{origin: now, originEpoch: float64(now.UnixNano()) / float64(time.Millisecond)}
}

func (c *MonotonicClock) NowMillis() float64 {
	return c.originEpoch + float64(time.Since(c.origin))/float64(time.Millisecond)
}

// ElapsedSeconds converts two millisecond marks into seconds.
// The caller guarantees end >= start; the value is not validated.
func ElapsedSeconds(startMillis, endMillis float64) float64 {
	return (endMillis - startMillis) / 1000
}

// randomBetween returns a uniform int in [min, max].
func randomBetween(rnd Random, min, max int) int {
	if max <= min {
		return min
	}
	return min + rnd.IntN(max-min+1)
}
