package allocator

import (
	"math/rand"
	"sync"

	"github.com/viant/lottery/internal/clock"
)

// RandSource yields uniformly distributed values in [0,n)
type RandSource interface {
	Int63n(n int64) int64
}

type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (l *lockedSource) Int63n(n int64) int64 {
	l.mu.Lock()
	v := l.rnd.Int63n(n)
	l.mu.Unlock()
	return v
}

// NewRandSource returns a goroutine-safe source. A zero seed is replaced with
// the current wall clock.
func NewRandSource(seed int64) RandSource {
	if seed == 0 {
		seed = clock.Now().UnixNano()
	}
	return &lockedSource{rnd: rand.New(rand.NewSource(seed))}
}
