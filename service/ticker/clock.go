// Package ticker implements the global scheduling clock. The tick counter is
// read lock-free; timed waits use a mutex and condition variable that are
// separate from every process slot lock.
package ticker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/lottery/model/proc"
)

// Sleeper is the process side of a timed wait
type Sleeper interface {
	// Killed reports whether the waiting process has been killed
	Killed() bool
	// Park gives up the CPU; it is called with the clock lock held
	Park()
	// Unpark reacquires a CPU; it is called without the clock lock
	Unpark()
}

// Clock represents the scheduling clock
type Clock struct {
	ticks atomic.Uint64
	mu    sync.Mutex
	cond  *sync.Cond
}

// Now returns current tick count
func (c *Clock) Now() uint64 {
	return c.ticks.Load()
}

// Tick advances the clock and wakes all timed waiters
func (c *Clock) Tick() uint64 {
	c.mu.Lock()
	v := c.ticks.Add(1)
	c.cond.Broadcast()
	c.mu.Unlock()
	return v
}

// Wake wakes all timed waiters without advancing the clock
func (c *Clock) Wake() {
	c.mu.Lock()
	c.cond.Broadcast()
	c.mu.Unlock()
}

// SleepUntil blocks until the clock reaches target. A killed sleeper returns
// proc.ErrInterrupted.
func (c *Clock) SleepUntil(target uint64, sleeper Sleeper) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.ticks.Load() < target {
		if sleeper.Killed() {
			return proc.ErrInterrupted
		}
		sleeper.Park()
		c.cond.Wait()
		c.mu.Unlock()
		sleeper.Unpark()
		c.mu.Lock()
	}
	return nil
}

// Sleep blocks for n ticks from now
func (c *Clock) Sleep(n uint64, sleeper Sleeper) error {
	return c.SleepUntil(c.Now()+n, sleeper)
}

// Start runs the timer hook every interval until ctx is done
func (c *Clock) Start(ctx context.Context, interval time.Duration) {
	timer := time.NewTicker(interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			c.Tick()
		}
	}
}

// New creates a clock at tick zero
func New() *Clock {
	ret := &Clock{}
	ret.cond = sync.NewCond(&ret.mu)
	return ret
}
