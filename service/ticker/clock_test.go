package ticker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/lottery/model/proc"
)

type testSleeper struct {
	killed  atomic.Bool
	parked  atomic.Int32
	resumed atomic.Int32
}

func (s *testSleeper) Killed() bool { return s.killed.Load() }
func (s *testSleeper) Park()        { s.parked.Add(1) }
func (s *testSleeper) Unpark()      { s.resumed.Add(1) }

func TestClock_Tick(t *testing.T) {
	c := New()
	assert.EqualValues(t, 0, c.Now())
	assert.EqualValues(t, 1, c.Tick())
	assert.EqualValues(t, 2, c.Tick())
	assert.EqualValues(t, 2, c.Now())
}

func TestClock_SleepUntil(t *testing.T) {
	t.Run("already reached", func(t *testing.T) {
		c := New()
		c.Tick()
		s := &testSleeper{}
		assert.NoError(t, c.SleepUntil(1, s))
		assert.EqualValues(t, 0, s.parked.Load())
	})

	t.Run("wakes on ticks", func(t *testing.T) {
		c := New()
		s := &testSleeper{}
		done := make(chan error, 1)
		go func() { done <- c.Sleep(3, s) }()
		for i := 0; i < 3; i++ {
			time.Sleep(5 * time.Millisecond)
			c.Tick()
		}
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("sleeper did not wake")
		}
		assert.Equal(t, s.parked.Load(), s.resumed.Load())
		assert.GreaterOrEqual(t, c.Now(), uint64(3))
	})

	t.Run("interrupted", func(t *testing.T) {
		c := New()
		s := &testSleeper{}
		done := make(chan error, 1)
		go func() { done <- c.Sleep(1000, s) }()
		time.Sleep(10 * time.Millisecond)
		s.killed.Store(true)
		c.Wake()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, proc.ErrInterrupted)
		case <-time.After(time.Second):
			t.Fatal("killed sleeper did not return")
		}
	})
}

func TestClock_Start(t *testing.T) {
	c := New()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Start(ctx, time.Millisecond)
	}()
	assert.Eventually(t, func() bool { return c.Now() >= 5 }, time.Second, time.Millisecond)
	cancel()
	wg.Wait()
	stopped := c.Now()
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, stopped, c.Now())
}
