package kernel

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/lottery/model/proc"
	"github.com/viant/lottery/model/pstat"
	"github.com/viant/lottery/model/sys"
	"github.com/viant/lottery/service/allocator"
	"github.com/viant/lottery/service/event"
	"github.com/viant/lottery/service/messaging/memory"
	"github.com/viant/lottery/service/processor"
	"github.com/viant/lottery/service/uvm"
)

func startKernel(t *testing.T, cpus int, options ...Option) *Kernel {
	t.Helper()
	logger, _ := test.NewNullLogger()
	options = append([]Option{WithLogger(logger), WithRandSource(allocator.NewRandSource(1))}, options...)
	k := New(options...)
	ctx, cancel := context.WithCancel(context.Background())
	go k.Clock().Start(ctx, time.Millisecond)
	cpu, err := processor.New(processor.WithScheduler(k), processor.WithCPUs(cpus), processor.WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, cpu.Start(ctx))
	t.Cleanup(func() {
		k.KillAll()
		assert.Eventually(t, func() bool { return k.Live() == 0 }, 5*time.Second, time.Millisecond)
		cancel()
		cpu.Shutdown()
	})
	return k
}

func runMain(t *testing.T, k *Kernel, prog Program) int {
	t.Helper()
	done := make(chan int, 1)
	_, err := k.Boot(context.Background(), "main", func(p *Proc) int {
		status := prog(p)
		done <- status
		return status
	})
	require.NoError(t, err)
	select {
	case status := <-done:
		return status
	case <-time.After(20 * time.Second):
		t.Fatal("main did not finish")
	}
	return -1
}

func readPInfo(t *testing.T, p *Proc, addr uint64) *pstat.PStat {
	st := &pstat.PStat{}
	if !assert.NoError(t, p.GetPInfo(addr)) {
		return st
	}
	buf := make([]byte, pstat.Size)
	assert.NoError(t, p.Memory().CopyIn(buf, addr))
	assert.NoError(t, st.UnmarshalBinary(buf))
	return st
}

func stateOf(k *Kernel, pid int) proc.State {
	for _, info := range k.Processes() {
		if info.PID == pid {
			return info.State
		}
	}
	return proc.Unused
}

func TestProc_SetTickets(t *testing.T) {
	k := startKernel(t, 1)
	status := runMain(t, k, func(p *Proc) int {
		addr, err := p.Sbrk(pstat.Size)
		assert.NoError(t, err)

		st := readPInfo(t, p, addr)
		slot, ok := st.Find(p.GetPID())
		assert.True(t, ok)
		assert.Equal(t, proc.DefaultTickets, st.Tickets[slot])

		assert.NoError(t, p.SetTickets(30))
		assert.EqualValues(t, 30, readPInfo(t, p, addr).Tickets[slot])

		assert.ErrorIs(t, p.SetTickets(0), proc.ErrInvalidArgument)
		assert.ErrorIs(t, p.SetTickets(-5), proc.ErrInvalidArgument)
		assert.EqualValues(t, 30, readPInfo(t, p, addr).Tickets[slot])
		return 0
	})
	assert.Equal(t, 0, status)
}

func TestProc_ForkInheritance(t *testing.T) {
	k := startKernel(t, 1)
	status := runMain(t, k, func(p *Proc) int {
		addr, _ := p.Sbrk(pstat.Size)
		assert.NoError(t, p.SetTickets(50))

		var parentChanged atomic.Bool
		var observed atomic.Int32
		childPID, err := p.Fork("child", func(c *Proc) int {
			caddr, _ := c.Sbrk(pstat.Size)
			st := readPInfo(t, c, caddr)
			slot, _ := st.Find(c.GetPID())
			observed.Store(st.Tickets[slot])
			for !parentChanged.Load() {
				c.Yield()
			}
			st = readPInfo(t, c, caddr)
			if st.Tickets[slot] != 50 {
				return 1
			}
			assert.NoError(t, c.SetTickets(5))
			return 0
		})
		assert.NoError(t, err)
		assert.NoError(t, p.SetTickets(9))
		parentChanged.Store(true)

		pid, status, err := p.Wait()
		assert.NoError(t, err)
		assert.Equal(t, childPID, pid)
		assert.Equal(t, 0, status)
		assert.EqualValues(t, 50, observed.Load())

		st := readPInfo(t, p, addr)
		slot, _ := st.Find(p.GetPID())
		assert.EqualValues(t, 9, st.Tickets[slot])
		_, ok := st.Find(childPID)
		assert.False(t, ok)
		return 0
	})
	assert.Equal(t, 0, status)
}

func TestProc_GetSyscallCount(t *testing.T) {
	k := startKernel(t, 1)
	status := runMain(t, k, func(p *Proc) int {
		count, err := p.GetSyscallCount(int(sys.Fork))
		assert.NoError(t, err)
		assert.EqualValues(t, 0, count)

		_, err = p.Fork("child", func(c *Proc) int {
			n, err := c.GetSyscallCount(int(sys.Fork))
			if err != nil {
				return -2
			}
			return int(n)
		})
		assert.NoError(t, err)
		_, childStatus, err := p.Wait()
		assert.NoError(t, err)
		assert.Equal(t, 0, childStatus)

		count, _ = p.GetSyscallCount(int(sys.Fork))
		assert.EqualValues(t, 1, count)
		count, _ = p.GetSyscallCount(int(sys.Wait))
		assert.EqualValues(t, 1, count)

		_, err = p.GetSyscallCount(-1)
		assert.ErrorIs(t, err, proc.ErrInvalidArgument)
		_, err = p.GetSyscallCount(proc.NSyscall)
		assert.ErrorIs(t, err, proc.ErrInvalidArgument)

		count, _ = p.GetSyscallCount(int(sys.GetSyscallCount))
		assert.EqualValues(t, 6, count)
		return 0
	})
	assert.Equal(t, 0, status)
}

func TestProc_GetPInfoBoundary(t *testing.T) {
	k := startKernel(t, 1)
	status := runMain(t, k, func(p *Proc) int {
		assert.ErrorIs(t, p.GetPInfo(0), proc.ErrBoundaryFault)

		addr, _ := p.Sbrk(pstat.Size)
		assert.NoError(t, p.Memory().Protect(addr, pstat.Size, uvm.PermRead))
		assert.ErrorIs(t, p.GetPInfo(addr), proc.ErrBoundaryFault)

		buf := make([]byte, pstat.Size)
		assert.NoError(t, p.Memory().CopyIn(buf, addr))
		assert.Equal(t, make([]byte, pstat.Size), buf)

		assert.NoError(t, p.SetTickets(4))
		assert.Equal(t, 1, k.Snapshot().InUseCount())
		return 0
	})
	assert.Equal(t, 0, status)
}

func TestProc_PauseInterrupted(t *testing.T) {
	k := startKernel(t, 1)
	status := runMain(t, k, func(p *Proc) int {
		pid, err := p.Fork("sleeper", func(c *Proc) int {
			if err := c.Pause(1000000); errors.Is(err, proc.ErrInterrupted) {
				return 7
			}
			return 1
		})
		assert.NoError(t, err)
		for stateOf(k, pid) != proc.Sleeping {
			assert.NoError(t, p.Pause(1))
		}
		assert.NoError(t, p.Kill(pid))
		wpid, status, err := p.Wait()
		assert.NoError(t, err)
		assert.Equal(t, pid, wpid)
		assert.Equal(t, 7, status)

		assert.ErrorIs(t, p.Kill(pid), proc.ErrNotFound)
		return 0
	})
	assert.Equal(t, 0, status)
}

func TestProc_Pause(t *testing.T) {
	k := startKernel(t, 2)
	status := runMain(t, k, func(p *Proc) int {
		start := p.Uptime()
		assert.NoError(t, p.Pause(5))
		assert.GreaterOrEqual(t, p.Uptime()-start, uint64(5))
		return 0
	})
	assert.Equal(t, 0, status)
}

func TestProc_Wait(t *testing.T) {
	t.Run("no children", func(t *testing.T) {
		k := startKernel(t, 1)
		status := runMain(t, k, func(p *Proc) int {
			_, _, err := p.Wait()
			assert.ErrorIs(t, err, proc.ErrNoChildren)
			return 0
		})
		assert.Equal(t, 0, status)
	})

	t.Run("exit status", func(t *testing.T) {
		k := startKernel(t, 2)
		status := runMain(t, k, func(p *Proc) int {
			expect := map[int]int{}
			for i := 0; i < 5; i++ {
				code := i + 10
				pid, err := p.Fork("child", func(c *Proc) int {
					c.Yield()
					c.Exit(code)
					return 0
				})
				assert.NoError(t, err)
				expect[pid] = code
			}
			for range expect {
				pid, status, err := p.Wait()
				assert.NoError(t, err)
				assert.Equal(t, expect[pid], status)
			}
			_, _, err := p.Wait()
			assert.ErrorIs(t, err, proc.ErrNoChildren)
			return 0
		})
		assert.Equal(t, 0, status)
	})

	t.Run("interrupted", func(t *testing.T) {
		k := startKernel(t, 1)
		status := runMain(t, k, func(p *Proc) int {
			waiter, err := p.Fork("waiter", func(w *Proc) int {
				self := w.GetPID()
				_, _ = w.Fork("spinner", func(c *Proc) int {
					for {
						c.Yield()
					}
				})
				_, _ = w.Fork("killer", func(c *Proc) int {
					for stateOf(k, self) != proc.Sleeping {
						c.Yield()
					}
					_ = c.Kill(self)
					for {
						c.Yield()
					}
				})
				if _, _, err := w.Wait(); errors.Is(err, proc.ErrInterrupted) {
					return 5
				}
				return 1
			})
			assert.NoError(t, err)
			pid, status, err := p.Wait()
			assert.NoError(t, err)
			assert.Equal(t, waiter, pid)
			assert.Equal(t, 5, status)
			return 0
		})
		assert.Equal(t, 0, status)
	})
}

func TestProc_Panic(t *testing.T) {
	logger, hook := test.NewNullLogger()
	k := startKernel(t, 1, WithLogger(logger))
	status := runMain(t, k, func(p *Proc) int {
		_, err := p.Fork("broken", func(c *Proc) int {
			var m map[string]int
			m["boom"]++
			return 0
		})
		assert.NoError(t, err)
		_, status, err := p.Wait()
		assert.NoError(t, err)
		assert.Equal(t, -1, status)
		return 0
	})
	assert.Equal(t, 0, status)
	var found bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel && entry.Data["pid"] != nil {
			found = true
		}
	}
	assert.True(t, found)
}

func TestProc_TableFull(t *testing.T) {
	k := startKernel(t, 2)
	status := runMain(t, k, func(p *Proc) int {
		var pids []int
		for {
			pid, err := p.Fork("idle", func(c *Proc) int {
				_ = c.Pause(1000000)
				return 0
			})
			if err != nil {
				assert.ErrorIs(t, err, proc.ErrTableFull)
				break
			}
			pids = append(pids, pid)
		}
		assert.Len(t, pids, proc.NProc-1)
		assert.Equal(t, proc.NProc, k.Snapshot().InUseCount())
		for _, pid := range pids {
			assert.NoError(t, p.Kill(pid))
		}
		for range pids {
			_, _, err := p.Wait()
			assert.NoError(t, err)
		}
		return 0
	})
	assert.Equal(t, 0, status)
}

func TestProc_Write(t *testing.T) {
	console := &bytes.Buffer{}
	k := startKernel(t, 1, WithConsole(console))
	status := runMain(t, k, func(p *Proc) int {
		n, err := p.Write(1, []byte("hello\n"))
		assert.NoError(t, err)
		assert.Equal(t, 6, n)
		_, err = p.Write(3, []byte("x"))
		assert.ErrorIs(t, err, proc.ErrBadDescriptor)
		return 0
	})
	assert.Equal(t, 0, status)
	assert.Equal(t, "hello\n", console.String())
}

func TestProc_Preempt(t *testing.T) {
	k := startKernel(t, 1)
	var iterations atomic.Int64
	status := runMain(t, k, func(p *Proc) int {
		pid, err := p.Fork("busy", func(c *Proc) int {
			for {
				iterations.Add(1)
				c.Preempt()
			}
		})
		assert.NoError(t, err)
		assert.NoError(t, p.Pause(3))
		assert.NoError(t, p.Kill(pid))
		_, status, err := p.Wait()
		assert.NoError(t, err)
		assert.Equal(t, -1, status)
		return 0
	})
	assert.Equal(t, 0, status)
	assert.Greater(t, iterations.Load(), int64(0))
}

// shareOf runs one busy child per weight until their ticks add up to quanta
// and returns each child's fraction of the ticks
func shareOf(t *testing.T, k *Kernel, weights []int32, quanta int32, preempt bool) []float64 {
	var shares []float64
	status := runMain(t, k, func(p *Proc) int {
		var pids []int
		for _, w := range weights {
			pid, err := p.Fork("spin", func(c *Proc) int {
				if err := c.SetTickets(w); err != nil {
					return 1
				}
				for {
					if preempt {
						c.Preempt()
					} else {
						c.Yield()
					}
				}
			})
			if !assert.NoError(t, err) {
				return 1
			}
			pids = append(pids, pid)
		}
		addr, _ := p.Sbrk(pstat.Size)
		ticks := make([]int32, len(pids))
		for {
			if err := p.Pause(1); err != nil {
				return 1
			}
			st := readPInfo(t, p, addr)
			var total int32
			for i, pid := range pids {
				slot, ok := st.Find(pid)
				if !assert.True(t, ok) {
					return 1
				}
				ticks[i] = st.Ticks[slot]
				total += ticks[i]
			}
			if total >= quanta {
				for i := range ticks {
					shares = append(shares, float64(ticks[i])/float64(total))
				}
				break
			}
		}
		for _, pid := range pids {
			assert.NoError(t, p.Kill(pid))
		}
		for range pids {
			_, status, err := p.Wait()
			assert.NoError(t, err)
			assert.Equal(t, -1, status)
		}
		return 0
	})
	require.Equal(t, 0, status)
	return shares
}

func TestKernel_ProportionalShare(t *testing.T) {
	weights := []int32{30, 20, 10}
	expect := []float64{0.5, 1.0 / 3, 1.0 / 6}
	testCases := []struct {
		description string
		quanta      int32
		preempt     bool
		delta       float64
	}{
		{description: "short run, loose bound", quanta: 3000, delta: 0.08},
		{description: "long run, tight bound", quanta: 30000, delta: 0.03},
		{description: "clock driven quanta", quanta: 500, preempt: true, delta: 0.12},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			k := startKernel(t, 1)
			shares := shareOf(t, k, weights, testCase.quanta, testCase.preempt)
			require.Len(t, shares, len(expect))
			for i := range expect {
				assert.InDelta(t, expect[i], shares[i], testCase.delta, "weight %d", weights[i])
			}
		})
	}
}

func TestKernel_ConcurrentSnapshot(t *testing.T) {
	k := startKernel(t, 4)
	status := runMain(t, k, func(p *Proc) int {
		for i := 0; i < 32; i++ {
			_, err := p.Fork("worker", func(c *Proc) int {
				_ = c.SetTickets(int32(c.GetPID()%7 + 1))
				for j := 0; j < 50; j++ {
					c.Yield()
				}
				return 0
			})
			assert.NoError(t, err)
		}
		addr, _ := p.Sbrk(pstat.Size)
		reaped := 0
		for reaped < 32 {
			st := readPInfo(t, p, addr)
			for slot := 0; slot < proc.NProc; slot++ {
				if st.InUse[slot] == 0 {
					continue
				}
				assert.GreaterOrEqual(t, st.Tickets[slot], int32(1))
				assert.Greater(t, st.PID[slot], int32(0))
			}
			_, status, err := p.Wait()
			assert.NoError(t, err)
			assert.Equal(t, 0, status)
			reaped++
		}
		return 0
	})
	assert.Equal(t, 0, status)
}

func TestKernel_Events(t *testing.T) {
	publisher := event.NewPublisher[proc.Event](memory.NewQueue[event.Event[proc.Event]](memory.DefaultConfig()))
	k := startKernel(t, 1, WithEvents(publisher))
	var childPID int
	status := runMain(t, k, func(p *Proc) int {
		childPID, _ = p.Fork("child", func(c *Proc) int {
			_ = c.SetTickets(12)
			return 3
		})
		_, _, err := p.Wait()
		assert.NoError(t, err)
		return 0
	})
	assert.Equal(t, 0, status)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	var kinds []proc.EventKind
	for len(kinds) < 5 {
		e, err := publisher.Consume(ctx)
		require.NoError(t, err)
		if e.Data.PID != childPID {
			continue
		}
		assert.Equal(t, k.BootID(), e.Context.Boot)
		kinds = append(kinds, e.Data.Kind)
		switch e.Data.Kind {
		case proc.EventTicketsChanged:
			assert.EqualValues(t, 12, e.Data.Tickets)
		case proc.EventExited:
			assert.Equal(t, 3, e.Data.Status)
		}
		if e.Data.Kind == proc.EventReaped {
			break
		}
	}
	assert.Equal(t, []proc.EventKind{proc.EventForked, proc.EventTicketsChanged, proc.EventExited, proc.EventReaped}, kinds)
}
