// Package demo holds user programs that exercise the scheduler from user
// space: a proportional share experiment, a fork inheritance check and a
// syscall counting tour.
package demo

import (
	"github.com/viant/lottery/model/proc"
	"github.com/viant/lottery/model/pstat"
	"github.com/viant/lottery/model/sys"
	"github.com/viant/lottery/user"
)

// ShareRow is the outcome for one competing child
type ShareRow struct {
	PID      int     `json:"pid"`
	Tickets  int     `json:"tickets"`
	Ticks    int     `json:"ticks"`
	Share    float64 `json:"share"`
	Expected float64 `json:"expected"`
}

// ShareResult is the outcome of a proportional share run
type ShareResult struct {
	Rows     []ShareRow  `json:"rows"`
	Total    int         `json:"total"`
	Snapshot pstat.PStat `json:"snapshot"`
}

// Share forks one busy child per weight, lets them compete until their
// quanta add up to at least quanta, then kills and reaps them. The children
// never yield on their own: each quantum ends on a clock tick.
func Share(weights []int, quanta int, result *ShareResult) func(e *user.Env) int {
	return func(e *user.Env) int {
		var pids []int
		totalTickets := 0
		for _, w := range weights {
			totalTickets += w
			pid := e.Fork("spin", func(c *user.Env) int {
				if c.SetTickets(w) != 0 {
					return 1
				}
				for {
					c.Preempt()
				}
			})
			if pid < 0 {
				e.Printf("share: fork failed\n")
				return 1
			}
			pids = append(pids, pid)
		}
		var st pstat.PStat
		for {
			if e.Pause(1) != 0 {
				return 1
			}
			if e.GetPInfo(&st) != 0 {
				return 1
			}
			if ticksOf(&st, pids) >= quanta {
				break
			}
		}
		result.Snapshot = st
		result.Total = ticksOf(&st, pids)
		for i, pid := range pids {
			row := ShareRow{PID: pid, Tickets: weights[i], Expected: float64(weights[i]) / float64(totalTickets)}
			if slot, ok := st.Find(pid); ok {
				row.Ticks = int(st.Ticks[slot])
			}
			if result.Total > 0 {
				row.Share = float64(row.Ticks) / float64(result.Total)
			}
			result.Rows = append(result.Rows, row)
		}
		for _, pid := range pids {
			e.Kill(pid)
		}
		for range pids {
			e.Wait()
		}
		return 0
	}
}

func ticksOf(st *pstat.PStat, pids []int) int {
	total := 0
	for _, pid := range pids {
		if slot, ok := st.Find(pid); ok {
			total += int(st.Ticks[slot])
		}
	}
	return total
}

// InheritResult reports allocations seen on both sides of a fork
type InheritResult struct {
	Parent int `json:"parent"`
	Child  int `json:"child"`
}

// Inherit sets tickets on the caller, forks, and records the allocation the
// child observes for itself.
func Inherit(tickets int, result *InheritResult) func(e *user.Env) int {
	return func(e *user.Env) int {
		if e.SetTickets(tickets) != 0 {
			return 1
		}
		var st pstat.PStat
		if e.GetPInfo(&st) != 0 {
			return 1
		}
		if slot, ok := st.Find(e.GetPID()); ok {
			result.Parent = int(st.Tickets[slot])
		}
		pid := e.Fork("child", func(c *user.Env) int {
			var cst pstat.PStat
			if c.GetPInfo(&cst) != 0 {
				return -1
			}
			slot, ok := cst.Find(c.GetPID())
			if !ok {
				return -1
			}
			return int(cst.Tickets[slot])
		})
		if pid < 0 {
			return 1
		}
		_, status := e.Wait()
		result.Child = status
		return 0
	}
}

// SyscallResult maps syscall names to the caller's counts
type SyscallResult struct {
	Counts map[string]int `json:"counts"`
}

// Syscalls issues a fixed mix of calls and records the caller's counters.
// Reading the counters is itself a counted call, so getsyscallcount grows as
// the table is read.
func Syscalls(result *SyscallResult) func(e *user.Env) int {
	return func(e *user.Env) int {
		if e.Fork("child", func(c *user.Env) int { return 0 }) < 0 {
			return 1
		}
		e.Wait()
		e.GetPID()
		e.GetPID()
		for i := 0; i < 3; i++ {
			e.Printf("syscalls: write %d\n", i)
		}
		e.Pause(1)
		e.Uptime()
		if _, err := e.Sbrk(64); err != nil {
			return 1
		}
		result.Counts = map[string]int{}
		for id := sys.ID(1); id < proc.NSyscall; id++ {
			if count := e.GetSyscallCount(int(id)); count > 0 {
				result.Counts[id.String()] = count
			}
		}
		return 0
	}
}
