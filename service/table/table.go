// Package table owns the fixed arena of process slots. Every slot carries its
// own lock; no operation in this package ever holds two slot locks at once.
package table

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/viant/lottery/model/proc"
)

// Slot is one entry of the process table. Exported fields are guarded by the
// embedded mutex.
type Slot struct {
	sync.Mutex
	index int

	State    proc.State
	PID      int
	Tickets  int32
	Ticks    uint64
	Syscalls [proc.NSyscall]uint64
	Killed   bool
	XState   int
	Parent   *Slot
	Name     string
}

// Index returns slot position in the table
func (s *Slot) Index() int {
	return s.index
}

// Info returns a view of the slot, caller must hold the lock
func (s *Slot) Info() proc.Info {
	return proc.Info{Slot: s.index, PID: s.PID, State: s.State, Tickets: s.Tickets, Ticks: s.Ticks, Name: s.Name}
}

func (s *Slot) clear() {
	s.State = proc.Unused
	s.PID = 0
	s.Tickets = 0
	s.Ticks = 0
	s.Syscalls = [proc.NSyscall]uint64{}
	s.Killed = false
	s.XState = 0
	s.Parent = nil
	s.Name = ""
}

// Table represents the process table
type Table struct {
	slots   [proc.NProc]Slot
	lastPID atomic.Int64
}

// Len returns table capacity
func (t *Table) Len() int {
	return len(t.slots)
}

// Slot returns slot at index
func (t *Table) Slot(index int) *Slot {
	return &t.slots[index]
}

// Alloc claims the first Unused slot in table order. The slot is returned
// unlocked in the Embryo state with a fresh pid and the given allocation,
// both set before the slot becomes visible as in use.
func (t *Table) Alloc(name string, tickets int32) (*Slot, error) {
	if tickets < 1 {
		return nil, fmt.Errorf("alloc tickets %d: %w", tickets, proc.ErrInvalidArgument)
	}
	for i := range t.slots {
		s := &t.slots[i]
		s.Lock()
		if s.State == proc.Unused {
			s.PID = int(t.lastPID.Add(1))
			s.State = proc.Embryo
			s.Tickets = tickets
			s.Name = name
			s.Unlock()
			return s, nil
		}
		s.Unlock()
	}
	return nil, proc.ErrTableFull
}

// Scan calls fn for every slot in table order while holding only that slot's
// lock. Returning false stops the scan.
func (t *Table) Scan(fn func(s *Slot) bool) {
	for i := range t.slots {
		s := &t.slots[i]
		s.Lock()
		next := fn(s)
		s.Unlock()
		if !next {
			return
		}
	}
}

// Find runs fn under the lock of the in-use slot carrying pid
func (t *Table) Find(pid int, fn func(s *Slot)) bool {
	found := false
	t.Scan(func(s *Slot) bool {
		if s.State.InUse() && s.PID == pid {
			found = true
			if fn != nil {
				fn(s)
			}
			return false
		}
		return true
	})
	return found
}

// Reap clears every field of the slot and returns it to Unused
func (t *Table) Reap(s *Slot) {
	s.Lock()
	s.clear()
	s.Unlock()
}

// Live returns number of in-use slots
func (t *Table) Live() int {
	count := 0
	t.Scan(func(s *Slot) bool {
		if s.State.InUse() {
			count++
		}
		return true
	})
	return count
}

// New creates an empty table
func New() *Table {
	ret := &Table{}
	for i := range ret.slots {
		ret.slots[i].index = i
	}
	return ret
}
