package kernel

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/viant/lottery/model/proc"
	"github.com/viant/lottery/model/sys"
	"github.com/viant/lottery/service/ledger"
	"github.com/viant/lottery/service/snapshot"
	"github.com/viant/lottery/service/table"
	"github.com/viant/lottery/service/usage"
	"github.com/viant/lottery/tracing"
)

// Fork creates a child running prog. The child inherits the caller's ticket
// allocation and a copy of its memory; its usage counters start at zero.
func (p *Proc) Fork(name string, prog Program) (int, error) {
	p.enter(sys.Fork)
	k := p.k
	child, err := k.table.Alloc(name, ledger.Get(p.slot))
	if err != nil {
		k.logger.WithFields(logrus.Fields{"pid": p.pid, "name": name}).Warn("fork: process table full")
		return -1, fmt.Errorf("fork %v: %w", name, err)
	}

	k.waitMu.Lock()
	child.Lock()
	child.Parent = p.slot
	info := child.Info()
	child.Unlock()
	k.waitMu.Unlock()

	k.logger.WithFields(logrus.Fields{"pid": info.PID, "slot": info.Slot, "parent": p.pid, "tickets": info.Tickets}).Debug("fork")
	k.publish(proc.EventForked, info, func(e *proc.Event) { e.Parent = p.pid })
	k.spawn(p.ctx, child, info.PID, prog, p.mem.Clone())
	return info.PID, nil
}

// Exit terminates the caller with status; it does not return
func (p *Proc) Exit(status int) {
	p.enter(sys.Exit)
	panic(exitSignal{status: status})
}

// Wait blocks until a child exits, reaps it and returns its pid and status
func (p *Proc) Wait() (int, int, error) {
	p.enter(sys.Wait)
	k := p.k
	k.waitMu.Lock()
	defer k.waitMu.Unlock()
	for {
		var zombie *table.Slot
		pid, status, children := -1, -1, 0
		k.table.Scan(func(s *table.Slot) bool {
			if s.Parent != p.slot {
				return true
			}
			children++
			if s.State == proc.Zombie {
				zombie, pid, status = s, s.PID, s.XState
				return false
			}
			return true
		})
		if zombie != nil {
			k.reap(zombie)
			return pid, status, nil
		}
		if children == 0 {
			return -1, -1, proc.ErrNoChildren
		}
		if p.killed() {
			return -1, -1, proc.ErrInterrupted
		}
		p.release(proc.Sleeping)
		k.waitCond.Wait()
		k.waitMu.Unlock()
		p.wakeup()
		k.waitMu.Lock()
	}
}

// Kill marks pid killed
func (p *Proc) Kill(pid int) error {
	p.enter(sys.Kill)
	return p.k.Kill(pid)
}

// GetPID returns the caller pid
func (p *Proc) GetPID() int {
	p.enter(sys.GetPID)
	return p.pid
}

// Pause sleeps for n ticks of the scheduling clock, giving up the CPU
func (p *Proc) Pause(n int) error {
	p.enter(sys.Pause)
	if n < 0 {
		n = 0
	}
	return p.k.clock.Sleep(uint64(n), sleeper{p: p})
}

// Uptime returns ticks since boot
func (p *Proc) Uptime() uint64 {
	p.enter(sys.Uptime)
	return p.k.clock.Now()
}

// Sbrk grows the caller memory by n bytes and returns the previous break
func (p *Proc) Sbrk(n int) (uint64, error) {
	p.enter(sys.Sbrk)
	return p.mem.Sbrk(n)
}

// Write writes data to the console through descriptor 1 or 2
func (p *Proc) Write(fd int, data []byte) (int, error) {
	p.enter(sys.Write)
	if fd != 1 && fd != 2 {
		return -1, fmt.Errorf("write fd %d: %w", fd, proc.ErrBadDescriptor)
	}
	p.k.consoleMu.Lock()
	defer p.k.consoleMu.Unlock()
	return p.k.console.Write(data)
}

// SetTickets replaces the caller's ticket allocation; values below one are
// rejected with proc.ErrInvalidArgument and leave the allocation unchanged
func (p *Proc) SetTickets(tickets int32) (err error) {
	p.enter(sys.SetTickets)
	_, span := tracing.StartSyscall(p.ctx, "settickets", p.pid)
	span.WithInt("tickets", int(tickets))
	defer func() { span.End(err) }()
	if err = ledger.Set(p.slot, tickets); err != nil {
		return err
	}
	p.slot.Lock()
	info := p.slot.Info()
	p.slot.Unlock()
	p.k.publish(proc.EventTicketsChanged, info, nil)
	return nil
}

// GetPInfo copies a snapshot of the process table to user address addr. An
// unwritable destination yields proc.ErrBoundaryFault and writes nothing.
func (p *Proc) GetPInfo(addr uint64) (err error) {
	p.enter(sys.GetPInfo)
	_, span := tracing.StartSyscall(p.ctx, "getpinfo", p.pid)
	defer func() { span.End(err) }()
	data, err := snapshot.Build(p.k.table).MarshalBinary()
	if err != nil {
		return err
	}
	return p.mem.CopyOut(addr, data)
}

// GetSyscallCount returns how many times the caller entered syscall id,
// counting this call when id is GetSyscallCount
func (p *Proc) GetSyscallCount(id int) (count uint64, err error) {
	p.enter(sys.GetSyscallCount)
	_, span := tracing.StartSyscall(p.ctx, "getsyscallcount", p.pid)
	span.WithInt("syscall", id)
	defer func() { span.End(err) }()
	return usage.Count(p.slot, sys.ID(id))
}
