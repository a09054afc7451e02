// Package user is the user-side library programs link against. It wraps the
// kernel syscalls in the classic integer convention: a non-negative result on
// success and -1 on any failure.
package user

import (
	"fmt"
	"math"

	"github.com/viant/lottery/model/pstat"
	"github.com/viant/lottery/runtime/kernel"
)

// Env is the user-side view of a running process
type Env struct {
	*kernel.Proc
	pinfo uint64
}

// New wraps a process handle
func New(p *kernel.Proc) *Env {
	return &Env{Proc: p}
}

// Main adapts a user program to a kernel program
func Main(fn func(e *Env) int) kernel.Program {
	return func(p *kernel.Proc) int {
		return fn(New(p))
	}
}

// SetTickets sets the caller allocation; returns 0 or -1. Values outside
// the int32 range fail without reaching the kernel.
func (e *Env) SetTickets(tickets int) int {
	if tickets < math.MinInt32 || tickets > math.MaxInt32 {
		return -1
	}
	if err := e.Proc.SetTickets(int32(tickets)); err != nil {
		return -1
	}
	return 0
}

// GetPInfoAt asks the kernel to write a snapshot at addr; returns 0 or -1
func (e *Env) GetPInfoAt(addr uint64) int {
	if err := e.Proc.GetPInfo(addr); err != nil {
		return -1
	}
	return 0
}

// GetPInfo fills st with a snapshot of the process table using a scratch
// buffer in the caller's memory; returns 0 or -1
func (e *Env) GetPInfo(st *pstat.PStat) int {
	if e.pinfo == 0 {
		addr, err := e.Sbrk(pstat.Size)
		if err != nil {
			return -1
		}
		e.pinfo = addr
	}
	if e.GetPInfoAt(e.pinfo) != 0 {
		return -1
	}
	buf := make([]byte, pstat.Size)
	if err := e.Memory().CopyIn(buf, e.pinfo); err != nil {
		return -1
	}
	if err := st.UnmarshalBinary(buf); err != nil {
		return -1
	}
	return 0
}

// GetSyscallCount returns the caller's count for id, or -1
func (e *Env) GetSyscallCount(id int) int {
	count, err := e.Proc.GetSyscallCount(id)
	if err != nil {
		return -1
	}
	if count > math.MaxInt {
		return math.MaxInt
	}
	return int(count)
}

// Fork starts fn in a child; returns the child pid or -1
func (e *Env) Fork(name string, fn func(child *Env) int) int {
	pid, err := e.Proc.Fork(name, Main(fn))
	if err != nil {
		return -1
	}
	return pid
}

// Wait reaps a child; returns its pid and status, or -1
func (e *Env) Wait() (int, int) {
	pid, status, err := e.Proc.Wait()
	if err != nil {
		return -1, -1
	}
	return pid, status
}

// Kill returns 0 or -1
func (e *Env) Kill(pid int) int {
	if err := e.Proc.Kill(pid); err != nil {
		return -1
	}
	return 0
}

// Pause returns 0, or -1 when interrupted
func (e *Env) Pause(n int) int {
	if err := e.Proc.Pause(n); err != nil {
		return -1
	}
	return 0
}

// Printf formats to standard output
func (e *Env) Printf(format string, args ...interface{}) {
	_, _ = e.Write(1, []byte(fmt.Sprintf(format, args...)))
}
