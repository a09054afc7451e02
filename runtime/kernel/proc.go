package kernel

import (
	"context"

	"github.com/viant/lottery/model/proc"
	"github.com/viant/lottery/model/sys"
	"github.com/viant/lottery/service/table"
	"github.com/viant/lottery/service/usage"
	"github.com/viant/lottery/service/uvm"
)

// Proc is the handle a running process uses to talk to the kernel. It must
// only be used from the process's own goroutine.
type Proc struct {
	k            *Kernel
	slot         *table.Slot
	pid          int
	th           *thread
	mem          *uvm.Space
	ctx          context.Context
	dispatchedAt uint64
}

// Memory returns the process address space
func (p *Proc) Memory() *uvm.Space {
	return p.mem
}

// Context returns the context the process was started with
func (p *Proc) Context() context.Context {
	return p.ctx
}

func (p *Proc) killed() bool {
	p.slot.Lock()
	defer p.slot.Unlock()
	return p.slot.Killed
}

// terminate exits a killed process; it must be called while holding the CPU
// and no kernel lock
func (p *Proc) terminate() {
	if p.killed() {
		panic(exitSignal{status: -1})
	}
}

// enter is the syscall dispatch hook
func (p *Proc) enter(id sys.ID) {
	p.terminate()
	usage.OnSyscallEnter(p.slot, id)
}

// account charges the quantum that is ending
func (p *Proc) account() {
	usage.OnQuantum(p.slot)
}

// release gives the CPU back and leaves the slot in state
func (p *Proc) release(state proc.State) {
	p.account()
	p.th.yield <- struct{}{}
	p.slot.Lock()
	p.slot.State = state
	p.slot.Unlock()
	if state == proc.Runnable {
		p.k.kick()
	}
}

// resume blocks until a CPU hands over a run token
func (p *Proc) resume() {
	<-p.th.run
	p.dispatchedAt = p.k.clock.Now()
}

func (p *Proc) wakeup() {
	p.slot.Lock()
	p.slot.State = proc.Runnable
	p.slot.Unlock()
	p.k.kick()
	p.resume()
}

// Yield ends the current quantum and rejoins the lottery
func (p *Proc) Yield() {
	p.terminate()
	p.release(proc.Runnable)
	p.resume()
	p.terminate()
}

// Preempt is the timer interrupt check: it yields only when the scheduling
// clock advanced since the process was dispatched
func (p *Proc) Preempt() {
	if p.k.clock.Now() == p.dispatchedAt {
		p.terminate()
		return
	}
	p.Yield()
}

// sleeper adapts a process to ticker.Sleeper
type sleeper struct {
	p *Proc
}

func (s sleeper) Killed() bool { return s.p.killed() }
func (s sleeper) Park()        { s.p.release(proc.Sleeping) }
func (s sleeper) Unpark()      { s.p.wakeup() }
