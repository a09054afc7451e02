package kernel

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"github.com/viant/lottery/internal/idgen"
	"github.com/viant/lottery/model/proc"
	"github.com/viant/lottery/model/pstat"
	"github.com/viant/lottery/service/allocator"
	"github.com/viant/lottery/service/event"
	"github.com/viant/lottery/service/snapshot"
	"github.com/viant/lottery/service/table"
	"github.com/viant/lottery/service/ticker"
	"github.com/viant/lottery/service/uvm"
)

var eventsDropped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "lottery_events_dropped_total",
	Help: "Number of lifecycle events dropped because the event queue was full.",
})

// Program is the body of a process; its return value is the exit status
type Program func(p *Proc) int

type thread struct {
	run   chan struct{}
	yield chan struct{}
}

func newThread() *thread {
	return &thread{run: make(chan struct{}, 1), yield: make(chan struct{})}
}

// Kernel represents the process manager
type Kernel struct {
	table    *table.Table
	clock    *ticker.Clock
	rand     allocator.RandSource
	selector *allocator.Service
	events   *event.Publisher[proc.Event]
	logger   logrus.FieldLogger
	bootID   string

	console   io.Writer
	consoleMu sync.Mutex

	threads [proc.NProc]atomic.Pointer[thread]
	wake    chan struct{}

	// waitMu guards parent links and serialises exit against wait
	waitMu   sync.Mutex
	waitCond *sync.Cond
	init     *table.Slot
}

// New creates a kernel with an empty process table
func New(options ...Option) *Kernel {
	k := &Kernel{
		table: table.New(),
		wake:  make(chan struct{}, 1),
	}
	k.waitCond = sync.NewCond(&k.waitMu)
	for _, opt := range options {
		opt(k)
	}
	if k.clock == nil {
		k.clock = ticker.New()
	}
	if k.rand == nil {
		k.rand = allocator.NewRandSource(0)
	}
	if k.logger == nil {
		k.logger = logrus.StandardLogger()
	}
	if k.console == nil {
		k.console = io.Discard
	}
	if k.bootID == "" {
		k.bootID = idgen.Short()
	}
	k.logger = k.logger.WithField("boot", k.bootID)
	k.selector = allocator.New(k.table, k.rand, allocator.DefaultConfig())
	return k
}

// Clock returns the scheduling clock
func (k *Kernel) Clock() *ticker.Clock {
	return k.clock
}

// BootID returns the kernel session identifier
func (k *Kernel) BootID() string {
	return k.bootID
}

// Logger returns the kernel logger carrying the boot field
func (k *Kernel) Logger() logrus.FieldLogger {
	return k.logger
}

// Wakeup signals idle CPUs that a process became runnable
func (k *Kernel) Wakeup() <-chan struct{} {
	return k.wake
}

func (k *Kernel) kick() {
	select {
	case k.wake <- struct{}{}:
	default:
	}
}

// RunQuantum runs one lottery-selected process until it gives the CPU back
func (k *Kernel) RunQuantum(ctx context.Context, cpu int) bool {
	s := k.selector.Select()
	if s == nil {
		return false
	}
	th := k.threads[s.Index()].Load()
	if th == nil {
		k.logger.WithField("slot", s.Index()).Error("runnable slot without thread")
		return true
	}
	th.run <- struct{}{}
	<-th.yield
	return true
}

// Boot creates a parentless process running prog with the default
// allocation. The first booted process adopts orphans.
func (k *Kernel) Boot(ctx context.Context, name string, prog Program) (int, error) {
	s, err := k.table.Alloc(name, proc.DefaultTickets)
	if err != nil {
		k.logger.WithField("name", name).Warn("boot: process table full")
		return -1, fmt.Errorf("boot %v: %w", name, err)
	}
	k.waitMu.Lock()
	if k.init == nil {
		k.init = s
	}
	k.waitMu.Unlock()
	s.Lock()
	info := s.Info()
	s.Unlock()
	k.logger.WithFields(logrus.Fields{"pid": info.PID, "slot": info.Slot, "name": name}).Debug("boot")
	k.publish(proc.EventForked, info, nil)
	k.spawn(ctx, s, info.PID, prog, uvm.New())
	return info.PID, nil
}

func (k *Kernel) spawn(ctx context.Context, s *table.Slot, pid int, prog Program, mem *uvm.Space) {
	if ctx == nil {
		ctx = context.Background()
	}
	th := newThread()
	p := &Proc{k: k, slot: s, pid: pid, th: th, mem: mem, ctx: ctx}
	k.threads[s.Index()].Store(th)
	go k.main(p, prog)
	s.Lock()
	s.State = proc.Runnable
	s.Unlock()
	k.kick()
}

func (k *Kernel) main(p *Proc, prog Program) {
	p.resume()
	status := k.execute(p, prog)
	k.exit(p, status)
}

type exitSignal struct {
	status int
}

func (k *Kernel) execute(p *Proc, prog Program) (status int) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if sig, ok := r.(exitSignal); ok {
			status = sig.status
			return
		}
		k.logger.WithFields(logrus.Fields{"pid": p.pid, "slot": p.slot.Index()}).Errorf("process panic: %v", r)
		status = -1
	}()
	if p.killed() {
		return -1
	}
	return prog(p)
}

// exit turns the caller into a zombie and gives its CPU back for good
func (k *Kernel) exit(p *Proc, status int) {
	p.account()
	s := p.slot

	k.waitMu.Lock()
	successor := k.init
	if successor == s {
		successor = nil
		k.init = nil
	}
	var orphans []*table.Slot
	k.table.Scan(func(child *table.Slot) bool {
		if child.Parent == s {
			child.Parent = successor
			if successor == nil && child.State == proc.Zombie {
				orphans = append(orphans, child)
			}
		}
		return true
	})
	for _, orphan := range orphans {
		k.reap(orphan)
	}
	s.Lock()
	s.State = proc.Zombie
	s.XState = status
	parent := s.Parent
	info := s.Info()
	s.Unlock()
	k.waitCond.Broadcast()
	k.waitMu.Unlock()

	k.logger.WithFields(logrus.Fields{"pid": info.PID, "slot": info.Slot, "status": status, "ticks": info.Ticks}).Debug("exit")
	k.publish(proc.EventExited, info, func(e *proc.Event) { e.Status = status })
	if parent == nil {
		k.reap(s)
	}
	p.th.yield <- struct{}{}
}

// reap returns a zombie slot to the table
func (k *Kernel) reap(s *table.Slot) {
	s.Lock()
	info := s.Info()
	s.Unlock()
	k.threads[s.Index()].Store(nil)
	k.table.Reap(s)
	k.logger.WithFields(logrus.Fields{"pid": info.PID, "slot": info.Slot}).Debug("reap")
	k.publish(proc.EventReaped, info, nil)
}

// Kill marks the process killed and wakes every blocking wait so that it
// can observe the flag
func (k *Kernel) Kill(pid int) error {
	var info proc.Info
	found := k.table.Find(pid, func(s *table.Slot) {
		s.Killed = true
		info = s.Info()
	})
	if !found {
		return fmt.Errorf("kill %d: %w", pid, proc.ErrNotFound)
	}
	k.wakeWaiters()
	k.logger.WithFields(logrus.Fields{"pid": pid, "slot": info.Slot}).Debug("kill")
	k.publish(proc.EventKilled, info, nil)
	return nil
}

// KillAll kills every in-use process and returns how many were marked
func (k *Kernel) KillAll() int {
	count := 0
	k.table.Scan(func(s *table.Slot) bool {
		if s.State.InUse() && s.State != proc.Zombie {
			s.Killed = true
			count++
		}
		return true
	})
	k.wakeWaiters()
	return count
}

func (k *Kernel) wakeWaiters() {
	k.clock.Wake()
	k.waitMu.Lock()
	k.waitCond.Broadcast()
	k.waitMu.Unlock()
}

// Snapshot captures the process table
func (k *Kernel) Snapshot() *pstat.PStat {
	return snapshot.Build(k.table)
}

// Processes returns in-use slots in table order
func (k *Kernel) Processes() []proc.Info {
	var ret []proc.Info
	k.table.Scan(func(s *table.Slot) bool {
		if s.State.InUse() {
			ret = append(ret, s.Info())
		}
		return true
	})
	return ret
}

// Live returns number of in-use slots
func (k *Kernel) Live() int {
	return k.table.Live()
}

func (k *Kernel) publish(kind proc.EventKind, info proc.Info, mutate func(e *proc.Event)) {
	if k.events == nil {
		return
	}
	ev := proc.Event{Kind: kind, PID: info.PID, Slot: info.Slot, Tickets: info.Tickets, Name: info.Name}
	if mutate != nil {
		mutate(&ev)
	}
	ctx := &event.Context{PID: info.PID, Slot: info.Slot, EventType: string(kind), Boot: k.bootID}
	if err := k.events.Offer(event.NewEvent(ctx, ev)); err != nil {
		eventsDropped.Inc()
	}
}
