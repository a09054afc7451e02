package lottery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/viant/lottery/internal/clock"
	"github.com/viant/lottery/model/proc"
	"github.com/viant/lottery/model/pstat"
	"github.com/viant/lottery/runtime/kernel"
	"github.com/viant/lottery/service/dao"
	"github.com/viant/lottery/service/dao/archive"
	"github.com/viant/lottery/service/event"
	mmemory "github.com/viant/lottery/service/messaging/memory"
	"github.com/viant/lottery/service/processor"
)

// drainPoll is how often Shutdown checks whether the table emptied
const drainPoll = time.Millisecond

// Runtime represents a running scheduler instance
type Runtime struct {
	config    *Config
	logger    logrus.FieldLogger
	kernel    *kernel.Kernel
	processor *processor.Service
	queue     *mmemory.Queue[event.Event[proc.Event]]
	events    *event.Publisher[proc.Event]
	listener  *event.Listener[proc.Event]
	archive   archive.Service

	mux     sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
}

// Kernel returns the process manager
func (r *Runtime) Kernel() *kernel.Kernel {
	return r.kernel
}

// Events returns the process event publisher; consume from it unless an
// event handler was registered
func (r *Runtime) Events() *event.Publisher[proc.Event] {
	return r.events
}

// DroppedEvents returns number of events lost to a full queue
func (r *Runtime) DroppedEvents() uint64 {
	return r.queue.Dropped()
}

// Start launches the CPUs, the timer and the event listener
func (r *Runtime) Start(ctx context.Context) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	if r.started {
		return fmt.Errorf("runtime already started")
	}
	if r.processor == nil {
		return fmt.Errorf("runtime not initialised")
	}
	runCtx, cancel := context.WithCancel(ctx)
	if err := r.processor.Start(runCtx); err != nil {
		cancel()
		return err
	}
	r.cancel = cancel
	r.started = true
	if interval := r.config.Clock.TickInterval; interval > 0 {
		go r.kernel.Clock().Start(runCtx, interval)
	}
	if r.listener != nil {
		r.listener.Start(runCtx)
	}
	r.logger.WithFields(logrus.Fields{
		"boot": r.kernel.BootID(),
		"cpus": r.processor.CPUs(),
	}).Info("runtime started")
	return nil
}

type outcome struct {
	status int
	err    error
}

// Run boots an init process that forks prog as name, then reaps every
// descendant. It returns prog's exit status once the whole tree is gone.
func (r *Runtime) Run(ctx context.Context, name string, prog kernel.Program) (int, error) {
	r.mux.Lock()
	started := r.started && !r.stopped
	r.mux.Unlock()
	if !started {
		return -1, fmt.Errorf("run %v: runtime not started", name)
	}
	done := make(chan outcome, 1)
	initProg := func(p *kernel.Proc) int {
		ret := outcome{status: -1, err: fmt.Errorf("run %v: %w", name, proc.ErrInterrupted)}
		defer func() { done <- ret }()
		pid, err := p.Fork(name, prog)
		if err != nil {
			ret.err = fmt.Errorf("run %v: %w", name, err)
			return -1
		}
		for {
			child, status, err := p.Wait()
			if err != nil {
				return 0
			}
			if child == pid {
				ret = outcome{status: status}
			}
		}
	}
	if _, err := r.kernel.Boot(ctx, "init", initProg); err != nil {
		return -1, err
	}
	select {
	case ret := <-done:
		return ret.status, ret.err
	case <-ctx.Done():
		return -1, ctx.Err()
	}
}

// Snapshot captures the process table
func (r *Runtime) Snapshot() *pstat.PStat {
	return r.kernel.Snapshot()
}

// Processes returns in-use processes in table order
func (r *Runtime) Processes() []proc.Info {
	return r.kernel.Processes()
}

// Record captures the process table and stores it in the archive
func (r *Runtime) Record(ctx context.Context, label string) (*pstat.Record, error) {
	record := &pstat.Record{
		ID:        uuid.New().String(),
		Boot:      r.kernel.BootID(),
		Label:     label,
		Tick:      r.kernel.Clock().Now(),
		TakenAt:   clock.Now(),
		PStat:     *r.kernel.Snapshot(),
		Processes: r.kernel.Processes(),
	}
	if err := r.archive.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to archive snapshot: %w", err)
	}
	return record, nil
}

// Records lists archived snapshots taken by this runtime
func (r *Runtime) Records(ctx context.Context, parameters ...*dao.Parameter) ([]*pstat.Record, error) {
	parameters = append(parameters, dao.NewParameter("Boot", r.kernel.BootID()))
	return r.archive.List(ctx, parameters...)
}

// Shutdown kills every process, waits for the table to drain, then stops
// the CPUs, the timer and the listener. When ctx expires first the CPUs are
// left running so that stragglers can still observe the kill.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.mux.Lock()
	if !r.started || r.stopped {
		r.mux.Unlock()
		return nil
	}
	r.mux.Unlock()

	r.kernel.KillAll()
	poll := time.NewTicker(drainPoll)
	defer poll.Stop()
	for r.kernel.Live() > 0 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("shutdown: %d processes still live: %w", r.kernel.Live(), ctx.Err())
		case <-poll.C:
			r.kernel.KillAll()
		}
	}

	r.mux.Lock()
	defer r.mux.Unlock()
	if r.stopped {
		return nil
	}
	r.stopped = true
	r.processor.Shutdown()
	if r.listener != nil {
		r.listener.Stop()
	}
	r.cancel()
	r.logger.WithField("boot", r.kernel.BootID()).Info("runtime stopped")
	return nil
}
