package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Scheduler runs processes on behalf of a CPU
type Scheduler interface {
	// RunQuantum selects a process, runs it for one quantum on cpu and returns
	// true; it returns false when nothing was runnable.
	RunQuantum(ctx context.Context, cpu int) bool

	// Wakeup signals that a process may have become runnable
	Wakeup() <-chan struct{}
}

// Config represents processor configuration
type Config struct {
	// CPUs is the number of execution units
	CPUs int

	// IdleBackoff bounds how long an idle CPU waits before redrawing
	IdleBackoff time.Duration
}

// DefaultConfig returns the default processor configuration
func DefaultConfig() Config {
	return Config{
		CPUs:        2,
		IdleBackoff: 5 * time.Millisecond,
	}
}

// Service drives CPU workers
type Service struct {
	config    Config
	scheduler Scheduler
	logger    logrus.FieldLogger

	mux        sync.Mutex
	workers    []*worker
	workerWg   sync.WaitGroup
	shutdownCh chan struct{}
	started    bool
}

type worker struct {
	id       int
	service  *Service
	ctx      context.Context
	cancelFn context.CancelFunc
	quanta   uint64
}

// New creates a new processor service
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:     DefaultConfig(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.scheduler == nil {
		return nil, fmt.Errorf("scheduler is required")
	}
	if s.config.CPUs <= 0 {
		return nil, fmt.Errorf("cpus must be > 0, got %d", s.config.CPUs)
	}
	if s.config.IdleBackoff <= 0 {
		s.config.IdleBackoff = DefaultConfig().IdleBackoff
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	return s, nil
}

// CPUs returns number of configured execution units
func (s *Service) CPUs() int {
	return s.config.CPUs
}

// Start launches the CPU workers
func (s *Service) Start(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.started {
		return fmt.Errorf("processor already started")
	}
	s.started = true
	for i := 0; i < s.config.CPUs; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker{
			id:       i,
			service:  s,
			ctx:      workerCtx,
			cancelFn: cancel,
		}
		s.workers = append(s.workers, w)
		s.workerWg.Add(1)
		go w.run()
	}
	return nil
}

// run drives one CPU until its context is cancelled
func (w *worker) run() {
	defer w.service.workerWg.Done()
	log := w.service.logger.WithField("cpu", w.id)
	log.Debug("cpu started")
	idle := time.NewTimer(w.service.config.IdleBackoff)
	defer idle.Stop()
	for {
		select {
		case <-w.ctx.Done():
			log.WithField("quanta", w.quanta).Debug("cpu stopped")
			return
		default:
		}
		if w.service.scheduler.RunQuantum(w.ctx, w.id) {
			w.quanta++
			continue
		}
		if !idle.Stop() {
			select {
			case <-idle.C:
			default:
			}
		}
		idle.Reset(w.service.config.IdleBackoff)
		select {
		case <-w.ctx.Done():
		case <-w.service.scheduler.Wakeup():
		case <-idle.C:
		}
	}
}

// Shutdown stops all workers and waits for the running quanta to finish
func (s *Service) Shutdown() {
	s.mux.Lock()
	select {
	case <-s.shutdownCh:
		s.mux.Unlock()
		return
	default:
		close(s.shutdownCh)
	}
	for _, w := range s.workers {
		w.cancelFn()
	}
	s.mux.Unlock()
	s.workerWg.Wait()
}
