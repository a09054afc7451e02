package lottery

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/viant/lottery/model/proc"
	"github.com/viant/lottery/runtime/kernel"
	"github.com/viant/lottery/service/allocator"
	"github.com/viant/lottery/service/dao/archive"
	fsarchive "github.com/viant/lottery/service/dao/archive/fs"
	marchive "github.com/viant/lottery/service/dao/archive/memory"
	"github.com/viant/lottery/service/event"
	mmemory "github.com/viant/lottery/service/messaging/memory"
	"github.com/viant/lottery/service/processor"
	"github.com/viant/lottery/tracing"
)

// Version is reported as the tracing service version
const Version = "0.1.0"

// Service wires the kernel, CPUs, event queue and archive into a Runtime
type Service struct {
	runtime      *Runtime
	config       *Config
	logger       logrus.FieldLogger
	rand         allocator.RandSource
	console      io.Writer
	archive      archive.Service
	eventHandler func(*event.Event[proc.Event])
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	s.ensureBaseSetup()
	queue := mmemory.NewQueue[event.Event[proc.Event]](mmemory.Config{QueueBuffer: s.config.Events.Buffer})
	publisher := event.NewPublisher[proc.Event](queue)
	s.runtime.config = s.config
	s.runtime.logger = s.logger
	s.runtime.queue = queue
	s.runtime.events = publisher
	s.runtime.archive = s.archive
	s.runtime.kernel = kernel.New(
		kernel.WithRandSource(s.rand),
		kernel.WithLogger(s.logger),
		kernel.WithConsole(s.console),
		kernel.WithEvents(publisher),
	)
	s.runtime.processor, _ = processor.New(
		processor.WithScheduler(s.runtime.kernel),
		processor.WithLogger(s.runtime.kernel.Logger()),
		processor.WithConfig(processor.Config{
			CPUs:        s.config.Processor.CPUs,
			IdleBackoff: s.config.Processor.IdleBackoff,
		}))
	if s.eventHandler != nil {
		s.runtime.listener = event.NewListener[proc.Event](publisher, s.eventHandler)
	}
}

func (s *Service) ensureBaseSetup() {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	defaults := DefaultConfig()
	if s.config.Processor.CPUs <= 0 {
		s.config.Processor.CPUs = defaults.Processor.CPUs
	}
	if s.config.Events.Buffer <= 0 {
		s.config.Events.Buffer = defaults.Events.Buffer
	}
	if s.logger == nil {
		logger := logrus.New()
		if level, err := logrus.ParseLevel(s.config.Log.Level); err == nil {
			logger.SetLevel(level)
		}
		s.logger = logger
	}
	if s.config.Tracing.Enabled {
		if err := tracing.Init("lottery", Version, s.config.Tracing.Output); err != nil {
			s.logger.WithError(err).Warn("failed to initialise tracing")
		}
	}
	if s.rand == nil {
		s.rand = allocator.NewRandSource(s.config.Lottery.Seed)
	}
	if s.console == nil {
		s.console = io.Discard
	}
	if s.archive == nil && s.config.Archive.URL != "" {
		svc, err := fsarchive.New(context.Background(), s.config.Archive.URL, s.logger)
		if err != nil {
			s.logger.WithError(err).Warn("falling back to in-memory archive")
		} else {
			s.archive = svc
		}
	}
	if s.archive == nil {
		s.archive = marchive.New()
	}
}

// Runtime returns the runtime
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// New creates a service
func New(options ...Option) *Service {
	ret := &Service{runtime: &Runtime{}}
	ret.init(options)
	return ret
}
