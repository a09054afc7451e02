package kernel

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/viant/lottery/model/proc"
	"github.com/viant/lottery/service/allocator"
	"github.com/viant/lottery/service/event"
	"github.com/viant/lottery/service/ticker"
)

// Option configures the kernel
type Option func(k *Kernel)

// WithRandSource sets the lottery random source
func WithRandSource(src allocator.RandSource) Option {
	return func(k *Kernel) {
		k.rand = src
	}
}

// WithClock sets the scheduling clock
func WithClock(clock *ticker.Clock) Option {
	return func(k *Kernel) {
		k.clock = clock
	}
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(k *Kernel) {
		k.logger = logger
	}
}

// WithConsole sets the writer behind file descriptors 1 and 2
func WithConsole(w io.Writer) Option {
	return func(k *Kernel) {
		k.console = w
	}
}

// WithEvents sets the lifecycle event publisher
func WithEvents(publisher *event.Publisher[proc.Event]) Option {
	return func(k *Kernel) {
		k.events = publisher
	}
}

// WithBootID sets the identifier attached to logs and events
func WithBootID(id string) Option {
	return func(k *Kernel) {
		k.bootID = id
	}
}
