package lottery

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/viant/lottery/model/proc"
	"github.com/viant/lottery/service/allocator"
	"github.com/viant/lottery/service/dao/archive"
	"github.com/viant/lottery/service/event"
	"github.com/viant/lottery/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures a Service
type Option func(s *Service)

// WithConfig sets the runtime configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithLogger sets the logger; the configured log level is not applied to it
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithRandSource overrides the lottery random source
func WithRandSource(src allocator.RandSource) Option {
	return func(s *Service) {
		s.rand = src
	}
}

// WithConsole sets the writer behind fd 1 and 2
func WithConsole(w io.Writer) Option {
	return func(s *Service) {
		s.console = w
	}
}

// WithArchive sets the snapshot archive
func WithArchive(svc archive.Service) Option {
	return func(s *Service) {
		s.archive = svc
	}
}

// WithEventHandler registers a handler receiving every process event
func WithEventHandler(handler func(*event.Event[proc.Event])) Option {
	return func(s *Service) {
		s.eventHandler = handler
	}
}

// WithTracing configures OpenTelemetry tracing. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file
// path. The first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
