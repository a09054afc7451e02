package processor

import "github.com/sirupsen/logrus"

// Option configures the processor
type Option func(*Service)

// WithScheduler sets the scheduler driven by the workers
func WithScheduler(scheduler Scheduler) Option {
	return func(s *Service) {
		s.scheduler = scheduler
	}
}

// WithCPUs sets the number of worker goroutines
func WithCPUs(count int) Option {
	return func(s *Service) {
		s.config.CPUs = count
	}
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}
