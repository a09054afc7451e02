package lottery

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the runtime configuration. The
// zero value of any section falls back to its package default.
type Config struct {
	Processor ProcessorConfig `json:"processor" yaml:"processor"`
	Clock     ClockConfig     `json:"clock" yaml:"clock"`
	Lottery   LotteryConfig   `json:"lottery" yaml:"lottery"`
	Events    EventsConfig    `json:"events" yaml:"events"`
	Log       LogConfig       `json:"log" yaml:"log"`
	Tracing   TracingConfig   `json:"tracing" yaml:"tracing"`
	Archive   ArchiveConfig   `json:"archive" yaml:"archive"`
}

type ProcessorConfig struct {
	CPUs        int           `json:"cpus" yaml:"cpus"`
	IdleBackoff time.Duration `json:"idleBackoff" yaml:"idleBackoff"`
}

// ClockConfig controls the timer; a zero TickInterval disables it
type ClockConfig struct {
	TickInterval time.Duration `json:"tickInterval" yaml:"tickInterval"`
}

// LotteryConfig seeds the draw; zero seeds from the wall clock
type LotteryConfig struct {
	Seed int64 `json:"seed" yaml:"seed"`
}

type EventsConfig struct {
	Buffer int `json:"buffer" yaml:"buffer"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

type TracingConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Output  string `json:"output,omitempty" yaml:"output,omitempty"`
}

// ArchiveConfig points at the snapshot archive location (file path or afs
// URL); empty keeps snapshots in memory
type ArchiveConfig struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// DefaultConfig returns a Config populated with the package defaults
func DefaultConfig() *Config {
	return &Config{
		Processor: ProcessorConfig{
			CPUs:        2,
			IdleBackoff: 5 * time.Millisecond,
		},
		Clock:  ClockConfig{TickInterval: 10 * time.Millisecond},
		Events: EventsConfig{Buffer: 256},
		Log:    LogConfig{Level: "info"},
	}
}

// Validate returns an error describing the first invalid setting or nil
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Processor.CPUs <= 0 {
		return fmt.Errorf("processor.cpus must be > 0, got %d", c.Processor.CPUs)
	}
	if c.Processor.IdleBackoff < 0 {
		return fmt.Errorf("processor.idleBackoff must not be negative")
	}
	if c.Clock.TickInterval < 0 {
		return fmt.Errorf("clock.tickInterval must not be negative")
	}
	if c.Events.Buffer < 0 {
		return fmt.Errorf("events.buffer must not be negative")
	}
	if c.Log.Level != "" {
		if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	return nil
}

// LoadConfig reads a YAML (or JSON) document from any afs supported URL and
// decodes it over DefaultConfig
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, nil
}
