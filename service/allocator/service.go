package allocator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/viant/lottery/model/proc"
	"github.com/viant/lottery/service/table"
)

var (
	drawsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lottery_draws_total",
		Help: "Number of lottery draws that produced a running process.",
	})

	idleTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lottery_idle_total",
		Help: "Number of scheduling decisions with no runnable process.",
	})

	conflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lottery_claim_conflicts_total",
		Help: "Number of winners that changed state before they could be claimed.",
	})
)

// Config represents selector configuration
type Config struct {
	// MaxClaimAttempts bounds redraws after a lost claim
	MaxClaimAttempts int
}

// DefaultConfig returns default selector configuration
func DefaultConfig() Config {
	return Config{MaxClaimAttempts: proc.NProc}
}

// Service selects the next process to run
type Service struct {
	config Config
	table  *table.Table
	rand   RandSource
}

// Candidates enumerates Runnable slots in table order
func (s *Service) Candidates(dest []Candidate) []Candidate {
	dest = dest[:0]
	s.table.Scan(func(slot *table.Slot) bool {
		if slot.State == proc.Runnable {
			dest = append(dest, Candidate{Slot: slot, PID: slot.PID, Tickets: slot.Tickets})
		}
		return true
	})
	return dest
}

// Select runs a lottery and marks the winner Running. It returns nil when no
// process is runnable. A winner that is no longer Runnable when its lock is
// retaken (claimed by another CPU, or reaped) triggers a fresh draw.
func (s *Service) Select() *table.Slot {
	var buffer [proc.NProc]Candidate
	for attempt := 0; attempt < s.config.MaxClaimAttempts; attempt++ {
		candidates := s.Candidates(buffer[:0])
		index, ok := Draw(candidates, s.rand)
		if !ok {
			idleTotal.Inc()
			return nil
		}
		winner := candidates[index]
		if s.claim(winner) {
			drawsTotal.Inc()
			return winner.Slot
		}
		conflictsTotal.Inc()
	}
	return nil
}

func (s *Service) claim(c Candidate) bool {
	c.Slot.Lock()
	defer c.Slot.Unlock()
	if c.Slot.State != proc.Runnable || c.Slot.PID != c.PID {
		return false
	}
	c.Slot.State = proc.Running
	return true
}

// New creates a selector over the table
func New(t *table.Table, rand RandSource, config Config) *Service {
	if config.MaxClaimAttempts <= 0 {
		config.MaxClaimAttempts = DefaultConfig().MaxClaimAttempts
	}
	if rand == nil {
		rand = NewRandSource(0)
	}
	return &Service{config: config, table: t, rand: rand}
}
