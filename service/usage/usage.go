// Package usage accumulates per-process scheduling quanta and syscall
// counters. Both mutations run on the thread currently executing as the
// process, under its slot lock.
package usage

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/viant/lottery/model/proc"
	"github.com/viant/lottery/model/sys"
	"github.com/viant/lottery/service/table"
)

var (
	quantaTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lottery_quanta_total",
		Help: "Number of scheduling quanta executed by processes.",
	})

	syscallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lottery_syscalls_total",
		Help: "Number of system calls entered, by name.",
	}, []string{"name"})
)

// OnQuantum charges one quantum to the slot
func OnQuantum(s *table.Slot) {
	s.Lock()
	s.Ticks++
	s.Unlock()
	quantaTotal.Inc()
}

// OnSyscallEnter counts a syscall before its body runs. Identifiers outside
// the counter range are ignored.
func OnSyscallEnter(s *table.Slot, id sys.ID) {
	if !id.Valid() {
		return
	}
	s.Lock()
	s.Syscalls[id]++
	s.Unlock()
	syscallsTotal.WithLabelValues(id.String()).Inc()
}

// Count returns the slot counter for id
func Count(s *table.Slot, id sys.ID) (uint64, error) {
	if !id.Valid() {
		return 0, fmt.Errorf("syscall id %d: %w", int(id), proc.ErrInvalidArgument)
	}
	s.Lock()
	defer s.Unlock()
	return s.Syscalls[id], nil
}

// Ticks returns quanta charged to the slot
func Ticks(s *table.Slot) uint64 {
	s.Lock()
	defer s.Unlock()
	return s.Ticks
}
