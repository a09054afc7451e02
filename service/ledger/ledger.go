// Package ledger keeps per-process ticket allocations: validated updates by
// the owning process. A child starts with Get(parent), passed to
// table.Alloc so that it is never visible with another value.
package ledger

import (
	"fmt"

	"github.com/viant/lottery/model/proc"
	"github.com/viant/lottery/service/table"
)

// Set replaces the slot allocation. Values below one are rejected and leave
// the previous allocation in place.
func Set(s *table.Slot, tickets int32) error {
	if tickets < 1 {
		return fmt.Errorf("tickets %d: %w", tickets, proc.ErrInvalidArgument)
	}
	s.Lock()
	s.Tickets = tickets
	s.Unlock()
	return nil
}

// Get returns the slot allocation
func Get(s *table.Slot) int32 {
	s.Lock()
	defer s.Unlock()
	return s.Tickets
}
