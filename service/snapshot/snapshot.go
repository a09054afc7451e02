// Package snapshot exports the process table as a pstat record.
//
// Each slot is copied under its own lock; no lock spans two slots, so rows
// may reflect slightly different instants.
package snapshot

import (
	"math"

	"github.com/viant/lottery/model/pstat"
	"github.com/viant/lottery/service/table"
)

// Build captures the table into a new record
func Build(t *table.Table) *pstat.PStat {
	ret := &pstat.PStat{}
	Fill(t, ret)
	return ret
}

// Fill overwrites dest with the current table content
func Fill(t *table.Table, dest *pstat.PStat) {
	t.Scan(func(s *table.Slot) bool {
		i := s.Index()
		if !s.State.InUse() {
			dest.InUse[i], dest.Tickets[i], dest.PID[i], dest.Ticks[i] = 0, 0, 0, 0
			return true
		}
		dest.InUse[i] = 1
		dest.Tickets[i] = s.Tickets
		dest.PID[i] = int32(s.PID)
		dest.Ticks[i] = saturate(s.Ticks)
		return true
	})
}

func saturate(v uint64) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(v)
}
