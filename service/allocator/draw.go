package allocator

import "github.com/viant/lottery/service/table"

// Candidate is a Runnable slot observed during enumeration
type Candidate struct {
	Slot    *table.Slot
	PID     int
	Tickets int32
}

// Total returns combined allocation of candidates
func Total(candidates []Candidate) int64 {
	var total int64
	for i := range candidates {
		total += int64(candidates[i].Tickets)
	}
	return total
}

// Winner returns the index of the first candidate whose cumulative
// allocation exceeds r, or -1 when r is outside [0,Total)
func Winner(candidates []Candidate, r int64) int {
	if r < 0 {
		return -1
	}
	var cumulative int64
	for i := range candidates {
		cumulative += int64(candidates[i].Tickets)
		if cumulative > r {
			return i
		}
	}
	return -1
}

// Draw picks a winner using src; ok is false when no tickets are held
func Draw(candidates []Candidate, src RandSource) (int, bool) {
	total := Total(candidates)
	if total <= 0 {
		return -1, false
	}
	index := Winner(candidates, src.Int63n(total))
	return index, index >= 0
}
