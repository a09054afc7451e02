// Package pstat defines the process snapshot record returned by the
// process-info control call together with its fixed binary layout.
//
// The record is four parallel arrays of NProc 32-bit signed integers, indexed
// by table slot, laid out back to back in little-endian order:
//
//	offset    0: inUse
//	offset  256: tickets
//	offset  512: pid
//	offset  768: ticks
package pstat

import (
	"encoding/binary"
	"fmt"

	"github.com/viant/lottery/model/proc"
)

// Size is the encoded size of a PStat in bytes
const Size = 4 * proc.NProc * 4

// PStat is a slot-indexed snapshot of the process table
type PStat struct {
	InUse   [proc.NProc]int32 `json:"inuse"`
	Tickets [proc.NProc]int32 `json:"tickets"`
	PID     [proc.NProc]int32 `json:"pid"`
	Ticks   [proc.NProc]int32 `json:"ticks"`
}

// Entry is a single in-use row of a snapshot
type Entry struct {
	Slot    int   `json:"slot"`
	PID     int32 `json:"pid"`
	Tickets int32 `json:"tickets"`
	Ticks   int32 `json:"ticks"`
}

func (p *PStat) arrays() [4]*[proc.NProc]int32 {
	return [4]*[proc.NProc]int32{&p.InUse, &p.Tickets, &p.PID, &p.Ticks}
}

// MarshalBinary encodes the snapshot using the fixed layout
func (p *PStat) MarshalBinary() ([]byte, error) {
	data := make([]byte, Size)
	offset := 0
	for _, values := range p.arrays() {
		for _, v := range values {
			binary.LittleEndian.PutUint32(data[offset:], uint32(v))
			offset += 4
		}
	}
	return data, nil
}

// UnmarshalBinary decodes the fixed layout
func (p *PStat) UnmarshalBinary(data []byte) error {
	if len(data) < Size {
		return fmt.Errorf("pstat: short buffer: %d < %d", len(data), Size)
	}
	offset := 0
	for _, values := range p.arrays() {
		for i := range values {
			values[i] = int32(binary.LittleEndian.Uint32(data[offset:]))
			offset += 4
		}
	}
	return nil
}

// Find returns the slot of the in-use entry carrying pid
func (p *PStat) Find(pid int) (int, bool) {
	for i := 0; i < proc.NProc; i++ {
		if p.InUse[i] != 0 && int(p.PID[i]) == pid {
			return i, true
		}
	}
	return -1, false
}

// InUseCount returns number of in-use entries
func (p *PStat) InUseCount() int {
	count := 0
	for _, v := range p.InUse {
		if v != 0 {
			count++
		}
	}
	return count
}

// Entries returns in-use rows in slot order
func (p *PStat) Entries() []Entry {
	var result []Entry
	for i := 0; i < proc.NProc; i++ {
		if p.InUse[i] == 0 {
			continue
		}
		result = append(result, Entry{Slot: i, PID: p.PID[i], Tickets: p.Tickets[i], Ticks: p.Ticks[i]})
	}
	return result
}
