package pstat

import (
	"time"

	"github.com/viant/lottery/model/proc"
)

// Record is an archived snapshot together with where and when it was taken
type Record struct {
	ID        string      `json:"id" yaml:"id"`
	Boot      string      `json:"boot" yaml:"boot"`
	Label     string      `json:"label,omitempty" yaml:"label,omitempty"`
	Tick      uint64      `json:"tick" yaml:"tick"`
	TakenAt   time.Time   `json:"takenAt" yaml:"takenAt"`
	PStat     PStat       `json:"pstat" yaml:"pstat"`
	Processes []proc.Info `json:"processes,omitempty" yaml:"processes,omitempty"`
}
