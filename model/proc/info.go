package proc

// Info is a point-in-time view of a single slot
type Info struct {
	Slot    int    `json:"slot" yaml:"slot"`
	PID     int    `json:"pid" yaml:"pid"`
	State   State  `json:"state" yaml:"state"`
	Tickets int32  `json:"tickets" yaml:"tickets"`
	Ticks   uint64 `json:"ticks" yaml:"ticks"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
}
