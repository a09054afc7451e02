package proc

// EventKind identifies a process lifecycle transition
type EventKind string

const (
	EventForked         EventKind = "forked"
	EventExited         EventKind = "exited"
	EventReaped         EventKind = "reaped"
	EventKilled         EventKind = "killed"
	EventTicketsChanged EventKind = "ticketsChanged"
)

// Event describes a lifecycle transition of a single process
type Event struct {
	Kind    EventKind `json:"kind"`
	PID     int       `json:"pid"`
	Slot    int       `json:"slot"`
	Parent  int       `json:"parent,omitempty"`
	Tickets int32     `json:"tickets,omitempty"`
	Status  int       `json:"status,omitempty"`
	Name    string    `json:"name,omitempty"`
}
