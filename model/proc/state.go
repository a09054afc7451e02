package proc

// State represents the lifecycle state of a process table slot
type State uint8

const (
	Unused State = iota
	Embryo
	Runnable
	Running
	Sleeping
	Zombie
)

var stateNames = [...]string{
	Unused:   "unused",
	Embryo:   "embryo",
	Runnable: "runnable",
	Running:  "running",
	Sleeping: "sleeping",
	Zombie:   "zombie",
}

// String returns state name
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// InUse returns true for any state other than Unused
func (s State) InUse() bool {
	return s != Unused
}

// MarshalText encodes the state as its name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
