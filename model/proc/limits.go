package proc

const (
	// NProc is the fixed capacity of the process table
	NProc = 64
	// NSyscall is the size of the per-process syscall counter array; valid
	// identifiers are 0..NSyscall-1
	NSyscall = 25
	// DefaultTickets is the allocation given to the very first process
	DefaultTickets int32 = 1
)
