package proc

import "errors"

// Errors crossing the user/kernel boundary. The user library collapses all of
// them to the -1 sentinel; kernel callers match them with errors.Is.
var (
	// ErrInvalidArgument is returned when a value violates a precondition,
	// e.g. a ticket count below one or a syscall id out of range.
	ErrInvalidArgument = errors.New("proc: invalid argument")

	// ErrBoundaryFault is returned when a user destination address is not
	// mapped or not writable.
	ErrBoundaryFault = errors.New("proc: bad user address")

	// ErrInterrupted is returned by blocking waits of a killed process.
	ErrInterrupted = errors.New("proc: interrupted")

	// ErrTableFull is returned when no Unused slot is left.
	ErrTableFull = errors.New("proc: process table full")

	// ErrNoChildren is returned by wait when the caller has no children.
	ErrNoChildren = errors.New("proc: no children")

	// ErrNotFound is returned when no in-use slot carries the pid.
	ErrNotFound = errors.New("proc: no such process")

	// ErrBadDescriptor is returned for an unknown file descriptor.
	ErrBadDescriptor = errors.New("proc: bad file descriptor")
)
