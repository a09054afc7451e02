// Package sys enumerates the system call identifiers counted by the usage
// accumulator. Identifier 0 is reserved and never issued.
package sys

import (
	"strconv"

	"github.com/viant/lottery/model/proc"
)

// ID identifies a system call
type ID int

const (
	Fork ID = iota + 1
	Exit
	Wait
	Pipe
	Read
	Kill
	Exec
	Fstat
	Chdir
	Dup
	GetPID
	Sbrk
	Pause
	Uptime
	Open
	Write
	Mknod
	Unlink
	Link
	Mkdir
	Close
	SetTickets
	GetPInfo
	GetSyscallCount
)

var names = map[ID]string{
	Fork:            "fork",
	Exit:            "exit",
	Wait:            "wait",
	Pipe:            "pipe",
	Read:            "read",
	Kill:            "kill",
	Exec:            "exec",
	Fstat:           "fstat",
	Chdir:           "chdir",
	Dup:             "dup",
	GetPID:          "getpid",
	Sbrk:            "sbrk",
	Pause:           "pause",
	Uptime:          "uptime",
	Open:            "open",
	Write:           "write",
	Mknod:           "mknod",
	Unlink:          "unlink",
	Link:            "link",
	Mkdir:           "mkdir",
	Close:           "close",
	SetTickets:      "settickets",
	GetPInfo:        "getpinfo",
	GetSyscallCount: "getsyscallcount",
}

// Valid returns true when id indexes the per-process counter array
func (id ID) Valid() bool {
	return id >= 0 && int(id) < proc.NSyscall
}

// String returns the syscall name, or its number when unnamed
func (id ID) String() string {
	if name, ok := names[id]; ok {
		return name
	}
	return "sys" + strconv.Itoa(int(id))
}

// Lookup returns the id for a syscall name
func Lookup(name string) (ID, bool) {
	for id, candidate := range names {
		if candidate == name {
			return id, true
		}
	}
	return 0, false
}
