// Package proc defines the process table vocabulary shared by the scheduler
// services: slot states, table limits, the lifecycle events emitted by the
// kernel and the error values returned across the syscall boundary.
package proc
