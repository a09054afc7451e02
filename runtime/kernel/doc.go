// Package kernel glues the scheduler services into a running system.
//
// Every process is a goroutine executing a Program. A process only makes
// progress while it holds a CPU: a processor worker claims it through the
// lottery, hands it a run token and blocks until the process gives the CPU
// back at a quantum boundary (Yield, Preempt), a blocking wait (Pause, Wait)
// or exit. Syscalls are methods on Proc; each one is counted before its body
// runs and terminates the caller first when it has been killed.
package kernel
