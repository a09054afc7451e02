// Package processor hosts the execution units. Every worker acts as one CPU:
// it repeatedly asks the scheduler to run a quantum and, when nothing is
// runnable, waits for a wake-up signal, the idle backoff or cancellation.
package processor
