// Package event carries process lifecycle notifications from the kernel to
// observers. Kernel paths publish with Offer so a slow observer can never
// stall scheduling; excess events are dropped.
package event
