// Package allocator implements the lottery selector. On every scheduling
// decision it enumerates Runnable slots in table order, draws a winning
// ticket uniformly from their combined allocation and claims the slot that
// holds it. The draw itself is a pure function of the candidate list and the
// random value so it can be exercised deterministically.
package allocator
