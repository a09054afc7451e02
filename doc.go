// Package lottery provides a proportional-share scheduler runtime.
//
// A Runtime hosts a fixed-size process table whose processes are Go
// programs. Every quantum a CPU draws a lottery over the runnable processes:
// each process holds tickets and wins the CPU with probability proportional
// to its share of the tickets in play. Processes can change their own
// allocation, read a snapshot of the whole table and query per-syscall
// counters through the user package.
//
//	srv := lottery.New(lottery.WithConfig(cfg))
//	rt := srv.Runtime()
//	_ = rt.Start(ctx)
//	status, err := rt.Run(ctx, "share", user.Main(program))
//	_ = rt.Shutdown(ctx)
package lottery
