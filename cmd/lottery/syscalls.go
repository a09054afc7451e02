package main

import (
	"context"
	"os"
	"sort"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/viant/lottery/model/sys"
	"github.com/viant/lottery/user"
	"github.com/viant/lottery/user/demo"
)

var syscallsCommand = app.Command("syscalls", "Issue a known mix of system calls and print the per-call counters.")

func doSyscalls(ctx context.Context) {
	rt, shutdown := startRuntime(ctx)
	defer shutdown()
	result := &demo.SyscallResult{}
	status, err := rt.Run(ctx, "syscalls", user.Main(demo.Syscalls(result)))
	kingpin.FatalIfError(err, "syscalls")
	if status != 0 {
		kingpin.Fatalf("syscalls exited with status %d", status)
	}

	names := make([]string, 0, len(result.Counts))
	for name := range result.Counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, _ := sys.Lookup(names[i])
		b, _ := sys.Lookup(names[j])
		return a < b
	})
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"id", "syscall", "count"})
	for _, name := range names {
		id, _ := sys.Lookup(name)
		table.Append([]string{humanize.Comma(int64(id)), name, humanize.Comma(int64(result.Counts[name]))})
	}
	table.Render()
}

func init() {
	commandHandlers = append(commandHandlers, func(ctx context.Context, command string) bool {
		if command != syscallsCommand.FullCommand() {
			return false
		}
		doSyscalls(ctx)
		return true
	})
}
