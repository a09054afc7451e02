package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"github.com/viant/lottery/user"
	"github.com/viant/lottery/user/demo"
)

var (
	inheritCommand = app.Command("inherit", "Set an allocation, fork, and show the allocation the child inherited.")
	inheritTickets = inheritCommand.Flag("tickets", "Allocation to set before forking.").Default("40").Int()
)

func doInherit(ctx context.Context) {
	rt, shutdown := startRuntime(ctx)
	defer shutdown()
	result := &demo.InheritResult{}
	status, err := rt.Run(ctx, "inherit", user.Main(demo.Inherit(*inheritTickets, result)))
	kingpin.FatalIfError(err, "inherit")
	if status != 0 {
		kingpin.Fatalf("inherit exited with status %d", status)
	}
	fmt.Printf("parent tickets: %d\nchild tickets:  %d\n", result.Parent, result.Child)
}

func init() {
	commandHandlers = append(commandHandlers, func(ctx context.Context, command string) bool {
		if command != inheritCommand.FullCommand() {
			return false
		}
		doInherit(ctx)
		return true
	})
}
