package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/lottery/user"
	"github.com/viant/lottery/user/demo"
)

var (
	shareCommand = app.Command("share", "Run busy children with different allocations and compare their CPU share.")
	shareTickets = shareCommand.Flag("tickets", "Ticket allocation per child.").Default("30", "20", "10").Ints()
	shareQuanta  = shareCommand.Flag("quanta", "Stop once the children consumed this many quanta.").Default("1000").Int()
	shareDump    = shareCommand.Flag("dump", "Upload the result as JSON to this URL.").String()
)

func doShare(ctx context.Context) {
	for _, tickets := range *shareTickets {
		if tickets < 1 {
			kingpin.Fatalf("tickets must be >= 1, got %d", tickets)
		}
	}
	rt, shutdown := startRuntime(ctx)
	defer shutdown()

	result := &demo.ShareResult{}
	status, err := rt.Run(ctx, "share", user.Main(demo.Share(*shareTickets, *shareQuanta, result)))
	kingpin.FatalIfError(err, "share")
	if status != 0 {
		kingpin.Fatalf("share exited with status %d", status)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"pid", "tickets", "ticks", "share", "expected"})
	for _, row := range result.Rows {
		table.Append([]string{
			strconv.Itoa(row.PID),
			strconv.Itoa(row.Tickets),
			humanize.Comma(int64(row.Ticks)),
			fmt.Sprintf("%.3f", row.Share),
			fmt.Sprintf("%.3f", row.Expected),
		})
	}
	table.SetFooter([]string{"", "", humanize.Comma(int64(result.Total)), "", ""})
	table.Render()

	if *shareDump != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		kingpin.FatalIfError(err, "encode result")
		fs := afs.New()
		err = fs.Upload(ctx, *shareDump, file.DefaultFileOsMode, bytes.NewReader(data))
		kingpin.FatalIfError(err, "upload result")
		fmt.Printf("wrote %s to %s\n", humanize.Bytes(uint64(len(data))), *shareDump)
	}
}

func init() {
	commandHandlers = append(commandHandlers, func(ctx context.Context, command string) bool {
		if command != shareCommand.FullCommand() {
			return false
		}
		doShare(ctx)
		return true
	})
}
