package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/arcs-core/arcs/pkg/model"
)

// cmdStatus prints how many contacts are materialized and whether the
// store is idle. Counts use humanize.Comma for readability on a terminal;
// piped output (isatty false) skips that since a downstream consumer is
// more likely to want the bare number.
func (a *app) cmdStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit JSON")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	resp, err := a.rms.HandleProxyMessage(model.NewSyncRequestMessage(nil))
	if err != nil {
		fatal("status: %v", err)
	}
	views, _ := resp.Model.(map[model.ReferenceId]model.EntityView)
	idle := a.rms.Idle()

	if *jsonOut {
		printJSON(map[string]any{"contacts": len(views), "idle": idle})
		return 0
	}

	count := fmt.Sprintf("%d", len(views))
	if isatty.IsTerminal(os.Stdout.Fd()) {
		count = humanize.Comma(int64(len(views)))
	}
	fmt.Printf("contacts: %s\n", count)
	fmt.Printf("idle:     %t\n", idle)
	return 0
}
