package main

import (
	"flag"
	"fmt"
)

// cmdSync retries every write the driver previously rejected and reports
// whether the store settled into an idle state (no pending writes, no
// Reference still AWAITING_BACKING).
func (a *app) cmdSync(args []string) int {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit JSON")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	a.rms.FlushPending()
	idle := a.rms.Idle()

	if *jsonOut {
		printJSON(map[string]bool{"idle": idle})
	} else if idle {
		fmt.Println("sync: idle")
	} else {
		fmt.Println("sync: pending writes or backing references remain")
	}
	return 0
}
