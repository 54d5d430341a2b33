package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/arcs-core/arcs/pkg/model"
)

// cmdRemove removes a value from a contact's "tags" collection. Removing
// a value from "name" is legal but pointless: Singleton's observed-remove
// semantics only drop the value if the remove's clock dominates every
// write that produced it, so a racing concurrent put can resurrect it.
func (a *app) cmdRemove(args []string) int {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit JSON")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	rest := fs.Args()
	if len(rest) != 3 {
		fmt.Fprintln(os.Stderr, "usage: arcs remove <id> <field> <value>")
		return 1
	}
	id, field, value := model.ReferenceId(rest[0]), rest[1], rest[2]

	op := model.Operation{EntityId: id, Field: field, Kind: model.OpFieldRemove, Value: model.NewText(value)}
	msg := model.NewOperationsMessage([]model.Operation{op}, nil)
	if _, err := a.rms.HandleProxyMessage(msg); err != nil {
		fatal("remove: %v", err)
	}

	if *jsonOut {
		printJSON(map[string]string{"id": string(id), "field": field, "value": value})
	} else {
		fmt.Printf("removed %s.%s = %q\n", id, field, value)
	}
	return 0
}
