package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/arcs-core/arcs/pkg/model"
)

// cmdPut adds a value to a contact's "name" singleton or "tags"
// collection. Adding to "name" again simply races the existing value
// under Singleton's last-writer-by-clock rule rather than erroring —
// there's no remove-before-add requirement for singleton fields.
func (a *app) cmdPut(args []string) int {
	fs := flag.NewFlagSet("put", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit JSON")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	rest := fs.Args()
	if len(rest) != 3 {
		fmt.Fprintln(os.Stderr, "usage: arcs put <id> <field> <value>")
		return 1
	}
	id, field, value := model.ReferenceId(rest[0]), rest[1], rest[2]

	op := model.Operation{EntityId: id, Field: field, Kind: model.OpFieldAdd, Value: model.NewText(value)}
	msg := model.NewOperationsMessage([]model.Operation{op}, nil)
	if _, err := a.rms.HandleProxyMessage(msg); err != nil {
		fatal("put: %v", err)
	}

	if *jsonOut {
		printJSON(map[string]string{"id": string(id), "field": field, "value": value})
	} else {
		fmt.Printf("put %s.%s = %q\n", id, field, value)
	}
	return 0
}
