package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/arcs-core/arcs/pkg/model"
)

// cmdGet materializes the store and prints one entity's view. A missing
// or not-yet-READY entity (still AWAITING_BACKING) is reported as
// "not found" (exit 0) rather than as an error, matching the reference-mode store's own
// "absent means not visible yet" semantics.
func (a *app) cmdGet(args []string) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit JSON")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: arcs get <id>")
		return 1
	}
	id := model.ReferenceId(rest[0])

	resp, err := a.rms.HandleProxyMessage(model.NewSyncRequestMessage(nil))
	if err != nil {
		fatal("get: %v", err)
	}
	views, _ := resp.Model.(map[model.ReferenceId]model.EntityView)
	view, ok := views[id]

	if *jsonOut {
		printJSON(map[string]any{"id": string(id), "found": ok, "view": view})
		return 0
	}
	if !ok {
		fmt.Printf("%s: not found\n", id)
		return 0
	}
	if name, has := view.Singletons["name"]; has {
		fmt.Printf("%s.name = %s\n", id, name.String())
	}
	for _, tag := range view.Collections["tags"] {
		fmt.Printf("%s.tags += %s\n", id, tag.String())
	}
	return 0
}
