// Command arcs exercises the CRDT, reference-mode store, recipe graph,
// and refinement algebra packages from the command line: a store backed
// by a shared SQLite file, and a recipe subcommand that loads, validates,
// and normalizes YAML manifests.
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "--help", "-h", "help":
		printUsage()
		return
	case "--version", "-v", "version":
		fmt.Println("arcs", version)
		return
	}

	a, err := newApp()
	if err != nil {
		fatal("%v", err)
	}
	defer a.Close()

	switch os.Args[1] {
	case "init":
		os.Exit(a.cmdInit(os.Args[2:]))
	case "put":
		os.Exit(a.cmdPut(os.Args[2:]))
	case "remove":
		os.Exit(a.cmdRemove(os.Args[2:]))
	case "get":
		os.Exit(a.cmdGet(os.Args[2:]))
	case "sync":
		os.Exit(a.cmdSync(os.Args[2:]))
	case "status":
		os.Exit(a.cmdStatus(os.Args[2:]))
	case "recipe":
		os.Exit(a.cmdRecipe(os.Args[2:]))

	default:
		fmt.Fprintf(os.Stderr, "arcs: unknown command %q\n", os.Args[1])
		fmt.Fprintln(os.Stderr, "Run 'arcs --help' for usage.")
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`arcs — CRDT reference-mode store and recipe graph CLI

Version vectors for causal ordering. Reference-mode store for entity
replication. Recipe graph for static particle/handle/slot composition.
Shared SQLite for zero-config exchange between processes.

Usage:
  arcs <command> [flags]

Store commands (operate on the built-in "contacts" schema: name, tags):
  init                         Create the database file
  put <id> <field> <value>     Add a singleton or collection field value
  remove <id> <field> <value>  Remove a collection field value
  get <id>                     Show an entity's materialized view
  sync                         Retry any writes the driver had rejected
  status                       Show contact count and whether the store is idle

Recipe commands:
  recipe validate <file.yaml>    Check a manifest for structural validity
  recipe normalize <file.yaml>   Normalize, printing canonical form + digest
  recipe dump <file.yaml>        Normalize, printing canonical form only

Environment:
  ARCS_DB      SQLite database path (default: .arcs/arcs.db)
  ARCS_ACTOR   Stable actor identity (default: a random id per run)

put, remove, get, sync and status support --json for machine-readable output.

Exit codes:
  0  success
  1  error
  2  rejected (invalid recipe, normalization refused)
`)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "arcs: "+format+"\n", args...)
	os.Exit(1)
}
