package main

import (
	"fmt"
	"os"

	"github.com/arcs-core/arcs/pkg/recipe"
)

// cmdRecipe dispatches to the recipe subcommands. It takes no app state
// (recipes are file-local, not store-backed), but lives on app for the
// same uniform dispatch shape as the store commands.
func (a *app) cmdRecipe(args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: arcs recipe <validate|normalize|dump> <file.yaml>")
		return 1
	}
	sub, path := args[0], args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		fatal("recipe: %v", err)
	}
	r, err := recipe.FromManifest(data)
	if err != nil {
		fatal("recipe: %v", err)
	}

	switch sub {
	case "validate":
		if !r.IsValid() {
			fmt.Fprintln(os.Stderr, "recipe: invalid")
			return 2
		}
		fmt.Println("recipe: valid")
		return 0

	case "normalize":
		frozen, err := r.Normalize()
		if err != nil {
			fmt.Fprintf(os.Stderr, "recipe: %v\n", err)
			return 2
		}
		fmt.Print(frozen.ToString())
		fmt.Printf("digest: %s\n", frozen.Digest())
		fmt.Printf("resolved: %t\n", frozen.IsResolved())
		return 0

	case "dump":
		if !r.IsValid() {
			fmt.Fprintln(os.Stderr, "recipe: invalid")
			return 2
		}
		frozen, err := r.Normalize()
		if err != nil {
			fmt.Fprintf(os.Stderr, "recipe: %v\n", err)
			return 2
		}
		fmt.Print(frozen.ToString())
		return 0

	default:
		fmt.Fprintf(os.Stderr, "arcs recipe: unknown subcommand %q\n", sub)
		return 1
	}
}
