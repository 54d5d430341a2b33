package main

import "fmt"

// cmdInit exists only so "arcs init" has an explicit, discoverable entry
// point; newApp has already created the database and wired the contacts
// store by the time this runs, so there's nothing left to do but
// confirm it.
func (a *app) cmdInit(args []string) int {
	fmt.Println("arcs: database ready")
	return 0
}
