package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/arcs-core/arcs/pkg/model"
	"github.com/arcs-core/arcs/pkg/store"
)

const (
	defaultDB  = "arcs.db"
	defaultDir = ".arcs"
)

// contactsSchema is the fixed entity shape every store subcommand
// operates on: a "name" singleton and a "tags" collection, just enough
// structure to exercise both CRDT field kinds from the command line.
var contactsSchema = &model.Schema{
	Names:       []string{"name", "tags"},
	Singletons:  map[string]model.FieldType{"name": model.KindText},
	Collections: map[string]model.FieldType{"tags": model.KindText},
}

// app holds shared state for all CLI subcommands.
type app struct {
	driver *store.SQLiteDriver
	rms    *store.ReferenceModeStore
}

// newApp opens the database and wires a ReferenceModeStore over the
// "contacts" container key. Creates the .arcs/ directory if using the
// default DB path.
func newApp() (*app, error) {
	dbPath := envOr("ARCS_DB", defaultDB)
	if dbPath == defaultDB {
		if err := os.MkdirAll(defaultDir, 0755); err != nil {
			return nil, fmt.Errorf("cannot create %s: %w", defaultDir, err)
		}
		dbPath = defaultDir + "/" + defaultDB
	}
	driver, err := store.NewSQLiteDriver(dbPath, 0)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %q: %w", dbPath, err)
	}
	rms := store.NewReferenceModeStore(contactsSchema, driver, model.StorageKey("contacts"))
	if actor := envOr("ARCS_ACTOR", ""); actor != "" {
		rms.SetActor(model.Actor(actor))
	}
	return &app{driver: driver, rms: rms}, nil
}

// Close releases the database connection.
func (a *app) Close() { a.driver.Close() }

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
