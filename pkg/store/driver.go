// Package store implements the reference-mode storage stack: a Driver
// persistence contract, concrete SQLite and in-memory drivers, and the
// ReferenceModeStore that sits between particle-facing proxies and a
// driver, splitting entity writes into a container Reference plus a
// lazily-created per-entity backing store.
package store

import "github.com/arcs-core/arcs/pkg/vv"

// Driver is the persistence transport a store multiplexes onto. send
// returns false on a transient failure — the caller retains the write and
// retries it once the driver signals recovery via the registered
// receiver callback. A Driver implementation never silently drops a
// write; false just means "not yet."
type Driver interface {
	// RegisterReceiver installs the callback invoked whenever the driver
	// observes a remote update for key. Only one receiver is active at a
	// time; registering again replaces the previous one.
	RegisterReceiver(key string, callback func(data []byte, version vv.VersionVector))
	// Send attempts to persist data at key with the given version,
	// returning false if the write could not be durably applied yet.
	Send(key string, data []byte, version vv.VersionVector) bool
	// Close releases any resources the driver holds.
	Close() error
}
