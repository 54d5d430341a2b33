package model

import (
	"strings"

	"github.com/google/uuid"
)

// Actor is the opaque identifier of a replica producing CRDT operations.
type Actor string

// NewActor generates a fresh random Actor, used when a ReferenceModeStore
// or CLI invocation doesn't have a stable actor string configured — the
// same role CLOCKMAIL_AGENT plays in the teacher CLI, except here a
// random identity is an acceptable default because actors never need to
// be remembered across process restarts to stay consistent, only to stay
// unique within a run.
func NewActor() Actor {
	return Actor(uuid.NewString())
}

// ReferenceId is the opaque identifier of a particle-facing Entity.
type ReferenceId string

// NewReferenceId generates a fresh random ReferenceId.
func NewReferenceId() ReferenceId {
	return ReferenceId(uuid.NewString())
}

// StorageKey is an opaque hierarchical identifier into a persistence
// backend. Components are joined with "/"; the root key is the empty
// string.
type StorageKey string

// Child returns a new StorageKey extending k with component.
func (k StorageKey) Child(component string) StorageKey {
	if k == "" {
		return StorageKey(component)
	}
	return StorageKey(string(k) + "/" + component)
}

// String renders the key as its raw path form.
func (k StorageKey) String() string { return string(k) }

// ReferenceModeStorageKey composes the two storage keys a reference-mode
// store needs: one for the container (the collection of References) and
// one for the backing family (per-entity CRDT state), per spec §6.
type ReferenceModeStorageKey struct {
	BackingKey StorageKey
	StorageKey StorageKey
}

// String renders the composed key in "backing|storage" form, the simplest
// encoding consistent with "opaque hierarchical identifier" — no
// particular wire format is mandated by the spec.
func (k ReferenceModeStorageKey) String() string {
	return string(k.BackingKey) + "|" + string(k.StorageKey)
}

// ParseReferenceModeStorageKey parses the output of String.
func ParseReferenceModeStorageKey(s string) (ReferenceModeStorageKey, bool) {
	parts := strings.SplitN(s, "|", 2)
	if len(parts) != 2 {
		return ReferenceModeStorageKey{}, false
	}
	return ReferenceModeStorageKey{BackingKey: StorageKey(parts[0]), StorageKey: StorageKey(parts[1])}, true
}
