// Package crdt implements the causally-ordered, merge-safe replicated data
// types used by Arcs stores: Count, Singleton, Collection, and Entity.
//
// Every concrete type satisfies Model: merge, applyOperation, and the two
// read projections (Data for the wire-visible CRDT state, ParticleView for
// the plain value a particle sees). Operations are a closed sum type
// dispatched with a type switch rather than a class hierarchy, per the
// "generic CRDT interface" design note: composition and sum types stand in
// for inheritance.
//
// No method here performs I/O or retries. A failed ApplyOperation simply
// returns false; a failed Merge panics-never but returns ErrDivergence.
// Callers (the reference-mode store, drivers) own retry and propagation.
package crdt

// Model is the capability every concrete CRDT type provides.
type Model interface {
	// ApplyOperation attempts to apply op to the model in place. It returns
	// false (with a nil error) when the operation does not connect to the
	// model's current version — the OutOfOrderOp case, which is not an
	// error, just a no-op the caller must retry after a resync.
	ApplyOperation(op Operation) (bool, error)

	// Data returns the wire-visible CRDT state (values + version), safe to
	// send to another replica or a driver.
	Data() any

	// ParticleView returns the plain value a particle observes.
	ParticleView() any
}

// Operation is the closed sum type of mutations any Model accepts.
// Concrete operations (Increment, MultiIncrement, SetAdd, SetRemove,
// FieldOperation) implement
// it only as a marker; dispatch happens via type switches inside each
// Model's ApplyOperation, not through methods on Operation itself, since
// the legal operation set differs per concrete CRDT type.
type Operation interface {
	actor() string
}

// ErrDivergence is returned by Merge when two replicas cannot be
// reconciled: the CRDT invariant (if I claim a higher value, I must also
// claim a higher version) has been violated by both sides, which can only
// happen if an actor incremented out of band without going through
// ApplyOperation. It is fatal at the store boundary (spec §7).
type ErrDivergence struct {
	Actor           string
	ThisValue, ThisVersion   uint64
	OtherValue, OtherVersion uint64
}

func (e *ErrDivergence) Error() string {
	return "crdt: divergent merge for actor " + e.Actor
}

// Delta is the two-sided result of a Merge: ordered operations that,
// applied to the *old* state of each side, reproduce the merged state on
// both. otherChange applied to the old "other" model yields the merge;
// thisChange applied to the old "this" model yields the same merge.
type Delta struct {
	ThisChange  []Operation
	OtherChange []Operation
}

// actorField is a tiny helper so operation constructors can embed it without
// repeating the same one-line method on every type.
type actorField struct{ Actor string }

func (a actorField) actor() string { return a.Actor }
