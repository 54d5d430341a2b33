package crdt

import "github.com/arcs-core/arcs/pkg/vv"

// Collection holds a set of clocked values of type T. Add carries the
// writing actor's next clock; Remove succeeds only if the removal's
// version vector dominates every current clock of matching elements
// (observed-remove semantics) — a value added concurrently with a remove
// survives, because the remover could not have observed it.
type Collection[T comparable] struct {
	elems   []Elem[T]
	version vv.VersionVector
}

// NewCollection returns an empty Collection.
func NewCollection[T comparable]() *Collection[T] {
	return &Collection[T]{version: vv.New()}
}

// ApplyOperation implements Model, accepting SetAdd/SetRemove exactly as
// Singleton does (the same writing-actor-only progression check on Add),
// except Add never collapses concurrent values — a Collection keeps
// every causally-surviving element, not just one winner.
func (c *Collection[T]) ApplyOperation(op Operation) (bool, error) {
	switch o := op.(type) {
	case SetAdd[T]:
		if o.Clock.Get(o.Actor) <= c.version.Get(o.Actor) {
			return false, nil
		}
		c.elems = append(c.elems, Elem[T]{Value: o.Value, clock: o.Clock})
		c.version = c.version.Merge(o.Clock)
		return true, nil
	case SetRemove[T]:
		clocks := make([]vv.VersionVector, 0, len(c.elems))
		for _, e := range c.elems {
			if e.Value == o.Value {
				clocks = append(clocks, e.clock)
			}
		}
		if len(clocks) == 0 || !vv.AllDominatedBy(clocks, o.Clock) {
			return false, nil
		}
		c.elems = filterElems(c.elems, func(e Elem[T]) bool {
			return !(e.Value == o.Value && e.clock.LessEq(o.Clock))
		})
		c.version = c.version.Merge(o.Clock)
		return true, nil
	default:
		panic("crdt: Collection.ApplyOperation: unsupported operation type")
	}
}

// CollectionData is the wire-visible state of a Collection.
type CollectionData[T comparable] struct {
	Values  []Elem[T]
	Version vv.VersionVector
}

// Data implements Model.
func (c *Collection[T]) Data() any {
	return CollectionData[T]{Values: append([]Elem[T]{}, c.elems...), Version: c.version.Clone()}
}

// ParticleView implements Model: a plain slice of the surviving values
// (concurrent adds all survive, unlike Singleton).
func (c *Collection[T]) ParticleView() any {
	out := make([]T, len(c.elems))
	for i, e := range c.elems {
		out[i] = e.Value
	}
	return out
}

// Values is a typed convenience wrapper around ParticleView.
func (c *Collection[T]) Values() []T { return c.ParticleView().([]T) }

// Version returns the Collection's current version vector.
func (c *Collection[T]) Version() vv.VersionVector { return c.version }

// Merge reconciles c with other using the same per-element reasoning as
// Count.Merge generalized to sets: elements present on one side but not
// the other are adopted by the lagging side; the emitted deltas are
// SetAdd operations only. Removals are not propagated: an element one
// side has removed but the other still holds is added back to the side
// that removed it.
func (c *Collection[T]) Merge(other *Collection[T]) Delta {
	var delta Delta

	thisHas := make(map[elemKey[T]]Elem[T], len(c.elems))
	for _, e := range c.elems {
		thisHas[elemKeyOf(e)] = e
	}
	otherHas := make(map[elemKey[T]]Elem[T], len(other.elems))
	for _, e := range other.elems {
		otherHas[elemKeyOf(e)] = e
	}

	for k, e := range thisHas {
		if _, ok := otherHas[k]; !ok {
			delta.OtherChange = append(delta.OtherChange, SetAdd[T]{
				actorField: actorField{Actor: maxActor(e.clock)}, Clock: e.clock, Value: e.Value,
			})
		}
	}
	for k, e := range otherHas {
		if _, ok := thisHas[k]; !ok {
			c.elems = append(c.elems, e)
			delta.ThisChange = append(delta.ThisChange, SetAdd[T]{
				actorField: actorField{Actor: maxActor(e.clock)}, Clock: e.clock, Value: e.Value,
			})
		}
	}
	c.version = c.version.Merge(other.version)
	return delta
}

type elemKey[T comparable] struct {
	value T
	actor string
	ver   uint64
}

// elemKeyOf derives a stable identity for a clocked element from its value
// and the single actor/counter pair that produced it (the actor whose
// counter is highest in the element's clock, the writer in our single-hop
// construction). Two elements with the same value written by the same
// actor at the same counter are the same logical write.
func elemKeyOf[T comparable](e Elem[T]) elemKey[T] {
	a := maxActor(e.clock)
	return elemKey[T]{value: e.Value, actor: a, ver: e.clock.Get(a)}
}
