package crdt

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/arcs-core/arcs/pkg/vv"
)

// Elem is a single clocked value stored inside a Singleton or Collection.
type Elem[T comparable] struct {
	Value T
	clock vv.VersionVector
}

// Clock implements vv.Clocked so Elem can feed vv.MaximalByClock directly.
func (e Elem[T]) Clock() vv.VersionVector { return e.clock }

// SetAdd is the operation both Singleton and Collection accept to write a
// value: the op's version vector becomes the element's clock.
type SetAdd[T comparable] struct {
	actorField
	Clock vv.VersionVector
	Value T
}

// SetRemove removes a value (matched by equality) whose clock is
// dominated by the op's version vector — observed-remove semantics.
type SetRemove[T comparable] struct {
	actorField
	Clock vv.VersionVector
	Value T
}

// Singleton holds zero or one causally-maximal value of type T. Divergent
// concurrent writes accumulate into a set until merge/read collapses them
// to a single deterministic winner chosen by clock, then by actor.
type Singleton[T comparable] struct {
	elems   []Elem[T]
	version vv.VersionVector
}

// NewSingleton returns an empty Singleton.
func NewSingleton[T comparable]() *Singleton[T] {
	return &Singleton[T]{version: vv.New()}
}

var _ Operation = SetAdd[string]{}
var _ Operation = SetRemove[string]{}

// ApplyOperation implements Model. Add succeeds when the op's VV is
// strictly ahead of the model's current version for the writing actor
// only — not dominance over the whole version vector, since a genuinely
// concurrent add from a different actor can never dominate counters it
// has never observed. Checking only the writing actor's own counter also
// rejects a duplicate resubmission of the same op, since a replay's
// clock does not advance past what that actor already contributed.
// Remove succeeds only when every existing element's clock is dominated
// by the remove's VV.
func (s *Singleton[T]) ApplyOperation(op Operation) (bool, error) {
	switch o := op.(type) {
	case SetAdd[T]:
		if o.Clock.Get(o.Actor) <= s.version.Get(o.Actor) {
			return false, nil
		}
		s.elems = append(s.elems, Elem[T]{Value: o.Value, clock: o.Clock})
		s.version = s.version.Merge(o.Clock)
		s.collapse()
		return true, nil
	case SetRemove[T]:
		clocks := make([]vv.VersionVector, 0, len(s.elems))
		for _, e := range s.elems {
			if e.Value == o.Value {
				clocks = append(clocks, e.clock)
			}
		}
		if len(clocks) == 0 || !vv.AllDominatedBy(clocks, o.Clock) {
			return false, nil
		}
		s.elems = filterElems(s.elems, func(e Elem[T]) bool {
			return !(e.Value == o.Value && e.clock.LessEq(o.Clock))
		})
		s.version = s.version.Merge(o.Clock)
		return true, nil
	default:
		panic("crdt: Singleton.ApplyOperation: unsupported operation type")
	}
}

// collapse keeps only the causally-maximal elements. Concurrent maximal
// elements all stay; winner picks the one a particle observes.
func (s *Singleton[T]) collapse() {
	s.elems = vv.MaximalByClock(s.elems)
}

// winner returns the single deterministic value a particle observes, or
// the zero value and false if the Singleton is empty.
func (s *Singleton[T]) winner() (T, bool) {
	if len(s.elems) == 0 {
		var zero T
		return zero, false
	}
	if len(s.elems) == 1 {
		return s.elems[0].Value, true
	}
	best := s.elems[0]
	for _, e := range s.elems[1:] {
		if singletonLess(best, e) {
			best = e
		}
	}
	return best.Value, true
}

// singletonLess orders two concurrent elements by the lexicographically
// largest actor in their clock, falling back to the element's formatted
// value — any total order is legal as long as it is deterministic and
// pure, since this only resolves ties the application layer considers
// genuinely concurrent.
func singletonLess[T comparable](a, b Elem[T]) bool {
	aa, ba := maxActor(a.clock), maxActor(b.clock)
	if aa != ba {
		return aa < ba
	}
	return fmt.Sprint(a.Value) < fmt.Sprint(b.Value)
}

func maxActor(v vv.VersionVector) string {
	actors := v.Actors()
	if len(actors) == 0 {
		return ""
	}
	slices.Sort(actors)
	return actors[len(actors)-1]
}

// SingletonData is the wire-visible state of a Singleton.
type SingletonData[T comparable] struct {
	Values  []Elem[T]
	Version vv.VersionVector
}

// Data implements Model.
func (s *Singleton[T]) Data() any {
	return SingletonData[T]{Values: append([]Elem[T]{}, s.elems...), Version: s.version.Clone()}
}

// ParticleView implements Model: returns the winning value, or nil if
// empty.
func (s *Singleton[T]) ParticleView() any {
	v, ok := s.winner()
	if !ok {
		return nil
	}
	return v
}

// Get is a typed convenience wrapper around ParticleView.
func (s *Singleton[T]) Get() (T, bool) { return s.winner() }

// Version returns the Singleton's current version vector.
func (s *Singleton[T]) Version() vv.VersionVector { return s.version }

func filterElems[T comparable](in []Elem[T], keep func(Elem[T]) bool) []Elem[T] {
	out := in[:0]
	for _, e := range in {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
