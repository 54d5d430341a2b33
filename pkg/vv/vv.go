// Package vv implements version vectors: actor -> counter mappings that
// establish causality between CRDT operations.
//
// A version vector u is less-equal another v (u <= v) iff every actor's
// counter in u is no greater than the same actor's counter in v. A missing
// actor is treated as zero, so u and v never need the same key set. Two
// vectors are concurrent when neither dominates the other.
//
// VersionVector is not goroutine-safe. Each CRDT replica owns exactly one
// VersionVector per field; cross-replica coordination happens by exchanging
// copies, never by sharing the map.
package vv

import "golang.org/x/exp/slices"

// VersionVector maps an actor to the number of operations from that actor
// it has observed. A VersionVector's zero value is the empty vector (every
// actor at zero) and is ready to use.
type VersionVector struct {
	counts map[string]uint64
}

// New returns an empty version vector.
func New() VersionVector {
	return VersionVector{}
}

// FromMap builds a VersionVector from actor->counter pairs. The input map
// is copied; callers may mutate it afterwards.
func FromMap(m map[string]uint64) VersionVector {
	if len(m) == 0 {
		return VersionVector{}
	}
	out := make(map[string]uint64, len(m))
	for k, v := range m {
		if v != 0 {
			out[k] = v
		}
	}
	return VersionVector{counts: out}
}

// Get returns the counter for actor, or 0 if actor is absent.
func (v VersionVector) Get(actor string) uint64 {
	if v.counts == nil {
		return 0
	}
	return v.counts[actor]
}

// Set returns a new VersionVector equal to v but with actor's counter set
// to n. v is not mutated.
func (v VersionVector) Set(actor string, n uint64) VersionVector {
	out := v.Clone()
	if n == 0 {
		delete(out.counts, actor)
		return out
	}
	if out.counts == nil {
		out.counts = make(map[string]uint64, 1)
	}
	out.counts[actor] = n
	return out
}

// Bump returns a new VersionVector equal to v with actor's counter raised
// to at least n. If v's counter for actor already exceeds n, v is returned
// unchanged (as a clone).
func (v VersionVector) Bump(actor string, n uint64) VersionVector {
	if v.Get(actor) >= n {
		return v.Clone()
	}
	return v.Set(actor, n)
}

// Clone returns an independent copy of v.
func (v VersionVector) Clone() VersionVector {
	if len(v.counts) == 0 {
		return VersionVector{}
	}
	out := make(map[string]uint64, len(v.counts))
	for k, c := range v.counts {
		out[k] = c
	}
	return VersionVector{counts: out}
}

// Actors returns the set of actors with a non-zero counter, sorted for
// deterministic iteration.
func (v VersionVector) Actors() []string {
	out := make([]string, 0, len(v.counts))
	for a := range v.counts {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

// IsZero reports whether every actor's counter is zero.
func (v VersionVector) IsZero() bool { return len(v.counts) == 0 }

// LessEq reports whether v <= other: every actor's counter in v is no
// greater than the corresponding counter in other.
func (v VersionVector) LessEq(other VersionVector) bool {
	for a, c := range v.counts {
		if c > other.Get(a) {
			return false
		}
	}
	return true
}

// Less reports whether v < other: v <= other and v != other.
func (v VersionVector) Less(other VersionVector) bool {
	return v.LessEq(other) && !v.Equal(other)
}

// Dominates reports whether other <= v (v is causally at or ahead of
// other). It is the mirror of LessEq.
func (v VersionVector) Dominates(other VersionVector) bool {
	return other.LessEq(v)
}

// Concurrent reports whether neither vector dominates the other.
func (v VersionVector) Concurrent(other VersionVector) bool {
	return !v.LessEq(other) && !other.LessEq(v)
}

// Equal reports whether v and other have identical non-zero counters.
func (v VersionVector) Equal(other VersionVector) bool {
	if len(v.counts) != len(other.counts) {
		return false
	}
	for a, c := range v.counts {
		if other.Get(a) != c {
			return false
		}
	}
	return true
}

// Merge returns the pointwise maximum of v and other (the least upper
// bound in the version-vector partial order).
func (v VersionVector) Merge(other VersionVector) VersionVector {
	out := v.Clone()
	for _, a := range other.Actors() {
		if c := other.Get(a); c > out.Get(a) {
			out = out.Set(a, c)
		}
	}
	return out
}

// Map returns a copy of the underlying actor->counter map, omitting
// zero-valued entries. Intended for serialization.
func (v VersionVector) Map() map[string]uint64 {
	out := make(map[string]uint64, len(v.counts))
	for k, c := range v.counts {
		if c != 0 {
			out[k] = c
		}
	}
	return out
}
