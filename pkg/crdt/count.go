package crdt

import "golang.org/x/exp/slices"

// CountData is the wire-visible state of a Count: a per-actor running total
// and a per-actor version counting increments observed from that actor.
type CountData struct {
	Values  map[string]uint64
	Version map[string]uint64
}

// Count is a grow-only counter CRDT. Particle-visible value is the sum of
// every actor's contribution. The invariant version[a] >= number of
// increments applied from a holds because every successful
// ApplyOperation bumps both together.
type Count struct {
	values  map[string]uint64
	version map[string]uint64
}

// NewCount returns an empty Count.
func NewCount() *Count {
	return &Count{values: map[string]uint64{}, version: map[string]uint64{}}
}

// Increment is shorthand for MultiIncrement(actor, from, from+1, 1).
type Increment struct {
	actorField
	From uint64
}

func (o Increment) toMulti() MultiIncrement {
	return MultiIncrement{actorField: o.actorField, From: o.From, To: o.From + 1, Value: 1}
}

// MultiIncrement adds Value to actor's running total, moving actor's
// version from From to To in one step. Value must be strictly positive
// and To must exceed From, or the operation is rejected — a zero-value
// increment is a no-op that still advances the version, which would let
// a caller inflate version without any corresponding value.
type MultiIncrement struct {
	actorField
	From, To uint64
	Value    uint64
}

var _ Operation = Increment{}
var _ Operation = MultiIncrement{}

// ApplyOperation implements Model. Only Increment and MultiIncrement are
// legal; any other Operation is a programmer error and panics, the same
// way a type switch with no default case for an unexpected CRDT/operation
// pairing would.
func (c *Count) ApplyOperation(op Operation) (bool, error) {
	var m MultiIncrement
	switch o := op.(type) {
	case Increment:
		m = o.toMulti()
	case MultiIncrement:
		m = o
	default:
		panic("crdt: Count.ApplyOperation: unsupported operation type")
	}
	return c.applyMulti(m), nil
}

func (c *Count) applyMulti(m MultiIncrement) bool {
	if m.To <= m.From {
		return false
	}
	if m.Value == 0 {
		return false
	}
	if m.From != c.version[m.Actor] {
		return false
	}
	c.values[m.Actor] += m.Value
	c.version[m.Actor] = m.To
	return true
}

// Data implements Model.
func (c *Count) Data() any {
	return CountData{Values: cloneU64(c.values), Version: cloneU64(c.version)}
}

// ParticleView implements Model: the particle-visible value is the sum of
// every actor's contribution.
func (c *Count) ParticleView() any {
	var sum uint64
	for _, v := range c.values {
		sum += v
	}
	return sum
}

// Value is a typed convenience wrapper around ParticleView.
func (c *Count) Value() uint64 { return c.ParticleView().(uint64) }

// Merge reconciles c with other, mutating c in place to the merged state
// and returning the two-sided Delta needed to bring both replicas to that
// same state. It never mutates other.
//
// For each actor present on either side: equal (value, version) pairs need
// no change; if one side's value is strictly greater, its version must
// also be strictly greater (otherwise the two sides have diverged, which
// can only happen if an actor was incremented without going through
// ApplyOperation) and the lagging side is lifted via a synthesized
// MultiIncrement; an actor present on only one side is adopted by the
// other verbatim.
func (c *Count) Merge(other *Count) (Delta, error) {
	actors := unionKeys(c.version, other.version)
	slices.Sort(actors)

	var delta Delta
	for _, a := range actors {
		_, inThis := c.version[a]
		_, inOther := other.version[a]

		switch {
		case inThis && inOther:
			tv, tver := c.values[a], c.version[a]
			ov, over := other.values[a], other.version[a]
			switch {
			case tv == ov && tver == over:
				// no change
			case tv > ov:
				if !(tver > over) {
					return Delta{}, &ErrDivergence{Actor: a, ThisValue: tv, ThisVersion: tver, OtherValue: ov, OtherVersion: over}
				}
				delta.OtherChange = append(delta.OtherChange, MultiIncrement{
					actorField: actorField{Actor: a}, From: over, To: tver, Value: tv - ov,
				})
			case ov > tv:
				if !(over > tver) {
					return Delta{}, &ErrDivergence{Actor: a, ThisValue: tv, ThisVersion: tver, OtherValue: ov, OtherVersion: over}
				}
				c.values[a] = ov
				c.version[a] = over
				delta.ThisChange = append(delta.ThisChange, MultiIncrement{
					actorField: actorField{Actor: a}, From: tver, To: over, Value: ov - tv,
				})
			default:
				// tv == ov but versions differ: one side has a higher
				// version with no extra value, which cannot happen from
				// legal operations alone but is not itself a value
				// mismatch — treat as divergence to be safe.
				return Delta{}, &ErrDivergence{Actor: a, ThisValue: tv, ThisVersion: tver, OtherValue: ov, OtherVersion: over}
			}
		case inThis && !inOther:
			v, ver := c.values[a], c.version[a]
			delta.OtherChange = append(delta.OtherChange, MultiIncrement{
				actorField: actorField{Actor: a}, From: 0, To: ver, Value: v,
			})
		case !inThis && inOther:
			v, ver := other.values[a], other.version[a]
			c.values[a] = v
			c.version[a] = ver
			delta.ThisChange = append(delta.ThisChange, MultiIncrement{
				actorField: actorField{Actor: a}, From: 0, To: ver, Value: v,
			})
		}
	}
	return delta, nil
}

func cloneU64(m map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func unionKeys(a, b map[string]uint64) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for k := range a {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for k := range b {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
