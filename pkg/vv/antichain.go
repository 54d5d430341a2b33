package vv

// Clocked is anything tagged with a version vector, such as a CRDT
// Singleton or Collection element.
type Clocked interface {
	Clock() VersionVector
}

// MaximalByClock returns the antichain of causally-maximal items: those
// whose clock is not strictly dominated by any other item's clock. This is
// the same computation Naiad-style progress trackers use to find the
// frontier of minimal active pointstamps, run here in the opposite
// direction (maximal rather than minimal) to find the set of values a
// Singleton or Collection must keep after a merge.
//
// Ties (equal, non-dominating clocks) are all kept; callers that need a
// single deterministic winner must break ties themselves (CRDT Singleton
// does so by the largest actor in each clock, then by formatted value).
func MaximalByClock[T Clocked](items []T) []T {
	var out []T
	for i, p := range items {
		dominated := false
		for j, q := range items {
			if i == j {
				continue
			}
			if p.Clock().Less(q.Clock()) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, p)
		}
	}
	return out
}

// DominatedByAny reports whether clock is dominated by (less than) at
// least one of the given clocks. The CRDT observed-remove check uses
// AllDominatedBy instead; only this package's tests call DominatedByAny.
func DominatedByAny(clock VersionVector, others []VersionVector) bool {
	for _, o := range others {
		if clock.Less(o) {
			return true
		}
	}
	return false
}

// AllDominatedBy reports whether every clock in clocks is dominated by (or
// equal to) threshold. Used when a removal's version vector must dominate
// every current clock of matching elements.
func AllDominatedBy(clocks []VersionVector, threshold VersionVector) bool {
	for _, c := range clocks {
		if !c.LessEq(threshold) {
			return false
		}
	}
	return true
}
