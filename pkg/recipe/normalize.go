package recipe

import (
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Normalize freezes r into a FrozenRecipe, following the eight-step
// deterministic canonicalization: refuse if invalid, sort each
// particle's handle- and slot-connections by a total order (interface-
// typed handle connections last), order particles by their smallest
// connection name, reorder handles/slots by first appearance in the
// sorted connection lists, then assign stable local names and seal
// every arena against further mutation. The recipe holds no verb or
// pattern lists, so no verb/pattern sorting step is performed.
//
// Normalize consumes r: callers must not mutate r after a successful
// call.
func (r *MutableRecipe) Normalize() (*FrozenRecipe, error) {
	if r.frozen {
		return nil, errAlreadyFrozen
	}
	if !r.isValid() {
		return nil, &ErrInvalidRecipe{Reasons: collectInvalidReasons(r)}
	}

	for _, p := range r.particles {
		sortHandleConnections(p.Connections)
		sortSlotConnections(p.SlotConns)
	}

	particles := reorderParticles(r.particles)
	handles := reorderHandles(particles, r.handles)
	slots := reorderSlots(particles, r.slots)

	r.frozen = true

	frozen := &FrozenRecipe{
		particles:   particles,
		handles:     handles,
		slots:       slots,
		constraints: append([]*ConnectionConstraint{}, r.constraints...),
		search:      r.search,
		localNames:  make(map[nodeIndex]string),
	}
	assignLocalNames(frozen)
	return frozen, nil
}

// sortHandleConnections orders connections lexicographically by name,
// with interface-typed connections sorted last regardless of name so
// resolver strategies see a deterministic, type-stability-preserving
// view.
func sortHandleConnections(conns []*HandleConnection) {
	slices.SortStableFunc(conns, func(a, b *HandleConnection) int {
		if a.InterfaceTyped != b.InterfaceTyped {
			if a.InterfaceTyped {
				return 1
			}
			return -1
		}
		return strings.Compare(a.Name, b.Name)
	})
}

// sortSlotConnections orders slot-connections by name, with provided
// slots following the connection that produces them.
func sortSlotConnections(conns []*SlotConnection) {
	slices.SortStableFunc(conns, func(a, b *SlotConnection) int {
		if a.Providing != b.Providing {
			if a.Providing {
				return 1
			}
			return -1
		}
		return strings.Compare(a.Name, b.Name)
	})
}

// reorderParticles sorts particles by their smallest handle- or
// slot-connection name, so two recipes built in different orders
// but with the same wiring normalize to the same particle order. A
// particle with no connections at all is an orphan and sorts after
// every connected particle, by verb then local name.
func reorderParticles(particles []*Particle) []*Particle {
	out := append([]*Particle{}, particles...)
	slices.SortStableFunc(out, func(a, b *Particle) int {
		ak, aHas := firstConnectionKey(a)
		bk, bHas := firstConnectionKey(b)
		if aHas != bHas {
			if aHas {
				return -1
			}
			return 1
		}
		if !aHas {
			if a.Verb != b.Verb {
				return strings.Compare(a.Verb, b.Verb)
			}
			return strings.Compare(a.LocalName, b.LocalName)
		}
		return strings.Compare(ak, bk)
	})
	return out
}

// firstConnectionKey returns the lexicographically smallest connection
// or slot-connection name a particle exposes, or ("", false) if it has
// none.
func firstConnectionKey(p *Particle) (string, bool) {
	has := false
	min := ""
	for _, c := range p.Connections {
		if !has || c.Name < min {
			min, has = c.Name, true
		}
	}
	for _, c := range p.SlotConns {
		if !has || c.Name < min {
			min, has = c.Name, true
		}
	}
	return min, has
}

// reorderHandles reorders handles by first appearance across particles'
// sorted connection lists, appending unreferenced handles by fate then
// index.
func reorderHandles(particles []*Particle, handles []*Handle) []*Handle {
	out := make([]*Handle, 0, len(handles))
	seen := make(map[*Handle]bool, len(handles))
	for _, p := range particles {
		for _, c := range p.Connections {
			if c.Handle != nil && !seen[c.Handle] {
				seen[c.Handle] = true
				out = append(out, c.Handle)
			}
		}
	}
	var orphans []*Handle
	for _, h := range handles {
		if !seen[h] {
			orphans = append(orphans, h)
		}
	}
	slices.SortStableFunc(orphans, func(a, b *Handle) int {
		if a.Fate != b.Fate {
			return int(a.Fate) - int(b.Fate)
		}
		return int(a.index) - int(b.index)
	})
	return append(out, orphans...)
}

// reorderSlots reorders slots by first appearance across particles'
// sorted slot-connection lists, appending unreferenced slots sorted by
// pattern.
func reorderSlots(particles []*Particle, slots []*Slot) []*Slot {
	out := make([]*Slot, 0, len(slots))
	seen := make(map[*Slot]bool, len(slots))
	for _, p := range particles {
		for _, c := range p.SlotConns {
			if c.Slot != nil && !seen[c.Slot] {
				seen[c.Slot] = true
				out = append(out, c.Slot)
			}
		}
	}
	var orphans []*Slot
	for _, s := range slots {
		if !seen[s] {
			orphans = append(orphans, s)
		}
	}
	slices.SortStableFunc(orphans, func(a, b *Slot) int { return strings.Compare(a.Pattern, b.Pattern) })
	return append(out, orphans...)
}

// assignLocalNames gives every node lacking one a stable synthetic name
// (particle0, handle0, slot0, ...) in normalized order.
func assignLocalNames(r *FrozenRecipe) {
	for i, p := range r.particles {
		if p.LocalName == "" {
			p.LocalName = localName("particle", i)
		}
		r.localNames[p.index] = p.LocalName
	}
	for i, h := range r.handles {
		if h.LocalName == "" {
			h.LocalName = localName("handle", i)
		}
		r.localNames[h.index] = h.LocalName
	}
	for i, s := range r.slots {
		if s.LocalName == "" {
			s.LocalName = localName("slot", i)
		}
		r.localNames[s.index] = s.LocalName
	}
}

func localName(prefix string, i int) string {
	return prefix + strconv.Itoa(i)
}
