package recipe

import (
	"fmt"
	"strings"
)

// Search is an optional whole-recipe resolver hint: a verb plus a set of
// tags a resolution strategy can use to find particles matching neither
// by name nor by explicit connection.
type Search struct {
	Verb string
	Tags []string
}

func (s *Search) isValid() bool    { return s == nil || s.Verb != "" }
func (s *Search) isResolved() bool { return s == nil }

// MutableRecipe is a recipe graph under construction: particles, handles,
// slots, and connection constraints live in arenas indexed by stable
// nodeIndex values, so that cross-references survive copying and
// normalization without needing pointer rewriting beyond what
// _copyInto's cloneMap already does.
//
// MutableRecipe.Normalize consumes the mutable recipe's content to build
// a FrozenRecipe; Go has no linear types, so nothing stops a caller from
// continuing to mutate the original after a successful Normalize, but
// doing so is unsupported — treat the MutableRecipe as spent.
type MutableRecipe struct {
	particles   []*Particle
	handles     []*Handle
	slots       []*Slot
	constraints []*ConnectionConstraint
	search      *Search
	frozen      bool
}

// New returns an empty MutableRecipe.
func New() *MutableRecipe {
	return &MutableRecipe{}
}

// AddParticle appends a new Particle to the recipe's arena and returns it.
func (r *MutableRecipe) AddParticle(verb string) *Particle {
	p := &Particle{index: nodeIndex(len(r.particles)), Verb: verb}
	r.particles = append(r.particles, p)
	return p
}

// AddHandle appends a new Handle to the recipe's arena and returns it.
func (r *MutableRecipe) AddHandle(fate HandleFate) *Handle {
	h := &Handle{index: nodeIndex(len(r.handles)), Fate: fate}
	r.handles = append(r.handles, h)
	return h
}

// AddSlot appends a new Slot to the recipe's arena and returns it.
func (r *MutableRecipe) AddSlot(pattern string) *Slot {
	s := &Slot{index: nodeIndex(len(r.slots)), Pattern: pattern}
	r.slots = append(r.slots, s)
	return s
}

// Connect adds a HandleConnection from p to h under name. It records no
// ConnectionConstraint; constraints are added only via AddConstraint.
func (r *MutableRecipe) Connect(p *Particle, name string, h *Handle, kind ConnectionKind) *HandleConnection {
	c := &HandleConnection{Name: name, Handle: h, Kind: kind}
	p.Connections = append(p.Connections, c)
	return c
}

// ConnectSlot adds a SlotConnection from p to s under name.
func (r *MutableRecipe) ConnectSlot(p *Particle, name string, s *Slot, providing bool) *SlotConnection {
	c := &SlotConnection{Name: name, Slot: s, Providing: providing}
	p.SlotConns = append(p.SlotConns, c)
	return c
}

// AddConstraint records an unresolved cross-particle connection
// requirement.
func (r *MutableRecipe) AddConstraint(c *ConnectionConstraint) {
	r.constraints = append(r.constraints, c)
}

// SetSearch attaches a whole-recipe Search hint.
func (r *MutableRecipe) SetSearch(s *Search) { r.search = s }

// isValid reports whether no duplicate Handles or Slots exist by id,
// every node's own isValid holds, every connection is valid, and the
// optional Search is valid.
func (r *MutableRecipe) isValid() bool {
	if hasDuplicateIndex(r.handles) || hasDuplicateSlotIndex(r.slots) {
		return false
	}
	for _, p := range r.particles {
		if !p.isValid() {
			return false
		}
	}
	for _, h := range r.handles {
		if !h.isValid() {
			return false
		}
	}
	for _, s := range r.slots {
		if !s.isValid() {
			return false
		}
	}
	return r.search.isValid()
}

// IsValid is the exported form of isValid, used by callers outside this
// package (e.g. cmd/arcs) to check a recipe before attempting Normalize.
func (r *MutableRecipe) IsValid() bool { return r.isValid() }

func hasDuplicateIndex(handles []*Handle) bool {
	seen := make(map[nodeIndex]bool, len(handles))
	for _, h := range handles {
		if seen[h.index] {
			return true
		}
		seen[h.index] = true
	}
	return false
}

func hasDuplicateSlotIndex(slots []*Slot) bool {
	seen := make(map[nodeIndex]bool, len(slots))
	for _, s := range slots {
		if seen[s.index] {
			return true
		}
		seen[s.index] = true
	}
	return false
}

// Clone returns a deep copy of r: fresh Particle/Handle/Slot nodes with
// their own indices, every cross-reference remapped through the
// returned cloneMap so the copy shares no pointers with r.
func (r *MutableRecipe) Clone() (*MutableRecipe, map[nodeIndex]nodeIndex) {
	out := New()
	cloneMap := make(map[nodeIndex]nodeIndex, len(r.handles)+len(r.slots)+len(r.particles))

	handleByOld := make(map[nodeIndex]*Handle, len(r.handles))
	for _, h := range r.handles {
		nh := out.AddHandle(h.Fate)
		nh.LocalName = h.LocalName
		nh.Type = h.Type
		nh.Tags = append([]string{}, h.Tags...)
		cloneMap[h.index] = nh.index
		handleByOld[h.index] = nh
	}
	slotByOld := make(map[nodeIndex]*Slot, len(r.slots))
	for _, s := range r.slots {
		ns := out.AddSlot(s.Pattern)
		ns.LocalName = s.LocalName
		ns.Format = s.Format
		cloneMap[s.index] = ns.index
		slotByOld[s.index] = ns
	}
	for _, p := range r.particles {
		np := out.AddParticle(p.Verb)
		np.LocalName = p.LocalName
		cloneMap[p.index] = np.index
		for _, c := range p.Connections {
			var nh *Handle
			if c.Handle != nil {
				nh = handleByOld[c.Handle.index]
			}
			nc := out.Connect(np, c.Name, nh, c.Kind)
			nc.InterfaceTyped = c.InterfaceTyped
		}
		for _, c := range p.SlotConns {
			var ns *Slot
			if c.Slot != nil {
				ns = slotByOld[c.Slot.index]
			}
			out.ConnectSlot(np, c.Name, ns, c.Providing)
		}
	}
	for _, c := range r.constraints {
		out.AddConstraint(&ConnectionConstraint{
			FromParticle:   c.FromParticle,
			ToParticle:     c.ToParticle,
			FromConnection: c.FromConnection,
			ToConnection:   c.ToConnection,
		})
	}
	if r.search != nil {
		out.SetSearch(&Search{Verb: r.search.Verb, Tags: append([]string{}, r.search.Tags...)})
	}
	return out, cloneMap
}

// MergeInto appends a deep copy of other's particles, handles, and slots
// into r, returning the index ranges of the newly appended sub-lists so
// a caller can tell which nodes came from other.
func (r *MutableRecipe) MergeInto(other *MutableRecipe) (newParticles, newHandles, newSlots []nodeIndex) {
	clone, _ := other.Clone()

	handleOffset := len(r.handles)
	for _, h := range clone.handles {
		nh := r.AddHandle(h.Fate)
		nh.LocalName = h.LocalName
		nh.Type = h.Type
		nh.Tags = append([]string{}, h.Tags...)
		newHandles = append(newHandles, nh.index)
	}
	slotOffset := len(r.slots)
	for _, s := range clone.slots {
		ns := r.AddSlot(s.Pattern)
		ns.LocalName = s.LocalName
		ns.Format = s.Format
		newSlots = append(newSlots, ns.index)
	}
	for _, p := range clone.particles {
		np := r.AddParticle(p.Verb)
		np.LocalName = p.LocalName
		newParticles = append(newParticles, np.index)
		for _, c := range p.Connections {
			var nh *Handle
			if c.Handle != nil {
				nh = r.handles[handleOffset+int(c.Handle.index)]
			}
			nc := r.Connect(np, c.Name, nh, c.Kind)
			nc.InterfaceTyped = c.InterfaceTyped
		}
		for _, c := range p.SlotConns {
			var ns *Slot
			if c.Slot != nil {
				ns = r.slots[slotOffset+int(c.Slot.index)]
			}
			r.ConnectSlot(np, c.Name, ns, c.Providing)
		}
	}
	return newParticles, newHandles, newSlots
}

// FrozenRecipe is the sealed, normalized result of MutableRecipe.Normalize.
// Its arenas are never mutated again; ToString and Digest are therefore
// stable for the lifetime of the value.
type FrozenRecipe struct {
	particles   []*Particle
	handles     []*Handle
	slots       []*Slot
	constraints []*ConnectionConstraint
	search      *Search
	localNames  map[nodeIndex]string
}

// IsResolved requires zero remaining ConnectionConstraints, a resolved
// Search (only an absent one counts as resolved), every handle fated, and
// every handle- and slot-connection bound. Obligations are not tracked by
// this type and so are not checked.
func (r *FrozenRecipe) IsResolved() bool {
	if len(r.constraints) != 0 {
		return false
	}
	if !r.search.isResolved() {
		return false
	}
	for _, h := range r.handles {
		if !h.isResolved() {
			return false
		}
	}
	for _, p := range r.particles {
		for _, c := range p.Connections {
			if !c.isResolved() {
				return false
			}
		}
		for _, c := range p.SlotConns {
			if !c.isResolved() {
				return false
			}
		}
	}
	return true
}

// Particles, Handles, and Slots expose read-only views of the sealed
// arenas for callers that need to walk the resolved graph.
func (r *FrozenRecipe) Particles() []*Particle { return r.particles }
func (r *FrozenRecipe) Handles() []*Handle     { return r.handles }
func (r *FrozenRecipe) Slots() []*Slot         { return r.slots }

func (r *FrozenRecipe) String() string { return r.ToString() }

var errAlreadyFrozen = fmt.Errorf("recipe: already frozen")

// ErrInvalidRecipe is returned by Normalize when the recipe fails
// validity checks: duplicate node indices, an empty particle verb, or a
// dangling connection.
type ErrInvalidRecipe struct {
	Reasons []string
}

func (e *ErrInvalidRecipe) Error() string {
	return fmt.Sprintf("recipe: invalid recipe: %s", strings.Join(e.Reasons, "; "))
}

// collectInvalidReasons walks r the same way isValid does, but records
// why rather than short-circuiting on the first failure, so a caller
// fixing a recipe interactively sees every problem at once.
func collectInvalidReasons(r *MutableRecipe) []string {
	var reasons []string
	if hasDuplicateIndex(r.handles) {
		reasons = append(reasons, "duplicate handle index")
	}
	if hasDuplicateSlotIndex(r.slots) {
		reasons = append(reasons, "duplicate slot index")
	}
	for _, p := range r.particles {
		if p.Verb == "" {
			reasons = append(reasons, fmt.Sprintf("particle %d: missing verb", p.index))
			continue
		}
		for _, c := range p.Connections {
			if !c.isValid() {
				reasons = append(reasons, fmt.Sprintf("particle %s: connection %q is dangling", p.Verb, c.Name))
			}
		}
		for _, c := range p.SlotConns {
			if !c.isValid() {
				reasons = append(reasons, fmt.Sprintf("particle %s: slot connection %q is dangling", p.Verb, c.Name))
			}
		}
	}
	if !r.search.isValid() {
		reasons = append(reasons, "search hint has empty verb")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "unknown")
	}
	return reasons
}
