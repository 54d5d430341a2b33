// Package recipe implements the recipe graph: a static composition
// artifact of Particle, Handle, Slot, and ConnectionConstraint nodes that
// wires particles to stores and to each other, plus the deterministic
// normalization, validity, resolution, and digest operations a runtime
// needs to treat two textually-equal recipes as identical.
package recipe

import "github.com/arcs-core/arcs/pkg/model"

// nodeIndex is a node's stable position within its arena. It never
// changes once assigned, even across normalization, so _copyInto can
// rebuild cross-references between an old recipe's nodes and a new
// recipe's nodes purely from index bookkeeping.
type nodeIndex int

// Particle is a unit of behavior connected to zero or more Handles (for
// data) and Slots (for UI composition).
type Particle struct {
	index       nodeIndex
	LocalName   string
	Verb        string
	Connections []*HandleConnection
	SlotConns   []*SlotConnection
}

func (p *Particle) isValid() bool {
	if p.Verb == "" {
		return false
	}
	for _, c := range p.Connections {
		if !c.isValid() {
			return false
		}
	}
	for _, c := range p.SlotConns {
		if !c.isValid() {
			return false
		}
	}
	return true
}

// Handle is a named store connection point: a recipe-level placeholder
// that a runtime binds to an actual store at activation.
type Handle struct {
	index     nodeIndex
	LocalName string
	Fate      HandleFate
	Type      model.FieldType
	Tags      []string
}

// HandleFate describes how a Handle's backing store should be obtained.
type HandleFate int

const (
	// FateUnknown is the "?" fate: not yet determined, so the handle is
	// unresolved.
	FateUnknown HandleFate = iota
	// FateUse means the handle must bind to an existing store.
	FateUse
	// FateMap means the handle aliases another handle's store.
	FateMap
	// FateCopy means the handle's store is copied from another store at
	// activation, rather than aliased to it.
	FateCopy
	// FateCreate means a fresh store should be created for this handle.
	FateCreate
	// FateCreateTags is FateCreate scoped by the handle's Tags: the
	// fresh store is stamped with every tag in Tags.
	FateCreateTags
)

func (h *Handle) isValid() bool    { return true }
func (h *Handle) isResolved() bool { return h.Fate != FateUnknown }

// Slot is a named UI composition point a particle can render into or
// provide for another particle's use.
type Slot struct {
	index     nodeIndex
	LocalName string
	Pattern   string
	Format    string
}

func (s *Slot) isValid() bool { return true }

// ConnectionKind distinguishes a HandleConnection's direction.
type ConnectionKind int

const (
	ConnRead ConnectionKind = iota
	ConnWrite
	ConnReadWrite
)

// HandleConnection is a named edge from a Particle to a Handle.
type HandleConnection struct {
	Name   string
	Handle *Handle
	Kind   ConnectionKind
	// InterfaceTyped connections resolve against a particle interface
	// rather than a concrete handle type; the eight-step normalization
	// sorts them last within their particle for resolver stability.
	InterfaceTyped bool
}

func (c *HandleConnection) isValid() bool { return c.Name != "" && c.Handle != nil }
func (c *HandleConnection) isResolved() bool {
	return c.Handle != nil && c.Handle.isResolved()
}

// SlotConnection is a named edge from a Particle to a Slot: either
// consuming a slot to render into, or providing a slot for another
// particle to consume.
type SlotConnection struct {
	Name      string
	Slot      *Slot
	Providing bool
}

func (c *SlotConnection) isValid() bool { return c.Name != "" && c.Slot != nil }
func (c *SlotConnection) isResolved() bool { return c.Slot != nil }

// ConnectionConstraint records an unresolved requirement ("particle A's
// connection X must bind to the same handle as particle B's connection
// Y") that resolution is expected to discharge before a recipe is
// considered resolved.
type ConnectionConstraint struct {
	FromParticle, ToParticle string
	FromConnection, ToConnection string
}
