package recipe

import (
	"fmt"
	"strings"
)

// ToString renders r in a canonical textual form: particles, each
// followed by its handle- and slot-connections in normalization order,
// then any unresolved ConnectionConstraints and the Search hint.
//
// Two FrozenRecipes produced by Normalize from graphs that differ only
// in original node order or in synthetic local-name assignment render
// identically, since Normalize has already fixed both before ToString
// runs.
func (r *FrozenRecipe) ToString() string {
	var b strings.Builder
	for _, p := range r.particles {
		fmt.Fprintf(&b, "particle %s as %s\n", p.Verb, p.LocalName)
		for _, c := range p.Connections {
			fmt.Fprintf(&b, "  %s %s %s\n", connectionKindString(c.Kind), c.Name, handleRef(r, c.Handle))
		}
		for _, c := range p.SlotConns {
			dir := "consume"
			if c.Providing {
				dir = "provide"
			}
			fmt.Fprintf(&b, "  %s %s %s\n", dir, c.Name, slotRef(r, c.Slot))
		}
	}
	if len(r.constraints) > 0 {
		b.WriteString("constraints\n")
		for _, c := range r.constraints {
			fmt.Fprintf(&b, "  %s.%s == %s.%s\n", c.FromParticle, c.FromConnection, c.ToParticle, c.ToConnection)
		}
	}
	if r.search != nil {
		fmt.Fprintf(&b, "search %s %s\n", r.search.Verb, strings.Join(r.search.Tags, ","))
	}
	return b.String()
}

func connectionKindString(k ConnectionKind) string {
	switch k {
	case ConnRead:
		return "reads"
	case ConnWrite:
		return "writes"
	case ConnReadWrite:
		return "reads writes"
	default:
		return "?"
	}
}

func handleRef(r *FrozenRecipe, h *Handle) string {
	if h == nil {
		return "<unbound>"
	}
	return h.LocalName
}

func slotRef(r *FrozenRecipe, s *Slot) string {
	if s == nil {
		return "<unbound>"
	}
	return s.LocalName
}
