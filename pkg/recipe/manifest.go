package recipe

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/arcs-core/arcs/pkg/model"
)

// manifestDoc is the assumed YAML shape a recipe manifest is parsed
// from: a flat list of particles, each naming the handles and slots it
// connects to by local name. Handles and slots declared only implicitly
// (referenced by a particle but never given their own top-level entry)
// are synthesized with FateCreate and an empty pattern respectively.
type manifestDoc struct {
	Particles []manifestParticle `yaml:"particles"`
	Handles   []manifestHandle   `yaml:"handles"`
	Slots     []manifestSlot     `yaml:"slots"`
	Search    *manifestSearch    `yaml:"search,omitempty"`
}

type manifestParticle struct {
	Verb        string                   `yaml:"verb"`
	Connections []manifestConnection     `yaml:"connections,omitempty"`
	SlotConns   []manifestSlotConnection `yaml:"slotConnections,omitempty"`
}

type manifestConnection struct {
	Name      string `yaml:"name"`
	Handle    string `yaml:"handle"`
	Kind      string `yaml:"kind"`
	Interface bool   `yaml:"interface,omitempty"`
}

type manifestSlotConnection struct {
	Name      string `yaml:"name"`
	Slot      string `yaml:"slot"`
	Providing bool   `yaml:"providing,omitempty"`
}

type manifestHandle struct {
	Name string   `yaml:"name"`
	Fate string   `yaml:"fate"`
	Type string   `yaml:"type,omitempty"`
	Tags []string `yaml:"tags,omitempty"`
}

type manifestSlot struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern,omitempty"`
	Format  string `yaml:"format,omitempty"`
}

type manifestSearch struct {
	Verb string   `yaml:"verb"`
	Tags []string `yaml:"tags,omitempty"`
}

// FromManifest parses a YAML recipe manifest into a MutableRecipe ready
// for validation and Normalize. Handles and slots are resolved by the
// local name used to declare them; a connection referencing a name with
// no top-level declaration gets an implicit FateCreate handle (or
// pattern-less slot) of its own.
func FromManifest(data []byte) (*MutableRecipe, error) {
	var doc manifestDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("recipe: parsing manifest: %w", err)
	}

	r := New()
	handlesByName := make(map[string]*Handle, len(doc.Handles))
	for _, mh := range doc.Handles {
		h := r.AddHandle(parseFate(mh.Fate))
		h.LocalName = mh.Name
		h.Type = parseFieldType(mh.Type)
		h.Tags = mh.Tags
		handlesByName[mh.Name] = h
	}
	slotsByName := make(map[string]*Slot, len(doc.Slots))
	for _, ms := range doc.Slots {
		s := r.AddSlot(ms.Pattern)
		s.LocalName = ms.Name
		s.Format = ms.Format
		slotsByName[ms.Name] = s
	}

	for _, mp := range doc.Particles {
		p := r.AddParticle(mp.Verb)
		for _, mc := range mp.Connections {
			h, ok := handlesByName[mc.Handle]
			if !ok {
				h = r.AddHandle(FateCreate)
				h.LocalName = mc.Handle
				handlesByName[mc.Handle] = h
			}
			c := r.Connect(p, mc.Name, h, parseConnectionKind(mc.Kind))
			c.InterfaceTyped = mc.Interface
		}
		for _, mc := range mp.SlotConns {
			s, ok := slotsByName[mc.Slot]
			if !ok {
				s = r.AddSlot("")
				s.LocalName = mc.Slot
				slotsByName[mc.Slot] = s
			}
			r.ConnectSlot(p, mc.Name, s, mc.Providing)
		}
	}

	if doc.Search != nil {
		r.SetSearch(&Search{Verb: doc.Search.Verb, Tags: doc.Search.Tags})
	}

	return r, nil
}

// parseFate maps the manifest's fate strings onto HandleFate. Anything
// unrecognized — including the empty string and the "?" sentinel
// itself — stays FateUnknown rather than collapsing into FateCreate, so
// an unfated handle reads back as unresolved.
func parseFate(s string) HandleFate {
	switch s {
	case "use":
		return FateUse
	case "map":
		return FateMap
	case "copy":
		return FateCopy
	case "create":
		return FateCreate
	case "create-with-tags", "createWithTags":
		return FateCreateTags
	default:
		return FateUnknown
	}
}

func parseFieldType(s string) model.FieldType {
	switch s {
	case "Number":
		return model.KindNumber
	case "Boolean":
		return model.KindBoolean
	default:
		return model.KindText
	}
}

func parseConnectionKind(s string) ConnectionKind {
	switch s {
	case "writes":
		return ConnWrite
	case "reads writes", "readwrite":
		return ConnReadWrite
	default:
		return ConnRead
	}
}
