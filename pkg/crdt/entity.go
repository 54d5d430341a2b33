package crdt

import (
	"golang.org/x/exp/slices"

	"github.com/arcs-core/arcs/pkg/model"
	"github.com/arcs-core/arcs/pkg/vv"
)

// Entity is a CRDT record whose fields are each either a
// Singleton[model.Primitive] or a Collection[model.Primitive]. Every
// operation targets exactly one named field.
type Entity struct {
	singletons map[string]*Singleton[model.Primitive]
	collections map[string]*Collection[model.Primitive]
	schema      *model.Schema
}

// NewEntity returns an empty Entity shaped by schema: every singleton and
// collection field named in schema starts out empty, and operations
// against fields not named in schema are rejected.
func NewEntity(schema *model.Schema) *Entity {
	e := &Entity{
		singletons:  make(map[string]*Singleton[model.Primitive], len(schema.Singletons)),
		collections: make(map[string]*Collection[model.Primitive], len(schema.Collections)),
		schema:      schema,
	}
	for name := range schema.Singletons {
		e.singletons[name] = NewSingleton[model.Primitive]()
	}
	for name := range schema.Collections {
		e.collections[name] = NewCollection[model.Primitive]()
	}
	return e
}

// FieldOperation targets a single named field of an Entity with the
// underlying Singleton/Collection operation.
type FieldOperation struct {
	actorField
	Field string
	Inner Operation
}

var _ Operation = FieldOperation{}

// ApplyOperation implements Model, routing to the named field's own
// Singleton or Collection. Returns false if the field doesn't exist or
// the inner operation is rejected by that field's model.
func (e *Entity) ApplyOperation(op Operation) (bool, error) {
	fo, ok := op.(FieldOperation)
	if !ok {
		panic("crdt: Entity.ApplyOperation: expected FieldOperation")
	}
	if s, ok := e.singletons[fo.Field]; ok {
		return s.ApplyOperation(fo.Inner)
	}
	if c, ok := e.collections[fo.Field]; ok {
		return c.ApplyOperation(fo.Inner)
	}
	return false, nil
}

// EntityData is the wire-visible state of an Entity: one CRDT Data() per
// field, keyed by field name.
type EntityData struct {
	Singletons  map[string]any
	Collections map[string]any
}

// Data implements Model.
func (e *Entity) Data() any {
	d := EntityData{
		Singletons:  make(map[string]any, len(e.singletons)),
		Collections: make(map[string]any, len(e.collections)),
	}
	for name, s := range e.singletons {
		d.Singletons[name] = s.Data()
	}
	for name, c := range e.collections {
		d.Collections[name] = c.Data()
	}
	return d
}

// ParticleView implements Model, returning a model.EntityView: a plain
// map of field name to the field's particle-visible value.
func (e *Entity) ParticleView() any {
	view := model.EntityView{
		Singletons:  make(map[string]model.Primitive, len(e.singletons)),
		Collections: make(map[string][]model.Primitive, len(e.collections)),
	}
	for name, s := range e.singletons {
		if v, ok := s.Get(); ok {
			view.Singletons[name] = v
		}
	}
	for name, c := range e.collections {
		view.Collections[name] = c.Values()
	}
	return view
}

// View is a typed convenience wrapper around ParticleView.
func (e *Entity) View() model.EntityView { return e.ParticleView().(model.EntityView) }

// Version returns the merge of every field's version vector: the point
// in causal time this entity's state, taken as a whole, has reached.
func (e *Entity) Version() vv.VersionVector {
	out := vv.New()
	for _, s := range e.singletons {
		out = out.Merge(s.Version())
	}
	for _, c := range e.collections {
		out = out.Merge(c.Version())
	}
	return out
}

// Merge reconciles e with other field by field, returning the merged
// per-field deltas. Both entities must share the same schema (the caller
// is responsible for that — Entity itself has no notion of schema
// compatibility checking beyond matching field names).
func (e *Entity) Merge(other *Entity) (map[string]Delta, error) {
	out := make(map[string]Delta)
	names := make([]string, 0, len(e.singletons)+len(e.collections))
	for n := range e.singletons {
		names = append(names, n)
	}
	for n := range e.collections {
		names = append(names, n)
	}
	slices.Sort(names)

	for _, name := range names {
		if s, ok := e.singletons[name]; ok {
			os, ok := other.singletons[name]
			if !ok {
				continue
			}
			out[name] = mergeSingleton(s, os)
			continue
		}
		if c, ok := e.collections[name]; ok {
			oc, ok := other.collections[name]
			if !ok {
				continue
			}
			out[name] = c.Merge(oc)
		}
	}
	return out, nil
}

// mergeSingleton merges field-level Singletons using the same
// causally-maximal-set reasoning ApplyOperation's Add path uses, since
// Singleton has no dedicated Merge method of its own (its state is a
// clocked set just like Collection's, so reuse the set union then
// recollapse).
func mergeSingleton(s, other *Singleton[model.Primitive]) Delta {
	var delta Delta
	thisHas := make(map[string]Elem[model.Primitive], len(s.elems))
	for _, el := range s.elems {
		thisHas[elemSigKey(el)] = el
	}
	otherHas := make(map[string]Elem[model.Primitive], len(other.elems))
	for _, el := range other.elems {
		otherHas[elemSigKey(el)] = el
	}
	for k, el := range thisHas {
		if _, ok := otherHas[k]; !ok {
			delta.OtherChange = append(delta.OtherChange, SetAdd[model.Primitive]{
				actorField: actorField{Actor: maxActor(el.clock)}, Clock: el.clock, Value: el.Value,
			})
		}
	}
	for k, el := range otherHas {
		if _, ok := thisHas[k]; !ok {
			s.elems = append(s.elems, el)
			delta.ThisChange = append(delta.ThisChange, SetAdd[model.Primitive]{
				actorField: actorField{Actor: maxActor(el.clock)}, Clock: el.clock, Value: el.Value,
			})
		}
	}
	s.version = s.version.Merge(other.version)
	s.collapse()
	return delta
}

func elemSigKey(e Elem[model.Primitive]) string {
	a := maxActor(e.clock)
	return a + "@" + e.Value.String()
}
