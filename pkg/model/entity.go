package model

// EntityView is the particle-visible projection of a CRDT Entity: plain
// values, no clocks or version vectors.
type EntityView struct {
	Singletons  map[string]Primitive
	Collections map[string][]Primitive
}

// EntityData is the particle-facing wire shape carried by a ModelUpdate
// ProxyMessage: one entity's field values, addressed by ReferenceId. This
// is the "refModeData" payload referenced by spec §4.C — a map from
// ReferenceId to the fields a proxy wants written, decomposed by the
// ReferenceModeStore into backing-store operations plus a container
// Reference.
type EntityData struct {
	ID          ReferenceId
	Singletons  map[string]Primitive
	Collections map[string][]Primitive
}
