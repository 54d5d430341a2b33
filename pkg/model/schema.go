package model

// FieldType names a field's primitive type in a Schema.
type FieldType = Kind

// Schema describes an entity's shape: the field names and their primitive
// types, split between singleton fields and collection fields, plus an
// optional whole-entity refinement predicate and a content hash used for
// identity/caching.
//
// The refinement predicate itself is typed as `any` here (rather than
// importing pkg/refinement.Expr) to keep model free of a dependency on
// refinement; pkg/refinement provides the concrete Expr implementation and
// a ValidateEntity(schema, record) helper that performs the type assertion.
type Schema struct {
	Names       []string
	Singletons  map[string]FieldType
	Collections map[string]FieldType
	Refinement  any
	Hash        string
}

// FieldKind reports the Kind of a named field and whether it is declared
// as a singleton or a collection. ok is false if the field is not part of
// the schema at all.
func (s *Schema) FieldKind(name string) (kind FieldType, isCollection bool, ok bool) {
	if k, found := s.Singletons[name]; found {
		return k, false, true
	}
	if k, found := s.Collections[name]; found {
		return k, true, true
	}
	return 0, false, false
}
