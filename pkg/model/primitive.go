// Package model defines the shared domain types referenced by every other
// package: the particle-facing Entity/Schema/Reference shapes, the
// Actor/ReferenceId/StorageKey identifiers, and the ProxyMessage wire
// union. It depends on nothing else in this module so that pkg/crdt,
// pkg/refinement, pkg/store, and pkg/recipe can all reference it without
// import cycles.
package model

import (
	"encoding/json"
	"fmt"
)

// Kind enumerates the primitive field types a schema can declare.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindNumber:
		return "Number"
	case KindBoolean:
		return "Boolean"
	default:
		return "Unknown"
	}
}

// Primitive is a dynamically-typed field value: exactly one of Text,
// Number, or Boolean is meaningful, selected by Kind. Per the "dynamic
// typing in AST nodes" design note, a typed implementation models this as
// a sum type and fails construction rather than coercing between
// variants — NewText/NewNumber/NewBoolean are the only constructors and
// each pins Kind, so a Primitive can never be asked for the wrong
// variant's accessor to succeed silently.
type Primitive struct {
	kind Kind
	text string
	num  float64
	b    bool
}

// NewText constructs a Text primitive.
func NewText(s string) Primitive { return Primitive{kind: KindText, text: s} }

// NewNumber constructs a Number primitive.
func NewNumber(n float64) Primitive { return Primitive{kind: KindNumber, num: n} }

// NewBoolean constructs a Boolean primitive.
func NewBoolean(b bool) Primitive { return Primitive{kind: KindBoolean, b: b} }

// Kind reports which variant is populated.
func (p Primitive) Kind() Kind { return p.kind }

// Text returns the text value, panicking if Kind() != KindText. Callers
// that don't control construction should check Kind first.
func (p Primitive) Text() string {
	if p.kind != KindText {
		panic(fmt.Sprintf("model: Primitive.Text called on a %s value", p.kind))
	}
	return p.text
}

// Number returns the numeric value, panicking if Kind() != KindNumber.
func (p Primitive) Number() float64 {
	if p.kind != KindNumber {
		panic(fmt.Sprintf("model: Primitive.Number called on a %s value", p.kind))
	}
	return p.num
}

// Boolean returns the boolean value, panicking if Kind() != KindBoolean.
func (p Primitive) Boolean() bool {
	if p.kind != KindBoolean {
		panic(fmt.Sprintf("model: Primitive.Boolean called on a %s value", p.kind))
	}
	return p.b
}

// Equal reports whether p and other carry the same kind and value.
func (p Primitive) Equal(other Primitive) bool {
	if p.kind != other.kind {
		return false
	}
	switch p.kind {
	case KindText:
		return p.text == other.text
	case KindNumber:
		return p.num == other.num
	case KindBoolean:
		return p.b == other.b
	default:
		return false
	}
}

// String renders p for logging/CLI output.
func (p Primitive) String() string {
	switch p.kind {
	case KindText:
		return p.text
	case KindNumber:
		return fmt.Sprintf("%g", p.num)
	case KindBoolean:
		return fmt.Sprintf("%t", p.b)
	default:
		return "<invalid>"
	}
}

// primitiveWire is the JSON-visible shape of a Primitive: Kind plus
// whichever single field is meaningful for it.
type primitiveWire struct {
	Kind Kind    `json:"kind"`
	Text string  `json:"text,omitempty"`
	Num  float64 `json:"num,omitempty"`
	Bool bool    `json:"bool,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (p Primitive) MarshalJSON() ([]byte, error) {
	return json.Marshal(primitiveWire{Kind: p.kind, Text: p.text, Num: p.num, Bool: p.b})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Primitive) UnmarshalJSON(data []byte) error {
	var w primitiveWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p.kind, p.text, p.num, p.b = w.Kind, w.Text, w.Num, w.Bool
	return nil
}
