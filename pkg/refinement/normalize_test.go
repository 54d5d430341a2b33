package refinement

import (
	"testing"

	"github.com/arcs-core/arcs/pkg/model"
)

func TestNormalizeFoldsConstants(t *testing.T) {
	e, err := NewBinOp(OpAdd, NumberLit{Value: 2}, NumberLit{Value: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := Normalize(e)
	lit, ok := got.(NumberLit)
	if !ok || lit.Value != 5 {
		t.Fatalf("got %v, want NumberLit{5}", got)
	}
}

func TestNormalizeAppliesAndIdentity(t *testing.T) {
	f, err := NewFieldRef("x", TypeEnv{"x": model.KindBoolean})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, err := NewBinOp(OpAnd, f, BoolLit{Value: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := Normalize(e)
	if _, ok := got.(FieldRef); !ok {
		t.Fatalf("got %v, want x AND true to normalize to x", got)
	}
}

func TestNormalizeAppliesOrIdentity(t *testing.T) {
	f, err := NewFieldRef("x", TypeEnv{"x": model.KindBoolean})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, err := NewBinOp(OpOr, f, BoolLit{Value: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := Normalize(e)
	if _, ok := got.(FieldRef); !ok {
		t.Fatalf("got %v, want x OR false to normalize to x", got)
	}
}

func TestNormalizeCollapsesDoubleNegation(t *testing.T) {
	f, err := NewFieldRef("x", TypeEnv{"x": model.KindBoolean})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	notX, err := NewUnOp(OpNot, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	notNotX, err := NewUnOp(OpNot, notX)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := Normalize(notNotX)
	if _, ok := got.(FieldRef); !ok {
		t.Fatalf("got %v, want NOT NOT x to normalize to x", got)
	}
}

func TestNormalizeCanonicalizesComparisonDirection(t *testing.T) {
	f, err := NewFieldRef("age", TypeEnv{"age": model.KindNumber})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 18 < age  should canonicalize to  age > 18
	e, err := NewBinOp(OpLt, NumberLit{Value: 18}, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := Normalize(e)
	b, ok := got.(BinOp)
	if !ok {
		t.Fatalf("got %v, want a BinOp", got)
	}
	if _, ok := b.Left.(FieldRef); !ok {
		t.Fatalf("expected the field to be canonicalized onto the left, got %v", b)
	}
	if b.Op != OpGt {
		t.Fatalf("expected the comparison to flip to >, got %s", b.Op)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	f, err := NewFieldRef("age", TypeEnv{"age": model.KindNumber})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, err := NewBinOp(OpGe, f, NumberLit{Value: 18})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	once := Normalize(e)
	twice := Normalize(once)
	if once.String() != twice.String() {
		t.Fatalf("normalize is not idempotent: %s != %s", once, twice)
	}
}
