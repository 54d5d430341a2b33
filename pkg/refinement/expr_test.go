package refinement

import (
	"errors"
	"testing"

	"github.com/arcs-core/arcs/pkg/model"
)

func TestBinOpRejectsMismatchedEquality(t *testing.T) {
	num := NumberLit{Value: 1}
	b := BoolLit{Value: true}
	if _, err := NewBinOp(OpEq, num, b); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestBinOpRejectsComparisonOnNonNumber(t *testing.T) {
	a := BoolLit{Value: true}
	b := BoolLit{Value: false}
	if _, err := NewBinOp(OpLt, a, b); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestEvalSimpleComparison(t *testing.T) {
	f, err := NewFieldRef("age", TypeEnv{"age": model.KindNumber})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewBinOp(OpGe, f, NumberLit{Value: 18})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := b.Eval(Record{"age": model.NewNumber(20)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Boolean() {
		t.Fatal("expected age >= 18 to hold for age=20")
	}
}

func TestValidateEntityRejectsFailingRefinement(t *testing.T) {
	f, err := NewFieldRef("age", TypeEnv{"age": model.KindNumber})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ge18, err := NewBinOp(OpGe, f, NumberLit{Value: 18})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	schema := &model.Schema{Refinement: ge18}

	err = ValidateEntity(schema, Record{"age": model.NewNumber(10)})
	if !errors.Is(err, ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}

	err = ValidateEntity(schema, Record{"age": model.NewNumber(30)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
