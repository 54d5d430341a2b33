// Package refinement implements the boolean/arithmetic expression algebra
// used to restrict the admissible values of a schema field or whole
// entity: construction-time type checking, idempotent normalization, and
// range derivation over a univariate numeric predicate.
package refinement

import (
	"errors"
	"fmt"

	"github.com/arcs-core/arcs/pkg/model"
)

// ErrInvalid covers a predicate that fails type-checking at construction
// or produces a non-Boolean result where a Boolean was required.
var ErrInvalid = errors.New("refinement: invalid predicate")

// ErrSchemaViolation is raised by ValidateEntity/validateData when a
// record fails its refinement predicate.
var ErrSchemaViolation = errors.New("refinement: entity fails refinement")

// BinOpKind enumerates the binary operators a BinOp node may carry.
type BinOpKind int

const (
	OpAnd BinOpKind = iota
	OpOr
	OpLt
	OpGt
	OpLe
	OpGe
	OpEq
	OpNeq
	OpAdd
	OpSub
	OpMul
	OpDiv
)

func (k BinOpKind) String() string {
	switch k {
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpLt:
		return "<"
	case OpGt:
		return ">"
	case OpLe:
		return "<="
	case OpGe:
		return ">="
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

func (k BinOpKind) isComparison() bool {
	switch k {
	case OpLt, OpGt, OpLe, OpGe:
		return true
	default:
		return false
	}
}

func (k BinOpKind) isArithmetic() bool {
	switch k {
	case OpAdd, OpSub, OpMul, OpDiv:
		return true
	default:
		return false
	}
}

func (k BinOpKind) isLogical() bool { return k == OpAnd || k == OpOr }
func (k BinOpKind) isEquality() bool { return k == OpEq || k == OpNeq }

// UnOpKind enumerates the unary operators a UnOp node may carry.
type UnOpKind int

const (
	OpNot UnOpKind = iota
	OpNeg
)

func (k UnOpKind) String() string {
	if k == OpNot {
		return "not"
	}
	return "neg"
}

// Record is the field-value environment an Expr is evaluated against.
type Record map[string]model.Primitive

// TypeEnv maps field names to their statically declared Kind, used to
// type-check a FieldRef at construction time.
type TypeEnv map[string]model.Kind

// Expr is a node in a refinement predicate's expression tree.
type Expr interface {
	// EvalType is the statically derived type of this node's result.
	EvalType() model.Kind
	// Eval substitutes field values from rec and computes this node's
	// value, failing if rec is missing a referenced field.
	Eval(rec Record) (model.Primitive, error)
	// children returns this node's operands, for generic tree walks.
	children() []Expr
	// String renders the node in canonical infix form.
	String() string
}

// NumberLit is a constant Number leaf.
type NumberLit struct{ Value float64 }

func (n NumberLit) EvalType() model.Kind                 { return model.KindNumber }
func (n NumberLit) Eval(Record) (model.Primitive, error) { return model.NewNumber(n.Value), nil }
func (n NumberLit) children() []Expr                     { return nil }
func (n NumberLit) String() string                       { return fmt.Sprintf("%g", n.Value) }

// BoolLit is a constant Boolean leaf.
type BoolLit struct{ Value bool }

func (b BoolLit) EvalType() model.Kind                 { return model.KindBoolean }
func (b BoolLit) Eval(Record) (model.Primitive, error) { return model.NewBoolean(b.Value), nil }
func (b BoolLit) children() []Expr                     { return nil }
func (b BoolLit) String() string                       { return fmt.Sprintf("%t", b.Value) }

// FieldRef is a reference to a named record field, whose type is resolved
// once from a TypeEnv at construction time.
type FieldRef struct {
	Name string
	Type model.Kind
}

// NewFieldRef resolves name's type from env, failing if it is not declared.
func NewFieldRef(name string, env TypeEnv) (FieldRef, error) {
	t, ok := env[name]
	if !ok {
		return FieldRef{}, fmt.Errorf("%w: field %q is not declared in scope", ErrInvalid, name)
	}
	return FieldRef{Name: name, Type: t}, nil
}

func (f FieldRef) EvalType() model.Kind { return f.Type }

func (f FieldRef) Eval(rec Record) (model.Primitive, error) {
	v, ok := rec[f.Name]
	if !ok {
		return model.Primitive{}, fmt.Errorf("%w: record has no value for field %q", ErrInvalid, f.Name)
	}
	return v, nil
}

func (f FieldRef) children() []Expr { return nil }
func (f FieldRef) String() string   { return f.Name }

// BinOp is a binary operator node. Its evalType and operand types are
// fixed at construction: NewBinOp rejects any combination the operator
// does not support.
type BinOp struct {
	Op          BinOpKind
	Left, Right Expr
	evalType    model.Kind
}

// NewBinOp type-checks left/right against op's signature and returns the
// resulting node, or ErrInvalid if the operands don't fit.
func NewBinOp(op BinOpKind, left, right Expr) (BinOp, error) {
	lt, rt := left.EvalType(), right.EvalType()
	switch {
	case op.isLogical():
		if lt != model.KindBoolean || rt != model.KindBoolean {
			return BinOp{}, fmt.Errorf("%w: %s requires Boolean operands, got %s and %s", ErrInvalid, op, lt, rt)
		}
		return BinOp{Op: op, Left: left, Right: right, evalType: model.KindBoolean}, nil
	case op.isComparison():
		if lt != model.KindNumber || rt != model.KindNumber {
			return BinOp{}, fmt.Errorf("%w: %s requires Number operands, got %s and %s", ErrInvalid, op, lt, rt)
		}
		return BinOp{Op: op, Left: left, Right: right, evalType: model.KindBoolean}, nil
	case op.isEquality():
		if lt != rt {
			return BinOp{}, fmt.Errorf("%w: %s requires same-type operands, got %s and %s", ErrInvalid, op, lt, rt)
		}
		return BinOp{Op: op, Left: left, Right: right, evalType: model.KindBoolean}, nil
	case op.isArithmetic():
		if lt != model.KindNumber || rt != model.KindNumber {
			return BinOp{}, fmt.Errorf("%w: %s requires Number operands, got %s and %s", ErrInvalid, op, lt, rt)
		}
		return BinOp{Op: op, Left: left, Right: right, evalType: model.KindNumber}, nil
	default:
		return BinOp{}, fmt.Errorf("%w: unknown operator", ErrInvalid)
	}
}

func (b BinOp) EvalType() model.Kind { return b.evalType }

func (b BinOp) Eval(rec Record) (model.Primitive, error) {
	lv, err := b.Left.Eval(rec)
	if err != nil {
		return model.Primitive{}, err
	}
	rv, err := b.Right.Eval(rec)
	if err != nil {
		return model.Primitive{}, err
	}
	switch {
	case b.Op.isLogical():
		switch b.Op {
		case OpAnd:
			return model.NewBoolean(lv.Boolean() && rv.Boolean()), nil
		default:
			return model.NewBoolean(lv.Boolean() || rv.Boolean()), nil
		}
	case b.Op.isComparison():
		ln, rn := lv.Number(), rv.Number()
		var res bool
		switch b.Op {
		case OpLt:
			res = ln < rn
		case OpGt:
			res = ln > rn
		case OpLe:
			res = ln <= rn
		case OpGe:
			res = ln >= rn
		}
		return model.NewBoolean(res), nil
	case b.Op.isEquality():
		eq := lv.Equal(rv)
		if b.Op == OpNeq {
			eq = !eq
		}
		return model.NewBoolean(eq), nil
	case b.Op.isArithmetic():
		ln, rn := lv.Number(), rv.Number()
		var res float64
		switch b.Op {
		case OpAdd:
			res = ln + rn
		case OpSub:
			res = ln - rn
		case OpMul:
			res = ln * rn
		case OpDiv:
			res = ln / rn
		}
		return model.NewNumber(res), nil
	}
	return model.Primitive{}, fmt.Errorf("%w: unreachable operator %s", ErrInvalid, b.Op)
}

func (b BinOp) children() []Expr { return []Expr{b.Left, b.Right} }
func (b BinOp) String() string   { return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right) }

// UnOp is a unary operator node.
type UnOp struct {
	Op       UnOpKind
	Operand  Expr
	evalType model.Kind
}

// NewUnOp type-checks operand against op's signature.
func NewUnOp(op UnOpKind, operand Expr) (UnOp, error) {
	t := operand.EvalType()
	switch op {
	case OpNot:
		if t != model.KindBoolean {
			return UnOp{}, fmt.Errorf("%w: not requires a Boolean operand, got %s", ErrInvalid, t)
		}
		return UnOp{Op: op, Operand: operand, evalType: model.KindBoolean}, nil
	case OpNeg:
		if t != model.KindNumber {
			return UnOp{}, fmt.Errorf("%w: neg requires a Number operand, got %s", ErrInvalid, t)
		}
		return UnOp{Op: op, Operand: operand, evalType: model.KindNumber}, nil
	default:
		return UnOp{}, fmt.Errorf("%w: unknown unary operator", ErrInvalid)
	}
}

func (u UnOp) EvalType() model.Kind { return u.evalType }

func (u UnOp) Eval(rec Record) (model.Primitive, error) {
	v, err := u.Operand.Eval(rec)
	if err != nil {
		return model.Primitive{}, err
	}
	if u.Op == OpNot {
		return model.NewBoolean(!v.Boolean()), nil
	}
	return model.NewNumber(-v.Number()), nil
}

func (u UnOp) children() []Expr { return []Expr{u.Operand} }
func (u UnOp) String() string   { return fmt.Sprintf("%s(%s)", u.Op, u.Operand) }

// ValidateEntity evaluates schema's whole-entity refinement (if any)
// against rec, raising ErrSchemaViolation if it evaluates to false and
// ErrInvalid if it fails to type-check or returns a non-Boolean result.
func ValidateEntity(schema *model.Schema, rec Record) error {
	if schema.Refinement == nil {
		return nil
	}
	expr, ok := schema.Refinement.(Expr)
	if !ok {
		return fmt.Errorf("%w: schema refinement is not a refinement.Expr", ErrInvalid)
	}
	return validateData(expr, rec)
}

func validateData(e Expr, rec Record) error {
	if e.EvalType() != model.KindBoolean {
		return fmt.Errorf("%w: refinement must evaluate to Boolean, got %s", ErrInvalid, e.EvalType())
	}
	v, err := e.Eval(rec)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !v.Boolean() {
		return ErrSchemaViolation
	}
	return nil
}
