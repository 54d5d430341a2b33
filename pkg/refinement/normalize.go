package refinement

import "github.com/arcs-core/arcs/pkg/model"

// Normalize rewrites e into an idempotent canonical form: pure-primitive
// subtrees are constant-folded, comparisons are canonicalized so the
// FieldRef sits on the left (flipping the operator as needed), and
// logical identity laws are applied. Calling Normalize again on the
// result is a no-op.
func Normalize(e Expr) Expr {
	switch n := e.(type) {
	case BinOp:
		return normalizeBinOp(n)
	case UnOp:
		return normalizeUnOp(n)
	default:
		return e
	}
}

func normalizeUnOp(n UnOp) Expr {
	operand := Normalize(n.Operand)
	if n.Op == OpNot {
		if inner, ok := operand.(UnOp); ok && inner.Op == OpNot {
			return inner.Operand
		}
		if lit, ok := operand.(BoolLit); ok {
			return BoolLit{Value: !lit.Value}
		}
	}
	if n.Op == OpNeg {
		if lit, ok := operand.(NumberLit); ok {
			return NumberLit{Value: -lit.Value}
		}
	}
	out := n
	out.Operand = operand
	return out
}

func normalizeBinOp(n BinOp) Expr {
	left := Normalize(n.Left)
	right := Normalize(n.Right)

	if n.Op.isLogical() {
		if folded, ok := foldLogicalIdentity(n.Op, left, right); ok {
			return folded
		}
	}

	if lv, rv, ok := constOperands(left, right); ok {
		if folded, ok := foldConstants(n.Op, lv, rv); ok {
			return folded
		}
	}

	if n.Op.isComparison() {
		// Canonicalize so a FieldRef sits on the left, flipping the
		// comparison operator to preserve meaning.
		if _, leftIsField := left.(FieldRef); !leftIsField {
			if _, rightIsField := right.(FieldRef); rightIsField {
				return BinOp{Op: flipComparison(n.Op), Left: right, Right: left, evalType: n.evalType}
			}
		}
	}

	out := n
	out.Left, out.Right = left, right
	return out
}

func flipComparison(op BinOpKind) BinOpKind {
	switch op {
	case OpLt:
		return OpGt
	case OpGt:
		return OpLt
	case OpLe:
		return OpGe
	case OpGe:
		return OpLe
	default:
		return op
	}
}

func foldLogicalIdentity(op BinOpKind, left, right Expr) (Expr, bool) {
	lLit, lOK := left.(BoolLit)
	rLit, rOK := right.(BoolLit)
	if op == OpAnd {
		if lOK && !lLit.Value {
			return BoolLit{Value: false}, true
		}
		if rOK && !rLit.Value {
			return BoolLit{Value: false}, true
		}
		if lOK && lLit.Value {
			return right, true
		}
		if rOK && rLit.Value {
			return left, true
		}
	}
	if op == OpOr {
		if lOK && lLit.Value {
			return BoolLit{Value: true}, true
		}
		if rOK && rLit.Value {
			return BoolLit{Value: true}, true
		}
		if lOK && !lLit.Value {
			return right, true
		}
		if rOK && !rLit.Value {
			return left, true
		}
	}
	return nil, false
}

func constOperands(left, right Expr) (model.Primitive, model.Primitive, bool) {
	lv, lok := constValue(left)
	rv, rok := constValue(right)
	if lok && rok {
		return lv, rv, true
	}
	return model.Primitive{}, model.Primitive{}, false
}

func constValue(e Expr) (model.Primitive, bool) {
	switch n := e.(type) {
	case NumberLit:
		return model.NewNumber(n.Value), true
	case BoolLit:
		return model.NewBoolean(n.Value), true
	default:
		return model.Primitive{}, false
	}
}

func foldConstants(op BinOpKind, lv, rv model.Primitive) (Expr, bool) {
	switch {
	case op.isArithmetic():
		ln, rn := lv.Number(), rv.Number()
		var res float64
		switch op {
		case OpAdd:
			res = ln + rn
		case OpSub:
			res = ln - rn
		case OpMul:
			res = ln * rn
		case OpDiv:
			res = ln / rn
		}
		return NumberLit{Value: res}, true
	case op.isComparison():
		ln, rn := lv.Number(), rv.Number()
		var res bool
		switch op {
		case OpLt:
			res = ln < rn
		case OpGt:
			res = ln > rn
		case OpLe:
			res = ln <= rn
		case OpGe:
			res = ln >= rn
		}
		return BoolLit{Value: res}, true
	case op.isEquality():
		eq := lv.Equal(rv)
		if op == OpNeq {
			eq = !eq
		}
		return BoolLit{Value: eq}, true
	case op.isLogical():
		lb, rb := lv.Boolean(), rv.Boolean()
		var res bool
		if op == OpAnd {
			res = lb && rb
		} else {
			res = lb || rb
		}
		return BoolLit{Value: res}, true
	default:
		return nil, false
	}
}
