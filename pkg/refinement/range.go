package refinement

import (
	"fmt"
	"math"
	"sort"
)

// BoundKind distinguishes an open endpoint (strict inequality) from a
// closed one (inclusive).
type BoundKind int

const (
	Open BoundKind = iota
	Closed
)

// Bound is one endpoint of a Segment.
type Bound struct {
	Val  float64
	Kind BoundKind
}

func negInf() Bound { return Bound{Val: math.Inf(-1), Kind: Open} }
func posInf() Bound { return Bound{Val: math.Inf(1), Kind: Open} }

// Segment is a single contiguous interval of the real line.
type Segment struct {
	From, To Bound
}

// NewSegment validates and constructs a Segment, rejecting an inverted
// range or a zero-width segment with any open endpoint (which denotes the
// empty set more plainly as "no segment at all").
func NewSegment(from, to Bound) (Segment, error) {
	if from.Val > to.Val {
		return Segment{}, fmt.Errorf("%w: segment lower bound %g exceeds upper bound %g", ErrInvalid, from.Val, to.Val)
	}
	if from.Val == to.Val && (from.Kind == Open || to.Kind == Open) {
		return Segment{}, fmt.Errorf("%w: zero-width segment with an open endpoint at %g is empty, not a segment", ErrInvalid, from.Val)
	}
	return Segment{From: from, To: to}, nil
}

func (s Segment) contains(v float64) bool {
	lowOK := v > s.From.Val || (v == s.From.Val && s.From.Kind == Closed)
	highOK := v < s.To.Val || (v == s.To.Val && s.To.Kind == Closed)
	return lowOK && highOK
}

func (s Segment) isEmpty() bool { return s.From.Val > s.To.Val }

func (s Segment) String() string {
	l := "("
	if s.From.Kind == Closed {
		l = "["
	}
	r := ")"
	if s.To.Kind == Closed {
		r = "]"
	}
	return fmt.Sprintf("%s%s,%s%s", l, fmtBound(s.From.Val), fmtBound(s.To.Val), r)
}

func fmtBound(v float64) string {
	if math.IsInf(v, -1) {
		return "-inf"
	}
	if math.IsInf(v, 1) {
		return "+inf"
	}
	return fmt.Sprintf("%g", v)
}

// Range is a strictly-ordered list of disjoint Segments.
type Range struct {
	Segments []Segment
}

// EmptyRange returns a Range covering no values.
func EmptyRange() Range { return Range{} }

// FullRange returns a Range covering (-inf, +inf).
func FullRange() Range { return Range{Segments: []Segment{{From: negInf(), To: posInf()}}} }

func (r Range) String() string {
	if len(r.Segments) == 0 {
		return "{}"
	}
	parts := make([]string, len(r.Segments))
	for i, s := range r.Segments {
		parts[i] = s.String()
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += " U " + p
	}
	return out
}

// Equal reports whether r and other denote the same set of reals.
func (r Range) Equal(other Range) bool {
	if len(r.Segments) != len(other.Segments) {
		return false
	}
	for i := range r.Segments {
		if r.Segments[i] != other.Segments[i] {
			return false
		}
	}
	return true
}

// Union returns the set union of r and other as a normalized Range:
// overlapping or touching segments are merged, preferring the more
// inclusive boundary kind where endpoints coincide.
func Union(a, b Range) Range {
	all := append(append([]Segment{}, a.Segments...), b.Segments...)
	return normalizeSegments(all, unionMerge)
}

// Intersect returns the set intersection of a and b: overlapping segments
// are kept, adopting the less-inclusive boundary kind where endpoints
// coincide.
func Intersect(a, b Range) Range {
	var out []Segment
	for _, sa := range a.Segments {
		for _, sb := range b.Segments {
			if seg, ok := intersectPair(sa, sb); ok {
				out = append(out, seg)
			}
		}
	}
	return normalizeSegments(out, unionMerge)
}

// Complement returns the set complement of r with respect to (-inf, +inf).
func Complement(r Range) Range {
	segs := sortedSegments(r.Segments)
	if len(segs) == 0 {
		return FullRange()
	}
	var out []Segment
	cursor := negInf()
	for _, s := range segs {
		if cursor.Val < s.From.Val {
			out = append(out, Segment{From: cursor, To: flipBound(s.From)})
		} else if cursor.Val == s.From.Val && cursor.Kind == Open && s.From.Kind == Open {
			out = append(out, Segment{From: cursor, To: flipBound(s.From)})
		}
		cursor = flipBound(s.To)
	}
	if cursor.Val < posInf().Val {
		out = append(out, Segment{From: cursor, To: posInf()})
	}
	return Range{Segments: out}
}

func flipBound(b Bound) Bound {
	if b.Kind == Open {
		return Bound{Val: b.Val, Kind: Closed}
	}
	return Bound{Val: b.Val, Kind: Open}
}

// Difference returns a \ b, defined as Intersect(a, Complement(b)).
func Difference(a, b Range) Range {
	return Intersect(a, Complement(b))
}

// IsSubsetOf reports whether every value in a also lies in b.
func IsSubsetOf(a, b Range) bool {
	return Intersect(a, b).Equal(a)
}

func sortedSegments(segs []Segment) []Segment {
	out := append([]Segment{}, segs...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].From.Val != out[j].From.Val {
			return out[i].From.Val < out[j].From.Val
		}
		return out[i].From.Kind == Closed && out[j].From.Kind == Open
	})
	return out
}

func normalizeSegments(segs []Segment, merge func(a, b Segment) (Segment, bool)) Range {
	if len(segs) == 0 {
		return Range{}
	}
	sorted := sortedSegments(segs)
	out := []Segment{sorted[0]}
	for _, s := range sorted[1:] {
		last := out[len(out)-1]
		if merged, ok := merge(last, s); ok {
			out[len(out)-1] = merged
			continue
		}
		out = append(out, s)
	}
	return Range{Segments: out}
}

// unionMerge merges a and b into one segment if they overlap or touch,
// adopting the more inclusive boundary kind at a shared endpoint.
func unionMerge(a, b Segment) (Segment, bool) {
	if b.From.Val > a.To.Val {
		return Segment{}, false
	}
	if b.From.Val == a.To.Val && a.To.Kind == Open && b.From.Kind == Open {
		return Segment{}, false
	}
	to := a.To
	if b.To.Val > a.To.Val || (b.To.Val == a.To.Val && b.To.Kind == Closed) {
		to = b.To
	}
	from := a.From
	return Segment{From: from, To: to}, true
}

// intersectPair returns the overlap of a and b, adopting the
// less-inclusive boundary kind at a shared endpoint, or ok=false if they
// don't overlap.
func intersectPair(a, b Segment) (Segment, bool) {
	from := a.From
	if b.From.Val > a.From.Val || (b.From.Val == a.From.Val && b.From.Kind == Open) {
		from = b.From
	}
	to := a.To
	if b.To.Val < a.To.Val || (b.To.Val == a.To.Val && b.To.Kind == Open) {
		to = b.To
	}
	if from.Val > to.Val {
		return Segment{}, false
	}
	if from.Val == to.Val && (from.Kind == Open || to.Kind == Open) {
		return Segment{}, false
	}
	return Segment{From: from, To: to}, true
}

// FromExpression derives the Range of Number values satisfying a
// normalized, univariate Boolean expression over a single FieldRef.
// Comparisons are assumed canonicalized (FieldRef on the left, per
// Normalize); callers should normalize e first.
func FromExpression(e Expr) (Range, error) {
	switch n := e.(type) {
	case BoolLit:
		if n.Value {
			return FullRange(), nil
		}
		return EmptyRange(), nil
	case BinOp:
		return rangeFromBinOp(n)
	case UnOp:
		if n.Op != OpNot {
			return Range{}, fmt.Errorf("%w: cannot derive a range from a non-Boolean unary node", ErrInvalid)
		}
		inner, err := FromExpression(n.Operand)
		if err != nil {
			return Range{}, err
		}
		return Complement(inner), nil
	default:
		return Range{}, fmt.Errorf("%w: cannot derive a range from %s", ErrInvalid, e)
	}
}

func rangeFromBinOp(b BinOp) (Range, error) {
	switch {
	case b.Op == OpAnd:
		l, err := FromExpression(b.Left)
		if err != nil {
			return Range{}, err
		}
		r, err := FromExpression(b.Right)
		if err != nil {
			return Range{}, err
		}
		return Intersect(l, r), nil
	case b.Op == OpOr:
		l, err := FromExpression(b.Left)
		if err != nil {
			return Range{}, err
		}
		r, err := FromExpression(b.Right)
		if err != nil {
			return Range{}, err
		}
		return Union(l, r), nil
	case b.Op.isComparison():
		return rangeFromComparison(b)
	case b.Op.isEquality():
		return rangeFromEquality(b)
	default:
		return Range{}, fmt.Errorf("%w: cannot derive a range from operator %s", ErrInvalid, b.Op)
	}
}

func rangeFromComparison(b BinOp) (Range, error) {
	if _, ok := b.Left.(FieldRef); !ok {
		return Range{}, fmt.Errorf("%w: comparison is not field-normalized (field must be on the left)", ErrInvalid)
	}
	lit, ok := b.Right.(NumberLit)
	if !ok {
		return Range{}, fmt.Errorf("%w: comparison's right operand must be a constant Number", ErrInvalid)
	}
	v := lit.Value
	var seg Segment
	var err error
	switch b.Op {
	case OpLt:
		seg, err = NewSegment(negInf(), Bound{Val: v, Kind: Open})
	case OpLe:
		seg, err = NewSegment(negInf(), Bound{Val: v, Kind: Closed})
	case OpGt:
		seg, err = NewSegment(Bound{Val: v, Kind: Open}, posInf())
	case OpGe:
		seg, err = NewSegment(Bound{Val: v, Kind: Closed}, posInf())
	}
	if err != nil {
		return Range{}, err
	}
	return Range{Segments: []Segment{seg}}, nil
}

func rangeFromEquality(b BinOp) (Range, error) {
	if _, ok := b.Left.(FieldRef); !ok {
		return Range{}, fmt.Errorf("%w: equality is not field-normalized (field must be on the left)", ErrInvalid)
	}
	lit, ok := b.Right.(NumberLit)
	if !ok {
		return Range{}, fmt.Errorf("%w: equality's right operand must be a constant Number", ErrInvalid)
	}
	point := Range{Segments: []Segment{{From: Bound{Val: lit.Value, Kind: Closed}, To: Bound{Val: lit.Value, Kind: Closed}}}}
	if b.Op == OpEq {
		return point, nil
	}
	return Complement(point), nil
}
