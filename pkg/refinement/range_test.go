package refinement

import (
	"testing"

	"github.com/arcs-core/arcs/pkg/model"
)

func mustField(t *testing.T, name string) FieldRef {
	t.Helper()
	f, err := NewFieldRef(name, TypeEnv{name: model.KindNumber})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return f
}

func TestAgeRangeDerivation(t *testing.T) {
	age := mustField(t, "age")

	ge18, err := NewBinOp(OpGe, age, NumberLit{Value: 18})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lt65, err := NewBinOp(OpLt, age, NumberLit{Value: 65})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	and, err := NewBinOp(OpAnd, ge18, lt65)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r, err := FromExpression(Normalize(and))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "[18,65)"
	if got := r.String(); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}

	comp := Complement(r)
	wantComp := "(-inf,18) U [65,+inf)"
	if got := comp.String(); got != wantComp {
		t.Fatalf("got %s, want %s", got, wantComp)
	}
}

func TestSegmentRejectsOpenOpenZeroWidth(t *testing.T) {
	_, err := NewSegment(Bound{Val: 5, Kind: Open}, Bound{Val: 5, Kind: Open})
	if err == nil {
		t.Fatal("expected an error for an open-open zero-width segment")
	}
}

func TestSegmentAllowsClosedClosedZeroWidth(t *testing.T) {
	s, err := NewSegment(Bound{Val: 5, Kind: Closed}, Bound{Val: 5, Kind: Closed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.contains(5) {
		t.Fatal("a closed-closed point segment must contain its own value")
	}
}

func TestIsSubsetOf(t *testing.T) {
	a := Range{Segments: []Segment{{From: Bound{Val: 18, Kind: Closed}, To: Bound{Val: 30, Kind: Open}}}}
	b := Range{Segments: []Segment{{From: Bound{Val: 0, Kind: Closed}, To: Bound{Val: 65, Kind: Open}}}}
	if !IsSubsetOf(a, b) {
		t.Fatal("expected [18,30) to be a subset of [0,65)")
	}
	if IsSubsetOf(b, a) {
		t.Fatal("did not expect [0,65) to be a subset of [18,30)")
	}
}

func TestUnionMergesTouchingSegments(t *testing.T) {
	a := Range{Segments: []Segment{{From: negInf(), To: Bound{Val: 10, Kind: Open}}}}
	b := Range{Segments: []Segment{{From: Bound{Val: 10, Kind: Closed}, To: posInf()}}}
	u := Union(a, b)
	if got := u.String(); got != "(-inf,+inf)" {
		t.Fatalf("got %s, want the full range", got)
	}
}

func TestDifference(t *testing.T) {
	a := Range{Segments: []Segment{{From: Bound{Val: 0, Kind: Closed}, To: Bound{Val: 100, Kind: Open}}}}
	b := Range{Segments: []Segment{{From: Bound{Val: 18, Kind: Closed}, To: Bound{Val: 65, Kind: Open}}}}
	d := Difference(a, b)
	want := "[0,18) U [65,100)"
	if got := d.String(); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}
