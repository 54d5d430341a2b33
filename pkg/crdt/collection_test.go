package crdt

import (
	"testing"

	"github.com/arcs-core/arcs/pkg/vv"
)

func mustAddC(t *testing.T, c *Collection[string], actor string, clock map[string]uint64, val string) {
	t.Helper()
	ok, err := c.ApplyOperation(SetAdd[string]{actorField: actorField{Actor: actor}, Clock: vv.FromMap(clock), Value: val})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected add to apply")
	}
}

func TestCollectionAccumulatesConcurrentAdds(t *testing.T) {
	c := NewCollection[string]()
	mustAddC(t, c, "a", map[string]uint64{"a": 1}, "x")
	mustAddC(t, c, "b", map[string]uint64{"b": 1}, "y")

	vals := c.Values()
	if len(vals) != 2 {
		t.Fatalf("got %d values, want 2: %v", len(vals), vals)
	}
}

func TestCollectionObservedRemove(t *testing.T) {
	c := NewCollection[string]()
	mustAddC(t, c, "a", map[string]uint64{"a": 1}, "x")

	// A remove whose clock does not dominate the add's clock must be rejected.
	ok, err := c.ApplyOperation(SetRemove[string]{
		actorField: actorField{Actor: "b"}, Clock: vv.FromMap(map[string]uint64{"b": 1}), Value: "x",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("remove must be rejected when it does not observe the add")
	}
	if len(c.Values()) != 1 {
		t.Fatal("element must survive a non-observing remove")
	}

	ok, err = c.ApplyOperation(SetRemove[string]{
		actorField: actorField{Actor: "a"}, Clock: vv.FromMap(map[string]uint64{"a": 1}), Value: "x",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("remove must succeed once it dominates the add")
	}
	if len(c.Values()) != 0 {
		t.Fatal("element must be gone after a dominating remove")
	}
}

func TestCollectionRejectsDuplicateAdd(t *testing.T) {
	c := NewCollection[string]()
	mustAddC(t, c, "a", map[string]uint64{"a": 1}, "x")

	ok, err := c.ApplyOperation(SetAdd[string]{
		actorField: actorField{Actor: "a"}, Clock: vv.FromMap(map[string]uint64{"a": 1}), Value: "x",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("resubmitting the same op must be rejected")
	}
	if len(c.Values()) != 1 {
		t.Fatalf("resubmission must not add a duplicate element, got %v", c.Values())
	}
}

func TestCollectionMergeUnionsDistinctElements(t *testing.T) {
	c1 := NewCollection[string]()
	c2 := NewCollection[string]()
	mustAddC(t, c1, "a", map[string]uint64{"a": 1}, "x")
	mustAddC(t, c2, "b", map[string]uint64{"b": 1}, "y")

	delta := c1.Merge(c2)
	if len(delta.ThisChange) != 1 {
		t.Fatalf("expected 1 element pulled into c1, got %d", len(delta.ThisChange))
	}

	vals := c1.Values()
	if len(vals) != 2 {
		t.Fatalf("got %d values after merge, want 2: %v", len(vals), vals)
	}
}

func TestCollectionMergeIsIdempotent(t *testing.T) {
	c1 := NewCollection[string]()
	c2 := NewCollection[string]()
	mustAddC(t, c1, "a", map[string]uint64{"a": 1}, "x")
	mustAddC(t, c2, "a", map[string]uint64{"a": 1}, "x")

	delta := c1.Merge(c2)
	if len(delta.ThisChange) != 0 || len(delta.OtherChange) != 0 {
		t.Fatalf("merging identical replicas should produce no delta, got %+v", delta)
	}
}
