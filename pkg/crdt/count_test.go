package crdt

import (
	"errors"
	"testing"
)

func applyMulti(t *testing.T, c *Count, actor string, from, to, value uint64) bool {
	t.Helper()
	ok, err := c.ApplyOperation(MultiIncrement{actorField: actorField{Actor: actor}, From: from, To: to, Value: value})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return ok
}

func TestCountApplyOperationRejectsOutOfOrder(t *testing.T) {
	c := NewCount()
	if !applyMulti(t, c, "me", 0, 1, 1) {
		t.Fatal("expected first increment to apply")
	}
	if applyMulti(t, c, "me", 0, 1, 1) {
		t.Fatal("duplicate op with stale `from` must be rejected")
	}
	if applyMulti(t, c, "me", 5, 6, 1) {
		t.Fatal("op that does not connect to current version must be rejected")
	}
}

func TestCountRejectsNonPositiveRange(t *testing.T) {
	c := NewCount()
	if applyMulti(t, c, "me", 0, 0, 0) {
		t.Fatal("MultiIncrement with to <= from must be rejected")
	}
}

func TestCountRejectsZeroValueIncrement(t *testing.T) {
	c := NewCount()
	if applyMulti(t, c, "me", 0, 1, 0) {
		t.Fatal("MultiIncrement with value = 0 must be rejected even when to > from")
	}
	if c.Value() != 0 {
		t.Fatalf("rejected increment must not change value, got %d", c.Value())
	}
	if _, ok := c.version["me"]; ok {
		t.Fatal("rejected increment must not advance version")
	}
}

func TestCountMergeScenario_IndependentActors(t *testing.T) {
	a := NewCount()
	b := NewCount()
	applyMulti(t, a, "me", 0, 1, 7)
	applyMulti(t, b, "them", 0, 1, 4)

	delta, err := a.Merge(b)
	if err != nil {
		t.Fatalf("unexpected merge error: %v", err)
	}
	if len(delta.OtherChange) != 1 || len(delta.ThisChange) != 1 {
		t.Fatalf("expected one-op delta on each side, got this=%d other=%d",
			len(delta.ThisChange), len(delta.OtherChange))
	}
	if a.Value() != 11 {
		t.Fatalf("this side merged value: got %d, want 11", a.Value())
	}

	for _, op := range delta.OtherChange {
		if ok, err := b.ApplyOperation(op); err != nil || !ok {
			t.Fatalf("applying otherChange to b failed: ok=%v err=%v", ok, err)
		}
	}
	if b.Value() != 11 {
		t.Fatalf("other side after applying otherChange: got %d, want 11", b.Value())
	}
}

func TestCountMergeScenario_Divergence(t *testing.T) {
	a := NewCount()
	b := NewCount()
	applyMulti(t, a, "me", 0, 1, 7)
	applyMulti(t, b, "me", 0, 1, 4)

	_, err := a.Merge(b)
	var de *ErrDivergence
	if !errors.As(err, &de) {
		t.Fatalf("expected ErrDivergence, got %v", err)
	}
}

func TestCountMergeIsIdempotentOnceSynced(t *testing.T) {
	a := NewCount()
	b := NewCount()
	applyMulti(t, a, "me", 0, 1, 7)
	applyMulti(t, b, "them", 0, 1, 4)

	delta, err := a.Merge(b)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	for _, op := range delta.OtherChange {
		if _, err := b.ApplyOperation(op); err != nil {
			t.Fatalf("apply otherChange: %v", err)
		}
	}

	// Merging again now that both sides are in sync should produce an
	// empty delta and leave values untouched.
	delta2, err := a.Merge(b)
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}
	if len(delta2.ThisChange) != 0 || len(delta2.OtherChange) != 0 {
		t.Fatalf("expected empty delta once synced, got this=%d other=%d",
			len(delta2.ThisChange), len(delta2.OtherChange))
	}
	if a.Value() != b.Value() {
		t.Fatalf("synced replicas must agree: a=%d b=%d", a.Value(), b.Value())
	}
}
