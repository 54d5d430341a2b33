package vv

import "testing"

func TestLessEqMissingKeyIsZero(t *testing.T) {
	u := FromMap(map[string]uint64{"a": 1})
	v := FromMap(map[string]uint64{"a": 1, "b": 2})
	if !u.LessEq(v) {
		t.Fatal("expected u <= v")
	}
	if v.LessEq(u) {
		t.Fatal("expected v not<= u")
	}
}

func TestConcurrent(t *testing.T) {
	u := FromMap(map[string]uint64{"a": 1})
	v := FromMap(map[string]uint64{"b": 1})
	if !u.Concurrent(v) {
		t.Fatal("expected u and v to be concurrent")
	}
	if u.LessEq(v) || v.LessEq(u) {
		t.Fatal("concurrent vectors must not be <=")
	}
}

func TestMergeIsLeastUpperBound(t *testing.T) {
	u := FromMap(map[string]uint64{"a": 3, "b": 1})
	v := FromMap(map[string]uint64{"a": 1, "b": 5, "c": 2})
	m := u.Merge(v)
	if m.Get("a") != 3 || m.Get("b") != 5 || m.Get("c") != 2 {
		t.Fatalf("unexpected merge result: %+v", m.Map())
	}
	if !u.LessEq(m) || !v.LessEq(m) {
		t.Fatal("merge must dominate both inputs")
	}
}

func TestBumpNeverLowers(t *testing.T) {
	v := FromMap(map[string]uint64{"a": 5})
	if got := v.Bump("a", 3).Get("a"); got != 5 {
		t.Fatalf("Bump should not lower counter: got %d", got)
	}
	if got := v.Bump("a", 9).Get("a"); got != 9 {
		t.Fatalf("Bump should raise counter: got %d", got)
	}
}

func TestEqualIgnoresZeroEntries(t *testing.T) {
	u := FromMap(map[string]uint64{"a": 1, "b": 0})
	v := FromMap(map[string]uint64{"a": 1})
	if !u.Equal(v) {
		t.Fatal("zero entries should not affect equality")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	u := FromMap(map[string]uint64{"a": 1})
	c := u.Clone()
	c = c.Set("a", 99)
	if u.Get("a") != 1 {
		t.Fatal("mutating a clone must not affect the original")
	}
}
