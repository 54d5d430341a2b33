package crdt

import (
	"testing"

	"github.com/arcs-core/arcs/pkg/model"
	"github.com/arcs-core/arcs/pkg/vv"
)

func testSchema() *model.Schema {
	return &model.Schema{
		Names:       []string{"name", "tags"},
		Singletons:  map[string]model.FieldType{"name": model.KindText},
		Collections: map[string]model.FieldType{"tags": model.KindText},
	}
}

func TestEntityRoutesFieldOperations(t *testing.T) {
	e := NewEntity(testSchema())

	ok, err := e.ApplyOperation(FieldOperation{
		actorField: actorField{Actor: "a"},
		Field:      "name",
		Inner: SetAdd[model.Primitive]{
			actorField: actorField{Actor: "a"},
			Clock:      vv.FromMap(map[string]uint64{"a": 1}),
			Value:      model.NewText("joe"),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected field operation to apply")
	}

	view := e.View()
	if view.Singletons["name"].Text() != "joe" {
		t.Fatalf("got %q, want joe", view.Singletons["name"].Text())
	}
}

func TestEntityRejectsUnknownField(t *testing.T) {
	e := NewEntity(testSchema())
	ok, err := e.ApplyOperation(FieldOperation{
		actorField: actorField{Actor: "a"},
		Field:      "nope",
		Inner: SetAdd[model.Primitive]{
			actorField: actorField{Actor: "a"},
			Clock:      vv.FromMap(map[string]uint64{"a": 1}),
			Value:      model.NewText("x"),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("operation against an unknown field must be rejected")
	}
}

func TestEntityMergeReconcilesEachField(t *testing.T) {
	schema := testSchema()
	e1 := NewEntity(schema)
	e2 := NewEntity(schema)

	apply := func(e *Entity, actor, field string, clock map[string]uint64, v model.Primitive) {
		t.Helper()
		ok, err := e.ApplyOperation(FieldOperation{
			actorField: actorField{Actor: actor},
			Field:      field,
			Inner: SetAdd[model.Primitive]{
				actorField: actorField{Actor: actor}, Clock: vv.FromMap(clock), Value: v,
			},
		})
		if err != nil || !ok {
			t.Fatalf("apply failed: ok=%v err=%v", ok, err)
		}
	}

	apply(e1, "a", "name", map[string]uint64{"a": 1}, model.NewText("joe"))
	apply(e2, "b", "tags", map[string]uint64{"b": 1}, model.NewText("urgent"))

	if _, err := e1.Merge(e2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view := e1.View()
	if view.Singletons["name"].Text() != "joe" {
		t.Fatalf("got %q, want joe", view.Singletons["name"].Text())
	}
	if len(view.Collections["tags"]) != 1 || view.Collections["tags"][0].Text() != "urgent" {
		t.Fatalf("got %v, want [urgent]", view.Collections["tags"])
	}
}
