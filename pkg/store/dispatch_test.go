package store

import (
	"sync"
	"testing"

	"github.com/arcs-core/arcs/pkg/model"
)

func TestSerialDispatcherProcessesConcurrentSubmitsSafely(t *testing.T) {
	schema := testEntitySchema()
	driver := NewMemoryDriver()
	s := NewReferenceModeStore(schema, driver, model.StorageKey("people"))
	d := NewSerialDispatcher(s)
	defer d.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := model.ReferenceId("person-" + string(rune('a'+n%26)))
			update := map[model.ReferenceId]model.EntityData{
				id: {ID: id, Singletons: map[string]model.Primitive{"name": model.NewText("x")}},
			}
			_, err := d.Submit(model.NewModelUpdateMessage(update, nil))
			if err != nil {
				t.Errorf("Submit: %v", err)
			}
		}(i)
	}
	wg.Wait()

	resp, err := d.Submit(model.NewSyncRequestMessage(nil))
	if err != nil {
		t.Fatalf("sync submit: %v", err)
	}
	view, ok := resp.Model.(map[model.ReferenceId]model.EntityView)
	if !ok || len(view) == 0 {
		t.Fatalf("expected a populated ModelUpdate after concurrent writes, got %+v", resp)
	}
}
