package adminapi

import (
	"testing"
	"time"

	"github.com/AvalonLA/atelier/internal/events"
)

func TestSubscribeAllDeliversAndReleases(t *testing.T) {
	bus := events.NewBus()
	got := make(chan events.Change, 16)
	handler := func(ch events.Change) { got <- ch }

	release, err := subscribeAll(bus, watchedTables, handler)
	if err != nil {
		t.Fatalf("subscribeAll: %v", err)
	}

	bus.PublishChange(events.TableProducts, events.ActionInsert, "1001")
	select {
	case ch := <-got:
		if ch.Table != events.TableProducts || ch.ID != "1001" {
			t.Fatalf("unexpected change %+v", ch)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("change was not delivered")
	}

	release()
	bus.PublishChange(events.TableOrders, events.ActionUpdate, "1002")
	time.Sleep(200 * time.Millisecond)
	select {
	case ch := <-got:
		t.Fatalf("received change after release: %+v", ch)
	default:
	}
}

func TestSubscribeAllCoversEveryWatchedTable(t *testing.T) {
	bus := events.NewBus()
	got := make(chan events.Change, 16)
	handler := func(ch events.Change) { got <- ch }

	release, err := subscribeAll(bus, watchedTables, handler)
	if err != nil {
		t.Fatalf("subscribeAll: %v", err)
	}
	defer release()

	for _, table := range watchedTables {
		bus.PublishChange(table, events.ActionDelete, "x")
	}
	seen := map[string]bool{}
	deadline := time.After(2 * time.Second)
	for len(seen) < len(watchedTables) {
		select {
		case ch := <-got:
			seen[ch.Table] = true
		case <-deadline:
			t.Fatalf("only %d of %d tables delivered", len(seen), len(watchedTables))
		}
	}
}
