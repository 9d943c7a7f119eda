package cart

import (
	"testing"

	"github.com/AvalonLA/atelier/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := openTestStore(t)

	c := New("session-1")
	c.AddItem(domain.Product{ID: "p1", Name: "Orbe", Category: domain.CategoryPendant, Price: 420})
	c.UpdateQuantity("p1", 2)
	if err := s.Save(c); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := s.Get("session-1")
	if got.Len() != 1 {
		t.Fatalf("expected 1 line after rehydrate, got %d", got.Len())
	}
	if got.Items[0].Quantity != 2 || got.Items[0].Price != 420 {
		t.Fatalf("rehydrated line mismatch: %+v", got.Items[0])
	}
	if !got.Open {
		t.Fatal("sidebar flag must survive persistence")
	}
}

func TestStoreGetMissingFailsOpen(t *testing.T) {
	s := openTestStore(t)

	got := s.Get("never-saved")
	if got == nil {
		t.Fatal("expected a fresh cart, got nil")
	}
	if got.ID != "never-saved" || got.Len() != 0 {
		t.Fatalf("expected empty cart for id, got %+v", got)
	}
}

func TestStoreDelete(t *testing.T) {
	s := openTestStore(t)

	c := New("session-2")
	c.AddItem(domain.Product{ID: "p1", Name: "Faro", Price: 295})
	if err := s.Save(c); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Delete("session-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := s.Get("session-2"); got.Len() != 0 {
		t.Fatal("deleted cart must rehydrate empty")
	}
}
