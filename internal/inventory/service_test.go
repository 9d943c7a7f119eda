package inventory

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panjf2000/ants/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AvalonLA/atelier/internal/domain"
	"github.com/AvalonLA/atelier/internal/events"
	"github.com/AvalonLA/atelier/internal/storage"
)

func newTestService(t *testing.T) (*Service, *gorm.DB, *storage.FileStore) {
	t.Helper()
	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	files, err := storage.NewFileStore(filepath.Join(dir, "uploads"), "http://localhost:1816/files")
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}

	pool, err := ants.NewPool(4)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Release)

	return NewService(db, files, events.NewBus(), pool), db, files
}

func TestPriceAdjustmentApply(t *testing.T) {
	cases := []struct {
		name string
		adj  PriceAdjustment
		in   float64
		want float64
	}{
		{"fixed increase", PriceAdjustment{Mode: AdjustFixed, Direction: DirectionIncrease, Value: 10}, 100, 110},
		{"fixed decrease", PriceAdjustment{Mode: AdjustFixed, Direction: DirectionDecrease, Value: 10}, 100, 90},
		{"percent increase", PriceAdjustment{Mode: AdjustPercent, Direction: DirectionIncrease, Value: 10}, 100, 110},
		{"percent decrease", PriceAdjustment{Mode: AdjustPercent, Direction: DirectionDecrease, Value: 25}, 200, 150},
		{"floored at zero", PriceAdjustment{Mode: AdjustFixed, Direction: DirectionDecrease, Value: 500}, 100, 0},
	}
	for _, tc := range cases {
		if got := tc.adj.Apply(tc.in); got != tc.want {
			t.Errorf("%s: Apply(%v) = %v, want %v", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestPriceAdjustmentValidate(t *testing.T) {
	bad := []PriceAdjustment{
		{Mode: "half", Direction: DirectionIncrease, Value: 1},
		{Mode: AdjustFixed, Direction: "sideways", Value: 1},
		{Mode: AdjustFixed, Direction: DirectionIncrease, Value: -1},
	}
	for _, adj := range bad {
		if err := adj.Validate(); err == nil {
			t.Errorf("expected validation error for %+v", adj)
		}
	}
	good := PriceAdjustment{Mode: AdjustPercent, Direction: DirectionDecrease, Value: 15}
	if err := good.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCreateAssignsIDAndPinsImage(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	p := domain.Product{
		Name:     "Orbe Suspendido",
		Category: domain.CategoryPendant,
		Price:    420,
		Gallery:  []string{"http://localhost:1816/files/products/a.jpg", "http://localhost:1816/files/products/b.jpg"},
	}
	if err := s.Create(ctx, &p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" {
		t.Fatal("create must assign an id")
	}
	if p.Image != p.Gallery[0] {
		t.Fatalf("primary image not pinned: %q", p.Image)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	if err := s.Create(ctx, &domain.Product{Name: "  ", Category: domain.CategoryTable}); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := s.Create(ctx, &domain.Product{Name: "X", Category: "chandelier"}); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestUpdateRemovesDroppedGalleryFiles(t *testing.T) {
	s, _, files := newTestService(t)
	ctx := context.Background()

	keepURL, err := files.Upload(storage.BucketProducts, "keep.jpg", []byte("keep"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	dropURL, err := files.Upload(storage.BucketProducts, "drop.jpg", []byte("drop"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	p := domain.Product{
		Name:     "Columna",
		Category: domain.CategoryFloor,
		Price:    780,
		Gallery:  []string{keepURL, dropURL},
	}
	if err := s.Create(ctx, &p); err != nil {
		t.Fatalf("create: %v", err)
	}

	p.Gallery = []string{keepURL}
	if err := s.Update(ctx, &p); err != nil {
		t.Fatalf("update: %v", err)
	}

	if !files.Exists(storage.BucketProducts, keepURL) {
		t.Fatal("kept gallery file must remain")
	}
	if files.Exists(storage.BucketProducts, dropURL) {
		t.Fatal("dropped gallery file must be removed")
	}
}

func TestDeleteIsSoftThenCollected(t *testing.T) {
	s, db, files := newTestService(t)
	ctx := context.Background()

	url, err := files.Upload(storage.BucketProducts, "gone.jpg", []byte("img"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	p := domain.Product{Name: "Trazo", Category: domain.CategoryPendant, Price: 150, Gallery: []string{url}}
	if err := s.Create(ctx, &p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// row still there, marked deleted, file untouched until gc
	var marked domain.Product
	if err := db.Where("id = ?", p.ID).First(&marked).Error; err != nil {
		t.Fatalf("load soft-deleted row: %v", err)
	}
	if marked.DeletedAt == nil {
		t.Fatal("delete must set the deletion marker")
	}
	if !files.Exists(storage.BucketProducts, url) {
		t.Fatal("files must survive until garbage collection")
	}

	purged, err := s.CollectGarbage(ctx)
	if err != nil {
		t.Fatalf("gc: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged product, got %d", purged)
	}
	if files.Exists(storage.BucketProducts, url) {
		t.Fatal("gc must remove the stored files")
	}
	var count int64
	db.Model(&domain.Product{}).Where("id = ?", p.ID).Count(&count)
	if count != 0 {
		t.Fatal("gc must purge the row")
	}
}

func TestDeleteUnknownID(t *testing.T) {
	s, _, _ := newTestService(t)
	if err := s.Delete(context.Background(), "12345"); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestBulkAdjustPrices(t *testing.T) {
	s, db, _ := newTestService(t)
	ctx := context.Background()

	var ids []string
	for _, price := range []float64{100, 200, 5} {
		p := domain.Product{Name: "L", Category: domain.CategoryTable, Price: price}
		if err := s.Create(ctx, &p); err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, p.ID)
	}

	adj := PriceAdjustment{Mode: AdjustFixed, Direction: DirectionDecrease, Value: 10}
	if err := s.BulkAdjustPrices(ctx, ids, adj); err != nil {
		t.Fatalf("bulk adjust: %v", err)
	}

	want := map[string]float64{ids[0]: 90, ids[1]: 190, ids[2]: 0}
	for id, exp := range want {
		var p domain.Product
		if err := db.Where("id = ?", id).First(&p).Error; err != nil {
			t.Fatalf("load %s: %v", id, err)
		}
		if p.Price != exp {
			t.Errorf("product %s: price %v, want %v", id, p.Price, exp)
		}
	}
}

func TestBulkAdjustPricesRejectsEmptySelection(t *testing.T) {
	s, _, _ := newTestService(t)
	adj := PriceAdjustment{Mode: AdjustFixed, Direction: DirectionIncrease, Value: 1}
	if err := s.BulkAdjustPrices(context.Background(), nil, adj); err == nil {
		t.Fatal("expected error for empty selection")
	}
}

func TestLowStock(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	stocks := []int{0, 3, 5, 12}
	for _, st := range stocks {
		p := domain.Product{Name: "L", Category: domain.CategoryTech, Price: 10, Stock: st}
		if err := s.Create(ctx, &p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	rows, err := s.LowStock(ctx)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 low stock products, got %d", len(rows))
	}
	for _, p := range rows {
		if p.Stock >= domain.LowStockThreshold {
			t.Errorf("product with stock %d is not low", p.Stock)
		}
	}
}

func TestReorderGalleryPinsPrimary(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	p := domain.Product{
		Name:     "Halo",
		Category: domain.CategoryTech,
		Price:    999,
		Gallery:  []string{"u/a.jpg", "u/b.jpg", "u/c.jpg"},
	}
	if err := s.Create(ctx, &p); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.ReorderGallery(ctx, p.ID, 2, 0)
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if strings.Join(got.Gallery, ",") != "u/c.jpg,u/a.jpg,u/b.jpg" {
		t.Fatalf("unexpected gallery order: %v", got.Gallery)
	}
	if got.Image != "u/c.jpg" {
		t.Fatalf("primary image must follow gallery[0], got %q", got.Image)
	}

	if _, err := s.ReorderGallery(ctx, p.ID, 0, 9); err == nil {
		t.Fatal("expected range error")
	}
}

func TestDiffGallery(t *testing.T) {
	removed := diffGallery([]string{"a", "b", "c"}, []string{"b"})
	if len(removed) != 2 || removed[0] != "a" || removed[1] != "c" {
		t.Fatalf("unexpected diff: %v", removed)
	}
	if diffGallery(nil, []string{"x"}) != nil {
		t.Fatal("empty old gallery must diff to nil")
	}
}
