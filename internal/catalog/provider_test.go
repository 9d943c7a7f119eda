package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AvalonLA/atelier/internal/domain"
)

type staticFlags struct{ mock bool }

func (f staticFlags) UseMockData() bool { return f.mock }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestListMockHidesInvisible(t *testing.T) {
	p := NewProvider(newTestDB(t), staticFlags{mock: true})

	res := p.List(context.Background(), false)
	if res.Degraded {
		t.Fatal("demo dataset by flag is not a degraded read")
	}
	if len(res.Products) != len(MockProducts)-1 {
		t.Fatalf("expected hidden demo product filtered, got %d products", len(res.Products))
	}
	for _, prod := range res.Products {
		if !prod.Visible {
			t.Errorf("hidden product %s leaked to the storefront", prod.ID)
		}
	}

	admin := p.List(context.Background(), true)
	if len(admin.Products) != len(MockProducts) {
		t.Fatalf("admin view must include hidden products, got %d", len(admin.Products))
	}
}

func TestListLive(t *testing.T) {
	db := newTestDB(t)
	p := NewProvider(db, staticFlags{mock: false})
	ctx := context.Background()

	rows := []domain.Product{
		{ID: "1001", Name: "Orbe", Category: domain.CategoryPendant, Price: 420, Visible: true},
		{ID: "1002", Name: "Trazo", Category: domain.CategoryPendant, Price: 150, Visible: false},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	res := p.List(ctx, false)
	if res.Degraded {
		t.Fatal("healthy live read must not be degraded")
	}
	if len(res.Products) != 1 || res.Products[0].ID != "1001" {
		t.Fatalf("unexpected storefront catalog: %+v", res.Products)
	}

	admin := p.List(ctx, true)
	if len(admin.Products) != 2 {
		t.Fatalf("admin view must include hidden rows, got %d", len(admin.Products))
	}
}

func TestListDegradesOnReadFailure(t *testing.T) {
	db := newTestDB(t)
	// drop the table out from under the provider
	if err := db.Migrator().DropTable(&domain.Product{}); err != nil {
		t.Fatalf("drop: %v", err)
	}
	p := NewProvider(db, staticFlags{mock: false})

	res := p.List(context.Background(), false)
	if !res.Degraded {
		t.Fatal("failed live read must be marked degraded")
	}
	if len(res.Products) == 0 {
		t.Fatal("degraded read must still serve the demo dataset")
	}
}

func TestGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mock := NewProvider(db, staticFlags{mock: true})
	prod, err := mock.Get(ctx, "mock-003")
	if err != nil {
		t.Fatalf("get demo product: %v", err)
	}
	if prod.Name == "" {
		t.Fatal("demo product must be populated")
	}
	if _, err := mock.Get(ctx, "mock-999"); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	live := NewProvider(db, staticFlags{mock: false})
	if err := db.Create(&domain.Product{ID: "1001", Name: "Orbe", Category: domain.CategoryPendant, Price: 420, Visible: true}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	prod, err = live.Get(ctx, "1001")
	if err != nil || prod.Name != "Orbe" {
		t.Fatalf("live get failed: %v %+v", err, prod)
	}
}

func TestSearchNames(t *testing.T) {
	p := NewProvider(newTestDB(t), staticFlags{mock: true})
	ctx := context.Background()

	names := p.SearchNames(ctx, "mesa", 10)
	if len(names) == 0 {
		t.Fatal("expected at least one match for 'mesa'")
	}

	all := p.SearchNames(ctx, "", 2)
	if len(all) != 2 {
		t.Fatalf("limit not honored, got %d names", len(all))
	}
}
