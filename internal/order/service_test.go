package order

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AvalonLA/atelier/config"
	"github.com/AvalonLA/atelier/internal/cart"
	"github.com/AvalonLA/atelier/internal/domain"
	"github.com/AvalonLA/atelier/internal/events"
	"github.com/AvalonLA/atelier/pkg/common"
	"github.com/AvalonLA/atelier/pkg/mailer"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Order{}, &domain.SaleItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(db, events.NewBus(), mailer.NewMailer(config.MailConfig{})), db
}

func validForm() Checkout {
	return Checkout{
		FirstName: "Ana",
		LastName:  "Suárez",
		Email:     "ana@example.com",
		Address:   "Av. Santa Fe 1234",
		City:      "Buenos Aires",
		Zip:       "C1059",
		Country:   "Argentina",
	}
}

func TestSubmitPersistsOrderWithSnapshots(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	storeID := common.NewID()
	ct := cart.New("s1")
	ct.Items = []cart.Item{
		{ProductID: storeID, Name: "Orbe", Price: 420, Quantity: 2},
		{ProductID: "mock-003", Name: "Faro de Mesa", Price: 295, Quantity: 1},
	}

	ord, err := s.Submit(ctx, validForm(), ct)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ord.Status != domain.OrderPending {
		t.Fatalf("new order must be pending, got %s", ord.Status)
	}
	if ord.Address != "Av. Santa Fe 1234, Buenos Aires, C1059, Argentina" {
		t.Fatalf("unexpected address: %q", ord.Address)
	}

	var stored domain.Order
	if err := db.Preload("Items").Where("id = ?", ord.ID).First(&stored).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("expected 2 sale items, got %d", len(stored.Items))
	}
	if stored.Total() != 420*2+295 {
		t.Fatalf("unexpected total %v", stored.Total())
	}

	for _, it := range stored.Items {
		switch it.ProductName {
		case "Orbe":
			if it.ProductID == nil || *it.ProductID != storeID {
				t.Errorf("store line must keep its product reference")
			}
		case "Faro de Mesa":
			if it.ProductID != nil {
				t.Errorf("demo catalog line must store a null product reference")
			}
		default:
			t.Errorf("unexpected item %q", it.ProductName)
		}
	}
}

func TestSubmitRejectsEmptyCart(t *testing.T) {
	s, db := newTestService(t)

	if _, err := s.Submit(context.Background(), validForm(), cart.New("s1")); err == nil {
		t.Fatal("expected error for empty cart")
	}
	var count int64
	db.Model(&domain.Order{}).Count(&count)
	if count != 0 {
		t.Fatal("no order row may be written for an empty cart")
	}
}

func TestSubmitRejectsMissingFields(t *testing.T) {
	s, _ := newTestService(t)

	ct := cart.New("s1")
	ct.Items = []cart.Item{{ProductID: "mock-001", Name: "Orbe", Price: 420, Quantity: 1}}

	form := validForm()
	form.Email = "  "
	if _, err := s.Submit(context.Background(), form, ct); err == nil {
		t.Fatal("expected error for blank email")
	}
	if ct.Len() != 1 {
		t.Fatal("cart must be untouched after a failed submit")
	}
}

func TestUpdateStatus(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	ct := cart.New("s1")
	ct.Items = []cart.Item{{ProductID: "mock-001", Name: "Orbe", Price: 420, Quantity: 1}}
	ord, err := s.Submit(ctx, validForm(), ct)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := s.UpdateStatus(ctx, ord.ID, domain.OrderShipped); err != nil {
		t.Fatalf("update status: %v", err)
	}

	var stored domain.Order
	if err := db.Where("id = ?", ord.ID).First(&stored).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored.Status != domain.OrderShipped {
		t.Fatalf("status not updated, got %s", stored.Status)
	}
	if stored.Email != ord.Email {
		t.Fatal("status update must not touch other columns")
	}

	if err := s.UpdateStatus(ctx, ord.ID, "teleported"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if err := s.UpdateStatus(ctx, "12345", domain.OrderShipped); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	for i, status := range []string{domain.OrderPending, domain.OrderShipped, domain.OrderPending} {
		ct := cart.New("s1")
		ct.Items = []cart.Item{{ProductID: "mock-001", Name: "Orbe", Price: 100, Quantity: 1}}
		ord, err := s.Submit(ctx, validForm(), ct)
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if status != domain.OrderPending {
			if err := s.UpdateStatus(ctx, ord.ID, status); err != nil {
				t.Fatalf("set status: %v", err)
			}
		}
	}

	total, rows, err := s.List(ctx, Query{Status: domain.OrderPending}, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("expected 2 pending orders, got total=%d rows=%d", total, len(rows))
	}

	yesterday := time.Now().Add(-24 * time.Hour).Format("2006-01-02")
	total, _, err = s.List(ctx, Query{To: yesterday}, 0, 10)
	if err != nil {
		t.Fatalf("list with date: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected no orders before today, got %d", total)
	}

	if _, _, err := s.List(ctx, Query{From: "not a date"}, 0, 10); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}

func TestRevenueExcludesCancelled(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	var ids []string
	for _, price := range []float64{100, 50} {
		ct := cart.New("s1")
		ct.Items = []cart.Item{{ProductID: "mock-001", Name: "Orbe", Price: price, Quantity: 1}}
		ord, err := s.Submit(ctx, validForm(), ct)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		ids = append(ids, ord.ID)
	}
	if err := s.UpdateStatus(ctx, ids[1], domain.OrderCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	revenue, err := s.Revenue(ctx)
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	if revenue != 100 {
		t.Fatalf("expected revenue 100, got %v", revenue)
	}
}

func TestCreateValidatesProductRefsLikeCheckout(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	storeID := common.NewID()
	mockID := "mock-001"
	ord := domain.Order{
		FirstName: "Ana",
		LastName:  "Suárez",
		Email:     "ana@example.com",
		Address:   "Av. Santa Fe 1234, Buenos Aires",
		Items: []domain.SaleItem{
			{ProductID: &storeID, ProductName: "Orbe", Quantity: 1, Price: 420},
			{ProductID: &mockID, ProductName: "Orbe Suspendido", Quantity: 2, Price: 420},
		},
	}

	created, err := s.Create(ctx, &ord)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != domain.OrderPending {
		t.Fatalf("default status must be pending, got %s", created.Status)
	}

	var stored domain.Order
	if err := db.Preload("Items").Where("id = ?", created.ID).First(&stored).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	for _, it := range stored.Items {
		switch it.ProductName {
		case "Orbe":
			if it.ProductID == nil || *it.ProductID != storeID {
				t.Errorf("store product reference lost: %+v", it)
			}
		case "Orbe Suspendido":
			if it.ProductID != nil {
				t.Errorf("mock product reference must be stored null, got %v", *it.ProductID)
			}
		}
	}
}

func TestReplaceSwapsItemsAndFields(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	ct := cart.New("s1")
	ct.Items = []cart.Item{
		{ProductID: "mock-001", Name: "Orbe", Price: 420, Quantity: 2},
		{ProductID: "mock-002", Name: "Faro de Mesa", Price: 295, Quantity: 1},
	}
	ord, err := s.Submit(ctx, validForm(), ct)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	storeID := common.NewID()
	mockID := "mock-003"
	replaced, err := s.Replace(ctx, ord.ID, &domain.Order{
		FirstName: "Ana",
		LastName:  "Suárez",
		Email:     "ana.nueva@example.com",
		Address:   "Calle Falsa 123, Rosario",
		Status:    domain.OrderShipped,
		Items: []domain.SaleItem{
			{ProductID: &storeID, ProductName: "Nube", Quantity: 3, Price: 510},
			{ProductID: &mockID, ProductName: "Orbe Suspendido", Quantity: 1, Price: 420},
		},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if replaced.Email != "ana.nueva@example.com" || replaced.Status != domain.OrderShipped {
		t.Fatalf("header fields not replaced: %+v", replaced)
	}
	if !replaced.CreatedAt.Equal(ord.CreatedAt) {
		t.Fatal("replace must keep the original creation time")
	}

	var stored domain.Order
	if err := db.Preload("Items").Where("id = ?", ord.ID).First(&stored).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("expected 2 replacement items, got %d", len(stored.Items))
	}
	for _, it := range stored.Items {
		switch it.ProductName {
		case "Nube":
			if it.ProductID == nil || *it.ProductID != storeID {
				t.Errorf("store reference lost: %+v", it)
			}
		case "Orbe Suspendido":
			if it.ProductID != nil {
				t.Errorf("demo catalog reference must be stored null, got %v", *it.ProductID)
			}
		default:
			t.Errorf("stale line survived the replace: %q", it.ProductName)
		}
	}

	var leftovers int64
	db.Model(&domain.SaleItem{}).Where("order_id = ?", ord.ID).Count(&leftovers)
	if leftovers != 2 {
		t.Fatalf("old sale items must be removed, found %d rows", leftovers)
	}
}

func TestReplaceRejectsBadInput(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Replace(ctx, "12345", &domain.Order{
		Email: "a@b.c",
		Items: []domain.SaleItem{{ProductName: "Orbe", Quantity: 1, Price: 10}},
	})
	if err != gorm.ErrRecordNotFound {
		t.Fatalf("expected ErrRecordNotFound for unknown order, got %v", err)
	}

	ct := cart.New("s1")
	ct.Items = []cart.Item{{ProductID: "mock-001", Name: "Orbe", Price: 420, Quantity: 1}}
	ord, err := s.Submit(ctx, validForm(), ct)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := s.Replace(ctx, ord.ID, &domain.Order{Email: "a@b.c"}); !IsValidation(err) {
		t.Fatalf("replace without items must be a validation error, got %v", err)
	}
}

func TestValidationFailuresAreDistinguishable(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	if _, err := s.Submit(ctx, validForm(), cart.New("s1")); !IsValidation(err) {
		t.Fatalf("empty cart must be a validation failure, got %v", err)
	}

	form := validForm()
	form.Email = ""
	ct := cart.New("s1")
	ct.Items = []cart.Item{{ProductID: "mock-001", Name: "Orbe", Price: 420, Quantity: 1}}
	if _, err := s.Submit(ctx, form, ct); !IsValidation(err) {
		t.Fatalf("blank email must be a validation failure, got %v", err)
	}

	if err := s.UpdateStatus(ctx, "any", "teleported"); !IsValidation(err) {
		t.Fatalf("unknown status must be a validation failure, got %v", err)
	}

	// a broken store is not the customer's fault
	if err := db.Migrator().DropTable(&domain.Order{}); err != nil {
		t.Fatalf("drop: %v", err)
	}
	_, err := s.Submit(ctx, validForm(), ct)
	if err == nil {
		t.Fatal("expected a persistence failure")
	}
	if IsValidation(err) {
		t.Fatalf("store failure must not look like bad input: %v", err)
	}
}

func TestCreateRejectsBadOrders(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, &domain.Order{Email: "a@b.c"}); err == nil {
		t.Error("order without items must be rejected")
	}
	if _, err := s.Create(ctx, &domain.Order{
		Email: "a@b.c",
		Items: []domain.SaleItem{{ProductName: "Orbe", Quantity: 0, Price: 10}},
	}); err == nil {
		t.Error("zero quantity must be rejected")
	}
	if _, err := s.Create(ctx, &domain.Order{
		Email:  "a@b.c",
		Status: "teleported",
		Items:  []domain.SaleItem{{ProductName: "Orbe", Quantity: 1, Price: 10}},
	}); err == nil {
		t.Error("unknown status must be rejected")
	}
}
