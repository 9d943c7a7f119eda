package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AvalonLA/atelier/internal/cart"
	"github.com/AvalonLA/atelier/internal/domain"
	"github.com/AvalonLA/atelier/internal/events"
	"github.com/AvalonLA/atelier/pkg/common"
	"github.com/AvalonLA/atelier/pkg/mailer"
)

// ValidationError rejects a submission before anything is written.
// Handlers map it to a client error; everything else an order write
// returns is a store failure and retryable.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalidf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a rejected submission rather
// than a persistence failure.
func IsValidation(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// Checkout is the customer-facing order form.
type Checkout struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

// Validate checks the form; every field is required.
func (c Checkout) Validate() error {
	fields := map[string]string{
		"firstName": c.FirstName,
		"lastName":  c.LastName,
		"email":     c.Email,
		"address":   c.Address,
		"city":      c.City,
		"zip":       c.Zip,
		"country":   c.Country,
	}
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			return invalidf("missing required field %s", name)
		}
	}
	return nil
}

// FullAddress flattens the form into the single stored address line.
func (c Checkout) FullAddress() string {
	return strings.Join([]string{c.Address, c.City, c.Zip, c.Country}, ", ")
}

// Query filters the admin order listing. From and To accept any common
// date layout.
type Query struct {
	Status string
	From   string
	To     string
	Email  string
}

// Service owns order writes and the admin listing.
type Service struct {
	db   *gorm.DB
	bus  *events.Bus
	mail *mailer.Mailer
}

func NewService(db *gorm.DB, bus *events.Bus, mail *mailer.Mailer) *Service {
	return &Service{db: db, bus: bus, mail: mail}
}

// Submit turns the cart into a persisted order. The order row and its
// line items are written in one transaction; prices are snapshotted from
// the cart lines, and demo catalog references are stored as null product
// links. The caller clears the cart only after Submit succeeds.
func (s *Service) Submit(ctx context.Context, chk Checkout, ct *cart.Cart) (*domain.Order, error) {
	if ct == nil || ct.Len() == 0 {
		return nil, invalidf("cart is empty")
	}
	if err := chk.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	ord := &domain.Order{
		ID:        common.NewID(),
		FirstName: strings.TrimSpace(chk.FirstName),
		LastName:  strings.TrimSpace(chk.LastName),
		Email:     strings.TrimSpace(chk.Email),
		Address:   chk.FullAddress(),
		Status:    domain.OrderPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, line := range ct.Items {
		item := domain.SaleItem{
			ID:           common.NewID(),
			OrderID:      ord.ID,
			ProductName:  line.Name,
			ProductImage: line.Image,
			Quantity:     line.Quantity,
			Price:        line.Price,
			Note:         line.Note,
			CreatedAt:    now,
		}
		if common.IsStoreID(line.ProductID) {
			pid := line.ProductID
			item.ProductID = &pid
		}
		ord.Items = append(ord.Items, item)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(ord).Error; err != nil {
			return err
		}
		return tx.Create(&ord.Items).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "persist order")
	}

	s.bus.PublishChange(events.TableOrders, events.ActionInsert, ord.ID)
	go s.mail.SendOrderConfirmation(ord)
	return ord, nil
}

// Create persists an order prepared by the admin console. Ids are
// assigned here; product references are validated the same way checkout
// validates them, storing null for anything that is not a store id.
func (s *Service) Create(ctx context.Context, ord *domain.Order) (*domain.Order, error) {
	if ord.Status == "" {
		ord.Status = domain.OrderPending
	}
	if err := validateItems(ord); err != nil {
		return nil, err
	}

	now := time.Now()
	ord.ID = common.NewID()
	ord.CreatedAt = now
	ord.UpdatedAt = now
	prepareItems(ord, now)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(ord).Error; err != nil {
			return err
		}
		return tx.Create(&ord.Items).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "persist order")
	}
	s.bus.PublishChange(events.TableOrders, events.ActionInsert, ord.ID)
	return ord, nil
}

// Replace overwrites an order and its line items from the admin edit
// form. The old items are dropped and the new set inserted in one
// transaction; product references go through the same null-on-invalid
// policy as checkout.
func (s *Service) Replace(ctx context.Context, id string, ord *domain.Order) (*domain.Order, error) {
	var existing domain.Order
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&existing).Error; err != nil {
		return nil, err
	}
	if ord.Status == "" {
		ord.Status = existing.Status
	}
	if err := validateItems(ord); err != nil {
		return nil, err
	}

	now := time.Now()
	ord.ID = id
	ord.CreatedAt = existing.CreatedAt
	ord.UpdatedAt = now
	prepareItems(ord, now)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&domain.SaleItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Order{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"first_name": ord.FirstName,
				"last_name":  ord.LastName,
				"email":      ord.Email,
				"address":    ord.Address,
				"status":     ord.Status,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}
		return tx.Create(&ord.Items).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "replace order")
	}
	s.bus.PublishChange(events.TableOrders, events.ActionUpdate, id)
	return ord, nil
}

func validateItems(ord *domain.Order) error {
	if len(ord.Items) == 0 {
		return invalidf("order has no items")
	}
	if !domain.ValidOrderStatus(ord.Status) {
		return invalidf("unknown order status %q", ord.Status)
	}
	for _, it := range ord.Items {
		if it.Quantity < 1 {
			return invalidf("item %q has quantity below 1", it.ProductName)
		}
		if it.Price < 0 {
			return invalidf("item %q has a negative price", it.ProductName)
		}
	}
	return nil
}

func prepareItems(ord *domain.Order, now time.Time) {
	for i := range ord.Items {
		it := &ord.Items[i]
		it.ID = common.NewID()
		it.OrderID = ord.ID
		it.CreatedAt = now
		if it.ProductID != nil && !common.IsStoreID(*it.ProductID) {
			it.ProductID = nil
		}
	}
}

// Get loads one order with its line items.
func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	var ord domain.Order
	err := s.db.WithContext(ctx).Preload("Items").
		Where("id = ?", id).First(&ord).Error
	if err != nil {
		return nil, errors.Wrap(err, "load order")
	}
	return &ord, nil
}

// List returns orders matching the query, newest first, with the total
// count for pagination.
func (s *Service) List(ctx context.Context, q Query, pos, limit int) (int64, []domain.Order, error) {
	tx := s.db.WithContext(ctx).Model(&domain.Order{})
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.Email != "" {
		tx = tx.Where("email = ?", q.Email)
	}
	if q.From != "" {
		t, err := dateparse.ParseLocal(q.From)
		if err != nil {
			return 0, nil, errors.Wrapf(err, "bad from date %q", q.From)
		}
		tx = tx.Where("created_at >= ?", t)
	}
	if q.To != "" {
		t, err := dateparse.ParseLocal(q.To)
		if err != nil {
			return 0, nil, errors.Wrapf(err, "bad to date %q", q.To)
		}
		tx = tx.Where("created_at <= ?", t)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return 0, nil, errors.Wrap(err, "count orders")
	}
	var rows []domain.Order
	err := tx.Preload("Items").Order("created_at DESC").
		Offset(pos).Limit(limit).Find(&rows).Error
	if err != nil {
		return 0, nil, errors.Wrap(err, "list orders")
	}
	return total, rows, nil
}

// UpdateStatus moves an order through the fulfillment pipeline. Only the
// status column is written, so concurrent edits to other fields are
// never clobbered.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	if !domain.ValidOrderStatus(status) {
		return invalidf("unknown order status %q", status)
	}
	res := s.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update order status")
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	s.bus.PublishChange(events.TableOrders, events.ActionUpdate, id)
	return nil
}

// Delete removes an order and its line items.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&domain.SaleItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "delete order")
	}
	s.bus.PublishChange(events.TableOrders, events.ActionDelete, id)
	return nil
}

// Revenue sums item totals of orders that have not been cancelled.
func (s *Service) Revenue(ctx context.Context) (float64, error) {
	var total float64
	err := s.db.WithContext(ctx).Model(&domain.SaleItem{}).
		Joins("JOIN orders ON orders.id = sale_items.order_id").
		Where("orders.status <> ?", domain.OrderCancelled).
		Select("COALESCE(SUM(sale_items.price * sale_items.quantity), 0)").
		Scan(&total).Error
	if err != nil {
		zap.L().Error("revenue query failed", zap.Error(err))
		return 0, errors.Wrap(err, "sum revenue")
	}
	return total, nil
}
