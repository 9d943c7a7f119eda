package consultation

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/AvalonLA/atelier/internal/domain"
	"github.com/AvalonLA/atelier/internal/events"
	"github.com/AvalonLA/atelier/pkg/common"
)

// Patch is a partial consultation edit. Nil fields are left untouched.
type Patch struct {
	CustomerName *string `json:"customerName"`
	ProductName  *string `json:"productName"`
	Query        *string `json:"query"`
}

// Service owns consultation writes for both the storefront contact flow
// and the admin console.
type Service struct {
	db  *gorm.DB
	bus *events.Bus
}

func NewService(db *gorm.DB, bus *events.Bus) *Service {
	return &Service{db: db, bus: bus}
}

// Create files a consultation. Customer name and query are required;
// the status defaults to pending.
func (s *Service) Create(ctx context.Context, c *domain.Consultation) error {
	c.CustomerName = strings.TrimSpace(c.CustomerName)
	c.ProductName = strings.TrimSpace(c.ProductName)
	c.Query = strings.TrimSpace(c.Query)
	if c.CustomerName == "" || c.Query == "" {
		return errors.New("customer name and query are required")
	}
	if c.Status == "" {
		c.Status = domain.ConsultationPending
	}
	if !domain.ValidConsultationStatus(c.Status) {
		return errors.Errorf("unknown consultation status %q", c.Status)
	}
	now := time.Now()
	c.ID = common.NewID()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return errors.Wrap(err, "create consultation")
	}
	s.bus.PublishChange(events.TableConsultations, events.ActionInsert, c.ID)
	return nil
}

// Update patches the editable fields. Only the columns present in the
// patch are written.
func (s *Service) Update(ctx context.Context, id string, p Patch) (*domain.Consultation, error) {
	cols := map[string]interface{}{}
	if p.CustomerName != nil {
		name := strings.TrimSpace(*p.CustomerName)
		if name == "" {
			return nil, errors.New("customer name must not be empty")
		}
		cols["customer_name"] = name
	}
	if p.ProductName != nil {
		cols["product_name"] = strings.TrimSpace(*p.ProductName)
	}
	if p.Query != nil {
		query := strings.TrimSpace(*p.Query)
		if query == "" {
			return nil, errors.New("query must not be empty")
		}
		cols["query"] = query
	}
	if len(cols) == 0 {
		return nil, errors.New("no fields to update")
	}
	cols["updated_at"] = time.Now()

	res := s.db.WithContext(ctx).Model(&domain.Consultation{}).
		Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "update consultation")
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var out domain.Consultation
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, errors.Wrap(err, "reload consultation")
	}
	s.bus.PublishChange(events.TableConsultations, events.ActionUpdate, id)
	return &out, nil
}

// UpdateStatus moves a consultation between pending and responded. Only
// the status column is written.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	if !domain.ValidConsultationStatus(status) {
		return errors.Errorf("unknown consultation status %q", status)
	}
	res := s.db.WithContext(ctx).Model(&domain.Consultation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update consultation status")
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	s.bus.PublishChange(events.TableConsultations, events.ActionUpdate, id)
	return nil
}

// Delete removes a consultation.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Consultation{}).Error; err != nil {
		return errors.Wrap(err, "delete consultation")
	}
	s.bus.PublishChange(events.TableConsultations, events.ActionDelete, id)
	return nil
}
