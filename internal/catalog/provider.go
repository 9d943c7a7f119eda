package catalog

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AvalonLA/atelier/internal/domain"
)

// FlagReader exposes the feature flags the provider branches on.
type FlagReader interface {
	UseMockData() bool
}

// Result is a catalog read. Degraded marks a live read that silently fell
// back to the demo dataset, so callers can surface the degraded mode
// instead of presenting demo rows as real.
type Result struct {
	Products []domain.Product `json:"products"`
	Degraded bool             `json:"degraded"`
}

// Provider serves the product list, switching between the static demo
// dataset and the live store on the use_mock_data flag.
type Provider struct {
	db    *gorm.DB
	flags FlagReader
}

func NewProvider(db *gorm.DB, flags FlagReader) *Provider {
	return &Provider{db: db, flags: flags}
}

// List returns the catalog newest-first. includeHidden is set by the admin
// view; the storefront only sees visible products. A live read failure
// degrades to the demo dataset and is reported, never surfaced as an error.
func (p *Provider) List(ctx context.Context, includeHidden bool) Result {
	if p.flags.UseMockData() {
		return Result{Products: filterVisible(MockProducts, includeHidden)}
	}

	var rows []domain.Product
	q := p.db.WithContext(ctx).Where("deleted_at IS NULL")
	if !includeHidden {
		q = q.Where("visible = ?", true)
	}
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		zap.L().Warn("catalog read failed, degrading to demo dataset", zap.Error(err))
		return Result{Products: filterVisible(MockProducts, includeHidden), Degraded: true}
	}
	return Result{Products: rows}
}

// Get returns one product by id, searching the same source List uses.
func (p *Provider) Get(ctx context.Context, id string) (*domain.Product, error) {
	if p.flags.UseMockData() {
		for i := range MockProducts {
			if MockProducts[i].ID == id {
				prod := MockProducts[i]
				return &prod, nil
			}
		}
		return nil, gorm.ErrRecordNotFound
	}
	var prod domain.Product
	if err := p.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).First(&prod).Error; err != nil {
		return nil, err
	}
	return &prod, nil
}

// SearchNames returns catalog names containing q, case-insensitive, for
// the consultation autocomplete.
func (p *Provider) SearchNames(ctx context.Context, q string, limit int) []string {
	if limit <= 0 {
		limit = 10
	}
	res := p.List(ctx, false)
	names := make([]string, 0, limit)
	for _, prod := range res.Products {
		if strings.Contains(strings.ToLower(prod.Name), strings.ToLower(q)) {
			names = append(names, prod.Name)
			if len(names) >= limit {
				break
			}
		}
	}
	return names
}

func filterVisible(products []domain.Product, includeHidden bool) []domain.Product {
	if includeHidden {
		out := make([]domain.Product, len(products))
		copy(out, products)
		return out
	}
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Visible {
			out = append(out, p)
		}
	}
	return out
}
