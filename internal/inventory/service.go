package inventory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/AvalonLA/atelier/internal/domain"
	"github.com/AvalonLA/atelier/internal/events"
	"github.com/AvalonLA/atelier/internal/storage"
	"github.com/AvalonLA/atelier/pkg/common"
)

// Price adjustment modes and directions
const (
	AdjustFixed   = "fixed"
	AdjustPercent = "percent"

	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
)

// PriceAdjustment is a bulk price change: a fixed amount or a percentage,
// applied up or down. Results are floored at zero.
type PriceAdjustment struct {
	Mode      string  `json:"mode"`
	Direction string  `json:"direction"`
	Value     float64 `json:"value"`
}

// Validate checks the adjustment parameters.
func (a PriceAdjustment) Validate() error {
	if a.Mode != AdjustFixed && a.Mode != AdjustPercent {
		return errors.Errorf("unknown adjustment mode %q", a.Mode)
	}
	if a.Direction != DirectionIncrease && a.Direction != DirectionDecrease {
		return errors.Errorf("unknown adjustment direction %q", a.Direction)
	}
	if a.Value < 0 {
		return errors.New("adjustment value must not be negative")
	}
	return nil
}

// Apply computes the new price, floored at 0.
func (a PriceAdjustment) Apply(price float64) float64 {
	delta := a.Value
	if a.Mode == AdjustPercent {
		delta = price * a.Value / 100
	}
	if a.Direction == DirectionDecrease {
		delta = -delta
	}
	next := price + delta
	if next < 0 {
		return 0
	}
	return next
}

// Service owns product writes: create, update with gallery file cleanup,
// soft delete with deferred garbage collection, and the bulk price edit.
type Service struct {
	db    *gorm.DB
	files *storage.FileStore
	bus   *events.Bus
	pool  *ants.Pool
}

func NewService(db *gorm.DB, files *storage.FileStore, bus *events.Bus, pool *ants.Pool) *Service {
	return &Service{db: db, files: files, bus: bus, pool: pool}
}

// Create inserts a product with a freshly assigned store id. The first
// gallery entry is pinned as the primary image.
func (s *Service) Create(ctx context.Context, p *domain.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("product name is required")
	}
	if !domain.ValidCategory(p.Category) {
		return errors.Errorf("unknown category %q", p.Category)
	}
	p.ID = common.NewID()
	p.PinPrimaryImage()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return errors.Wrap(err, "create product")
	}
	s.bus.PublishChange(events.TableProducts, events.ActionInsert, p.ID)
	return nil
}

// Update replaces the product row. Gallery entries dropped by the edit
// have their stored files removed, so edits never leave orphaned files;
// the removal is not transactional with the row write.
func (s *Service) Update(ctx context.Context, p *domain.Product) error {
	var old domain.Product
	if err := s.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", p.ID).First(&old).Error; err != nil {
		return errors.Wrap(err, "load product")
	}
	if !domain.ValidCategory(p.Category) {
		return errors.Errorf("unknown category %q", p.Category)
	}

	if removed := diffGallery(old.Gallery, p.Gallery); len(removed) > 0 {
		g, _ := errgroup.WithContext(ctx)
		for _, url := range removed {
			url := url
			g.Go(func() error {
				return s.files.Remove(storage.BucketProducts, url)
			})
		}
		if err := g.Wait(); err != nil {
			zap.L().Warn("gallery cleanup incomplete",
				zap.String("product_id", p.ID), zap.Error(err))
		}
	}

	p.PinPrimaryImage()
	p.CreatedAt = old.CreatedAt
	p.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return errors.Wrap(err, "save product")
	}
	s.bus.PublishChange(events.TableProducts, events.ActionUpdate, p.ID)
	return nil
}

// ReorderGallery moves one gallery entry and re-pins the primary image.
func (s *Service) ReorderGallery(ctx context.Context, id string, from, to int) (*domain.Product, error) {
	var p domain.Product
	if err := s.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).First(&p).Error; err != nil {
		return nil, errors.Wrap(err, "load product")
	}
	n := len(p.Gallery)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, errors.New("gallery index out of range")
	}
	if from != to {
		moved := p.Gallery[from]
		p.Gallery = append(p.Gallery[:from], p.Gallery[from+1:]...)
		rest := append([]string{}, p.Gallery[to:]...)
		p.Gallery = append(append(p.Gallery[:to], moved), rest...)
	}
	p.PinPrimaryImage()
	p.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, errors.Wrap(err, "save product")
	}
	s.bus.PublishChange(events.TableProducts, events.ActionUpdate, p.ID)
	return &p, nil
}

// Delete soft-deletes the row in a single write. Stored gallery files are
// reclaimed later by CollectGarbage, so a crash can never leave a live
// row pointing at deleted files.
func (s *Service) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", time.Now())
	if res.Error != nil {
		return errors.Wrap(res.Error, "soft delete product")
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	s.bus.PublishChange(events.TableProducts, events.ActionDelete, id)
	return nil
}

// CollectGarbage removes the stored files of soft-deleted products and
// then purges the rows. Run periodically from the job scheduler.
func (s *Service) CollectGarbage(ctx context.Context) (int, error) {
	var rows []domain.Product
	if err := s.db.WithContext(ctx).
		Where("deleted_at IS NOT NULL").Find(&rows).Error; err != nil {
		return 0, errors.Wrap(err, "list deleted products")
	}

	purged := 0
	for _, p := range rows {
		failed := false
		for _, url := range p.Gallery {
			if err := s.files.Remove(storage.BucketProducts, url); err != nil {
				zap.L().Warn("image gc failed, will retry",
					zap.String("product_id", p.ID),
					zap.String("url", url),
					zap.Error(err))
				failed = true
			}
		}
		if failed {
			continue
		}
		if err := s.db.WithContext(ctx).
			Where("id = ?", p.ID).Delete(&domain.Product{}).Error; err != nil {
			zap.L().Error("failed to purge product row",
				zap.String("product_id", p.ID), zap.Error(err))
			continue
		}
		purged++
	}
	return purged, nil
}

// BulkAdjustPrices applies the adjustment to every selected product,
// fanning the per-product updates out on the worker pool. The first
// failure is returned so the caller can reload from the source of truth;
// there is no partial-commit tracking.
func (s *Service) BulkAdjustPrices(ctx context.Context, ids []string, adj PriceAdjustment) error {
	if err := adj.Validate(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return errors.New("no products selected")
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, id := range ids {
		id := id
		wg.Add(1)
		task := func() {
			defer wg.Done()
			err := s.adjustOne(ctx, id, adj)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}
		if err := s.pool.Submit(task); err != nil {
			// pool saturated or released, run inline
			task()
		}
	}
	wg.Wait()

	if firstErr != nil {
		return errors.Wrap(firstErr, "bulk price adjustment")
	}
	s.bus.PublishChange(events.TableProducts, events.ActionUpdate, "bulk")
	return nil
}

func (s *Service) adjustOne(ctx context.Context, id string, adj PriceAdjustment) error {
	var p domain.Product
	if err := s.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).First(&p).Error; err != nil {
		return errors.Wrapf(err, "product %s", id)
	}
	return s.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"price":      adj.Apply(p.Price),
			"updated_at": time.Now(),
		}).Error
}

// LowStock returns live products below the restock threshold.
func (s *Service) LowStock(ctx context.Context) ([]domain.Product, error) {
	var rows []domain.Product
	err := s.db.WithContext(ctx).
		Where("deleted_at IS NULL AND stock < ?", domain.LowStockThreshold).
		Order("stock ASC").Find(&rows).Error
	return rows, errors.Wrap(err, "list low stock")
}

// diffGallery returns entries present in old but not in new.
func diffGallery(old, new []string) []string {
	keep := make(map[string]struct{}, len(new))
	for _, url := range new {
		keep[url] = struct{}{}
	}
	var removed []string
	for _, url := range old {
		if _, ok := keep[url]; !ok {
			removed = append(removed, url)
		}
	}
	return removed
}
