package app

import (
	"errors"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AvalonLA/atelier/internal/domain"
	"github.com/AvalonLA/atelier/internal/events"
)

// SettingsManager caches the singleton site configuration row. Reads
// are served from memory; updates commit to the cache first and persist
// in the background, so the console stays responsive even when the
// write is slow. A failed persist is logged, never surfaced.
type SettingsManager struct {
	db  *gorm.DB
	bus *events.Bus

	mu      sync.RWMutex
	current domain.SiteConfig
}

func NewSettingsManager(db *gorm.DB, bus *events.Bus) *SettingsManager {
	return &SettingsManager{db: db, bus: bus, current: domain.DefaultSiteConfig()}
}

// Load reads the settings row, creating it from defaults on first run.
func (m *SettingsManager) Load() error {
	var row domain.SiteConfig
	err := m.db.Where("id = ?", 1).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = domain.DefaultSiteConfig()
		now := time.Now()
		row.CreatedAt = now
		row.UpdatedAt = now
		if cerr := m.db.Create(&row).Error; cerr != nil {
			zap.L().Error("failed to seed site config", zap.Error(cerr))
			return cerr
		}
		zap.L().Info("initialized default site config")
	case err != nil:
		return err
	}

	m.mu.Lock()
	m.current = row
	m.mu.Unlock()
	return nil
}

// Current returns a copy of the cached configuration.
func (m *SettingsManager) Current() domain.SiteConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Update applies a partial patch. Unknown keys are rejected. The cache
// is updated immediately and only the patched columns are written to
// the store, asynchronously; concurrent patches to different fields
// never overwrite each other.
func (m *SettingsManager) Update(patch map[string]interface{}) (domain.SiteConfig, error) {
	if len(patch) == 0 {
		return m.Current(), nil
	}

	m.mu.Lock()
	next := m.current
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &next,
		ErrorUnused: true,
	})
	if err != nil {
		m.mu.Unlock()
		return domain.SiteConfig{}, err
	}
	if err := dec.Decode(patch); err != nil {
		m.mu.Unlock()
		return domain.SiteConfig{}, err
	}
	themeChanged := next.Theme != m.current.Theme
	next.UpdatedAt = time.Now()
	m.current = next
	m.mu.Unlock()

	cols := make(map[string]interface{}, len(patch)+1)
	for k, v := range patch {
		cols[k] = v
	}
	cols["updated_at"] = next.UpdatedAt
	go func() {
		res := m.db.Model(&domain.SiteConfig{}).Where("id = ?", 1).Updates(cols)
		if res.Error != nil {
			zap.L().Error("site config persist failed, cache still updated",
				zap.Any("patch", patch), zap.Error(res.Error))
			return
		}
		if res.RowsAffected == 0 {
			// row was never seeded, write the full snapshot instead
			row := next
			row.ID = 1
			row.CreatedAt = row.UpdatedAt
			if cerr := m.db.Create(&row).Error; cerr != nil {
				zap.L().Error("site config persist failed, cache still updated",
					zap.Any("patch", patch), zap.Error(cerr))
			}
		}
	}()

	m.bus.PublishChange(events.TableConfig, events.ActionUpdate, "1")
	if themeChanged {
		zap.L().Info("storefront theme changed", zap.String("theme", next.Theme))
	}
	return next, nil
}

// GetString reads one settings field by its patch key.
func (m *SettingsManager) GetString(key string) string {
	return cast.ToString(m.asMap()[key])
}

// GetBool reads one settings field by its patch key.
func (m *SettingsManager) GetBool(key string) bool {
	return cast.ToBool(m.asMap()[key])
}

// GetInt64 reads one settings field by its patch key.
func (m *SettingsManager) GetInt64(key string) int64 {
	return cast.ToInt64(m.asMap()[key])
}

func (m *SettingsManager) asMap() map[string]interface{} {
	cur := m.Current()
	out := map[string]interface{}{}
	if err := mapstructure.Decode(&cur, &out); err != nil {
		zap.L().Error("settings decode failed", zap.Error(err))
	}
	return out
}

// UseMockData reports whether the storefront serves the demo catalog.
func (m *SettingsManager) UseMockData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.UseMockData
}

// AIActive reports whether the lighting assistant is enabled.
func (m *SettingsManager) AIActive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.AIActive
}
