package app

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AvalonLA/atelier/internal/domain"
	"github.com/AvalonLA/atelier/internal/events"
)

func newSettingsManager(t *testing.T) (*SettingsManager, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.SiteConfig{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSettingsManager(db, events.NewBus()), db
}

func TestLoadSeedsDefaultRow(t *testing.T) {
	m, db := newSettingsManager(t)
	if err := m.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	var row domain.SiteConfig
	if err := db.Where("id = ?", 1).First(&row).Error; err != nil {
		t.Fatalf("settings row not seeded: %v", err)
	}
	if row.SiteName != "ATELIER" || row.Theme != "dark" {
		t.Fatalf("unexpected defaults: %+v", row)
	}
	if !m.Current().UseMockData {
		t.Fatal("defaults should start in demo mode")
	}
}

func TestLoadReadsExistingRow(t *testing.T) {
	m, db := newSettingsManager(t)
	row := domain.DefaultSiteConfig()
	row.SiteName = "Luz y Forma"
	row.UseMockData = false
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := m.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Current().SiteName != "Luz y Forma" {
		t.Fatalf("cache not refreshed: %+v", m.Current())
	}
	if m.UseMockData() {
		t.Fatal("stored flag must win over the default")
	}
}

func TestUpdateIsPartial(t *testing.T) {
	m, db := newSettingsManager(t)
	if err := m.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	next, err := m.Update(map[string]interface{}{
		"theme":     "light",
		"ai_active": false,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if next.Theme != "light" || next.AIActive {
		t.Fatalf("patch not applied: %+v", next)
	}
	if next.SiteName != "ATELIER" {
		t.Fatal("unpatched fields must survive the update")
	}
	if m.AIActive() {
		t.Fatal("flag reader must see the patched value immediately")
	}

	// persist runs in the background
	time.Sleep(300 * time.Millisecond)
	var row domain.SiteConfig
	if err := db.Where("id = ?", 1).First(&row).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	if row.Theme != "light" || row.AIActive {
		t.Fatalf("patch not persisted: %+v", row)
	}
	if row.ContactEmail != "contact@atelier.com" {
		t.Fatal("persist must only touch patched columns")
	}
}

func TestUpdatePersistsWithoutSeedRow(t *testing.T) {
	m, db := newSettingsManager(t)
	// no Load: the singleton row does not exist yet

	if _, err := m.Update(map[string]interface{}{"theme": "light"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	time.Sleep(300 * time.Millisecond)
	var row domain.SiteConfig
	if err := db.Where("id = ?", 1).First(&row).Error; err != nil {
		t.Fatalf("update must create the row when it is missing: %v", err)
	}
	if row.Theme != "light" {
		t.Fatalf("patch lost on first write: %+v", row)
	}
	if row.SiteName != "ATELIER" {
		t.Fatalf("first write must carry the cached snapshot: %+v", row)
	}
}

func TestUpdateRejectsUnknownKey(t *testing.T) {
	m, _ := newSettingsManager(t)
	if err := m.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, err := m.Update(map[string]interface{}{"no_such_field": 1}); err == nil {
		t.Fatal("unknown settings key must be rejected")
	}
	if m.Current().SiteName != "ATELIER" {
		t.Fatal("rejected patch must not dirty the cache")
	}
}

func TestSettingsAccessors(t *testing.T) {
	m, _ := newSettingsManager(t)
	if err := m.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := m.GetString("site_name"); got != "ATELIER" {
		t.Fatalf("GetString site_name = %q", got)
	}
	if !m.GetBool("use_mock_data") {
		t.Fatal("GetBool use_mock_data should be true by default")
	}
}
