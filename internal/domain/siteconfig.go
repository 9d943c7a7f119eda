package domain

import "time"

// SiteConfig is the singleton settings record. Exactly one row is
// authoritative; when the table is empty the hard-coded defaults apply.
type SiteConfig struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	SiteName        string    `json:"site_name" mapstructure:"site_name"`
	SiteDescription string    `json:"site_description" mapstructure:"site_description"`
	ContactEmail    string    `json:"contact_email" mapstructure:"contact_email"`
	ContactPhone    string    `json:"contact_phone" mapstructure:"contact_phone"`
	OpeningHours    string    `json:"opening_hours" mapstructure:"opening_hours"`
	Theme           string    `gorm:"size:16" json:"theme" mapstructure:"theme"`
	AIActive        bool      `json:"ai_active" mapstructure:"ai_active"`
	UseMockData     bool      `json:"use_mock_data" mapstructure:"use_mock_data"`
	HeroTitle       string    `json:"hero_title" mapstructure:"hero_title"`
	HeroSubtitle    string    `json:"hero_subtitle" mapstructure:"hero_subtitle"`
	AboutText       string    `json:"about_text" mapstructure:"about_text"`
	VisionText      string    `json:"vision_text" mapstructure:"vision_text"`
	FooterText      string    `json:"footer_text" mapstructure:"footer_text"`
	CreatedAt       time.Time `json:"created_at" mapstructure:"-"`
	UpdatedAt       time.Time `json:"updated_at" mapstructure:"-"`
}

func (SiteConfig) TableName() string {
	return "site_config"
}

// DefaultSiteConfig applies when no settings row exists yet.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		ID:              1,
		SiteName:        "ATELIER",
		SiteDescription: "Iluminación de Vanguardia",
		ContactEmail:    "contact@atelier.com",
		ContactPhone:    "+54 9 11 1234 5678",
		OpeningHours:    "Lun - Vie: 10:00 - 19:00",
		Theme:           "dark",
		AIActive:        true,
		UseMockData:     true,
	}
}
