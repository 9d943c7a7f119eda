package domain

import "time"

// Consultation statuses
const (
	ConsultationPending   = "pending"
	ConsultationResponded = "responded"
)

// ValidConsultationStatus reports whether s is a known consultation status.
func ValidConsultationStatus(s string) bool {
	return s == ConsultationPending || s == ConsultationResponded
}

// Consultation is a customer inquiry filed from the storefront contact
// flow or by an admin. ProductName is free text, optionally matched
// against the catalog by name.
type Consultation struct {
	ID           string    `gorm:"primaryKey;size:32" json:"id"`
	CustomerName string    `gorm:"index" json:"customerName"`
	ProductName  string    `json:"productName"`
	Query        string    `json:"query"`
	Status       string    `gorm:"size:16;index" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Consultation) TableName() string {
	return "consultations"
}
