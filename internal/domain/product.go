package domain

import "time"

// Product categories
const (
	CategoryPendant = "pendant"
	CategoryFloor   = "floor"
	CategoryTable   = "table"
	CategoryTech    = "tech"
)

// LowStockThreshold flags products that need restocking.
const LowStockThreshold = 5

// Spec is a single technical specification line shown on the product page.
type Spec struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Product is a catalog entry. Image always mirrors gallery[0]; rows are
// soft-deleted first so the garbage collector can remove stored files
// before the row goes away.
type Product struct {
	ID              string     `gorm:"primaryKey;size:32" json:"id"`
	Name            string     `gorm:"index" json:"name"`
	Category        string     `gorm:"size:16;index" json:"category"`
	Description     string     `json:"description"`
	LongDescription string     `json:"longDescription"`
	Price           float64    `json:"price"`
	SalePrice       *float64   `json:"sale_price,omitempty"`
	Stock           int        `json:"stock"`
	Featured        bool       `json:"featured"`
	Visible         bool       `gorm:"default:true" json:"visible"`
	Image           string     `gorm:"size:1024" json:"image"`
	Gallery         []string   `gorm:"serializer:json" json:"gallery"`
	Tag             string     `gorm:"size:64" json:"tag"`
	Specs           []Spec     `gorm:"serializer:json" json:"specs"`
	DeletedAt       *time.Time `gorm:"index" json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// ValidCategory reports whether c is one of the catalog categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryPendant, CategoryFloor, CategoryTable, CategoryTech:
		return true
	}
	return false
}

// LowStock reports whether the product is below the restock threshold.
func (p Product) LowStock() bool {
	return p.Stock < LowStockThreshold
}

// PinPrimaryImage enforces the gallery invariant: the first gallery entry
// is the primary image, an empty gallery clears it.
func (p *Product) PinPrimaryImage() {
	if len(p.Gallery) > 0 {
		p.Image = p.Gallery[0]
	} else {
		p.Image = ""
	}
}
