package domain

import "time"

// Order statuses
const (
	OrderPending   = "pending"
	OrderProcessed = "processed"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderProcessed, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Order is a customer purchase. Totals are never stored: they are always
// recomputed from the item rows.
type Order struct {
	ID        string     `gorm:"primaryKey;size:32" json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `gorm:"index" json:"email"`
	Address   string     `json:"address"`
	Status    string     `gorm:"size:16;index" json:"status"`
	Items     []SaleItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// Total is the displayed order amount, computed from item price snapshots.
func (o Order) Total() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

// SaleItem is a single order line. Price is captured at checkout time and
// never recomputed from the live catalog. ProductID is null when the cart
// line referenced a mock catalog entry rather than a store row.
type SaleItem struct {
	ID           string    `gorm:"primaryKey;size:32" json:"id"`
	OrderID      string    `gorm:"size:32;index" json:"order_id"`
	ProductID    *string   `gorm:"size:32;index" json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductImage string    `gorm:"size:1024" json:"product_image"`
	Quantity     int       `json:"quantity"`
	Price        float64   `json:"price"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (SaleItem) TableName() string {
	return "sale_items"
}
