package cart

import (
	"github.com/AvalonLA/atelier/internal/domain"
)

// Item is a cart line: a product snapshot plus a quantity. ProductID is
// kept as the string the catalog handed out, so mock entries survive in
// the cart next to real store rows.
type Item struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Note      string  `json:"note,omitempty"`
}

// Cart holds the ordered line items of one storefront session plus the
// sidebar visibility flag. All operations are synchronous; each session
// owns its cart, so no locking is needed here.
type Cart struct {
	ID    string `json:"id"`
	Open  bool   `json:"open"`
	Items []Item `json:"items"`
}

// New returns an empty cart for the given session id.
func New(id string) *Cart {
	return &Cart{ID: id, Items: []Item{}}
}

// AddItem appends the product with quantity 1, or increments the quantity
// when the product is already present. Adding always opens the sidebar.
func (c *Cart) AddItem(p domain.Product) {
	c.Open = true
	for i := range c.Items {
		if c.Items[i].ProductID == p.ID {
			c.Items[i].Quantity++
			return
		}
	}
	c.Items = append(c.Items, Item{
		ProductID: p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Image:     p.Image,
		Price:     p.Price,
		Quantity:  1,
	})
}

// RemoveItem deletes the matching line; absent ids are a no-op.
func (c *Cart) RemoveItem(productID string) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity sets the line quantity. A quantity below 1 removes the
// line, keeping the invariant that present items always have qty >= 1.
func (c *Cart) UpdateQuantity(productID string, qty int) {
	if qty < 1 {
		c.RemoveItem(productID)
		return
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = qty
			return
		}
	}
}

// Clear empties the cart. Called after a successful checkout.
func (c *Cart) Clear() {
	c.Items = c.Items[:0]
}

// Total sums unit price times quantity over all lines. Price is captured
// from the product at add time and is mandatory on every catalog entry.
func (c *Cart) Total() float64 {
	var sum float64
	for _, it := range c.Items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.Items)
}
