package cart

import (
	"time"

	"github.com/nishadmahmud/apple-nation/internal/domain"
)

// state is the in-memory cart for one session. It is the authoritative copy;
// persistence trails it. Not safe for concurrent use, the Service serializes
// access.
type state struct {
	items    []domain.LineItem
	hydrated bool
}

// Snapshot is the read-only view handed to callers. Totals are recomputed
// from the lines on every snapshot, never stored alongside them.
type Snapshot struct {
	Items    []domain.LineItem `json:"items"`
	Subtotal float64           `json:"subtotal"`
	Count    int               `json:"count"`
	Hydrated bool              `json:"hydrated"`
}

// Has reports whether a line with the given key is in the cart.
func (s Snapshot) Has(key string) bool {
	for _, it := range s.Items {
		if it.Key == key {
			return true
		}
	}
	return false
}

// HasProduct reports whether any line references the given product,
// regardless of variant.
func (s Snapshot) HasProduct(productID string) bool {
	for _, it := range s.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

func (c *state) snapshot() Snapshot {
	items := make([]domain.LineItem, len(c.items))
	copy(items, c.items)

	var subtotal float64
	var count int
	for _, it := range c.items {
		subtotal += it.Price * float64(it.Quantity)
		count += it.Quantity
	}

	return Snapshot{
		Items:    items,
		Subtotal: subtotal,
		Count:    count,
		Hydrated: c.hydrated,
	}
}

func (c *state) find(key string) int {
	for i := range c.items {
		if c.items[i].Key == key {
			return i
		}
	}
	return -1
}

// addItem inserts a new line or bumps the quantity of an existing one.
// A non-positive quantity is coerced to 1 rather than rejected.
func (c *state) addItem(item domain.LineItem, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	item.Key = domain.DeriveKey(item.ProductID, item.VariantID)
	if i := c.find(item.Key); i >= 0 {
		c.items[i].Quantity += quantity
		return
	}

	if item.Image == "" {
		item.Image = domain.PlaceholderImage
	}
	item.Quantity = quantity
	item.AddedAt = time.Now()
	c.items = append(c.items, item)
}

// updateQuantity sets the quantity for an existing line, flooring at 1.
// Removal is explicit via removeItem; this never drops a line.
// Unknown keys are a no-op.
func (c *state) updateQuantity(key string, quantity int) {
	i := c.find(key)
	if i < 0 {
		return
	}
	if quantity < 1 {
		quantity = 1
	}
	c.items[i].Quantity = quantity
}

// removeItem drops a line entirely regardless of quantity.
func (c *state) removeItem(key string) {
	i := c.find(key)
	if i < 0 {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
}

func (c *state) clear() {
	c.items = nil
}
