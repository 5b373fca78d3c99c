// internal/domain/cart/entity.go
package cart

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/blackbox-gh/storefront-backend/internal/domain/product"
)

// Line represents one cart entry. Product fields are denormalized at
// add time; identity is (ProductID, canonical SelectedOptions).
type Line struct {
	ProductID       string            `json:"product_id"`
	Name            string            `json:"name"`
	Category        string            `json:"category"`
	Price           int64             `json:"price"` // unit price at add time, minor units
	Image           string            `json:"image"`
	SelectedOptions map[string]string `json:"selected_options,omitempty"`
	Quantity        int               `json:"quantity"`
	AddedAt         time.Time         `json:"added_at"`
}

// Key returns the line's identity key
func (l *Line) Key() string {
	return LineKey(l.ProductID, l.SelectedOptions)
}

// LineKey computes the identity key for a product and option selection.
// encoding/json marshals map keys in sorted order, so two option maps
// with the same pairs always produce the same key regardless of how
// they were built.
func LineKey(productID string, selectedOptions map[string]string) string {
	if len(selectedOptions) == 0 {
		return productID + "::{}"
	}
	encoded, err := json.Marshal(selectedOptions)
	if err != nil {
		// map[string]string cannot fail to marshal
		return productID + "::{}"
	}
	return fmt.Sprintf("%s::%s", productID, encoded)
}

// sameSelection compares option maps structurally
func sameSelection(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// Cart is the per-owner cart ledger, stored whole as one blob
type Cart struct {
	Items     []Line    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an empty cart
func New() *Cart {
	now := time.Now().UTC()
	return &Cart{
		Items:     []Line{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem merges quantity into an existing line with the same identity,
// or appends a new denormalized line. Always succeeds.
func (c *Cart) AddItem(p *product.Product, selectedOptions map[string]string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	key := LineKey(p.ID, selectedOptions)
	for i := range c.Items {
		if c.Items[i].Key() == key {
			c.Items[i].Quantity += quantity
			c.UpdatedAt = time.Now().UTC()
			return
		}
	}

	c.Items = append(c.Items, Line{
		ProductID:       p.ID,
		Name:            p.Name,
		Category:        string(p.Category),
		Price:           p.DiscountedPrice(),
		Image:           p.Image,
		SelectedOptions: selectedOptions,
		Quantity:        quantity,
		AddedAt:         time.Now().UTC(),
	})
	c.UpdatedAt = time.Now().UTC()
}

// RemoveItem deletes the line with the given identity key; no-op if absent
func (c *Cart) RemoveItem(key string) {
	for i := range c.Items {
		if c.Items[i].Key() == key {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.UpdatedAt = time.Now().UTC()
			return
		}
	}
}

// UpdateQuantity locates a line by structural (productID, options) match
// and applies the delta, clamped at 1. Removal is a distinct action; this
// path never drops a line. Returns false when no line matches.
func (c *Cart) UpdateQuantity(productID string, selectedOptions map[string]string, delta int) bool {
	for i := range c.Items {
		if c.Items[i].ProductID != productID || !sameSelection(c.Items[i].SelectedOptions, selectedOptions) {
			continue
		}
		newQty := c.Items[i].Quantity + delta
		if newQty < 1 {
			newQty = 1
		}
		c.Items[i].Quantity = newQty
		c.UpdatedAt = time.Now().UTC()
		return true
	}
	return false
}

// Quantity returns the quantity carried for an identity, 0 when absent
func (c *Cart) Quantity(productID string, selectedOptions map[string]string) int {
	key := LineKey(productID, selectedOptions)
	for i := range c.Items {
		if c.Items[i].Key() == key {
			return c.Items[i].Quantity
		}
	}
	return 0
}

// Merge folds another cart into this one, summing quantities per identity
func (c *Cart) Merge(other *Cart) {
	for _, line := range other.Items {
		merged := false
		for i := range c.Items {
			if c.Items[i].Key() == line.Key() {
				c.Items[i].Quantity += line.Quantity
				merged = true
				break
			}
		}
		if !merged {
			c.Items = append(c.Items, line)
		}
	}
	c.UpdatedAt = time.Now().UTC()
}

// Clear drops every line
func (c *Cart) Clear() {
	c.Items = []Line{}
	c.UpdatedAt = time.Now().UTC()
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Totals represents computed cart totals
type Totals struct {
	ItemCount     int   `json:"item_count"`     // number of distinct lines
	TotalQuantity int   `json:"total_quantity"` // sum of all quantities
	Subtotal      int64 `json:"subtotal"`
	Tax           int64 `json:"tax"`
	Total         int64 `json:"total"`
}

// ComputeTotals calculates totals for a line list. Pure: same lines and
// rate always yield the same result. Tax is taxRateBasisPoints/10000 of
// the subtotal.
func ComputeTotals(lines []Line, taxRateBasisPoints int) Totals {
	var totals Totals

	totals.ItemCount = len(lines)
	for _, line := range lines {
		totals.TotalQuantity += line.Quantity
		totals.Subtotal += line.Price * int64(line.Quantity)
	}

	totals.Tax = totals.Subtotal * int64(taxRateBasisPoints) / 10000
	totals.Total = totals.Subtotal + totals.Tax

	return totals
}
