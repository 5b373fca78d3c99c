// internal/domain/cart/entity_test.go
package cart

import (
	"testing"

	"github.com/blackbox-gh/storefront-backend/internal/domain/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func phone() *product.Product {
	return &product.Product{
		ID:       "BB-001",
		Name:     "iPhone 15 Pro Max",
		Category: product.CategoryPhones,
		Price:    1850000,
		Stock:    8,
	}
}

func TestLineKeyCanonicalization(t *testing.T) {
	// Option maps with identical pairs must yield the same identity
	// regardless of construction order
	a := map[string]string{}
	a["Color"] = "Silver"
	a["Storage"] = "256GB"

	b := map[string]string{}
	b["Storage"] = "256GB"
	b["Color"] = "Silver"

	assert.Equal(t, LineKey("BB-001", a), LineKey("BB-001", b))
	assert.NotEqual(t, LineKey("BB-001", a), LineKey("BB-002", a))
	assert.NotEqual(t, LineKey("BB-001", a), LineKey("BB-001", map[string]string{"Color": "Blue", "Storage": "256GB"}))
}

func TestLineKeyEmptyOptions(t *testing.T) {
	assert.Equal(t, LineKey("BB-001", nil), LineKey("BB-001", map[string]string{}))
}

func TestAddItemMergesSameIdentity(t *testing.T) {
	c := New()

	c.AddItem(phone(), map[string]string{}, 1)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 1, c.Items[0].Quantity)

	c.AddItem(phone(), map[string]string{}, 2)
	require.Len(t, c.Items, 1, "re-adding the same identity must merge, not append")
	assert.Equal(t, 3, c.Items[0].Quantity)
}

func TestAddItemMergesAcrossOptionOrder(t *testing.T) {
	c := New()

	first := map[string]string{"Color": "Silver", "Storage": "256GB"}
	second := map[string]string{"Storage": "256GB", "Color": "Silver"}

	c.AddItem(phone(), first, 1)
	c.AddItem(phone(), second, 1)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestAddItemDistinctOptionsDistinctLines(t *testing.T) {
	c := New()

	c.AddItem(phone(), map[string]string{"Color": "Silver"}, 1)
	c.AddItem(phone(), map[string]string{"Color": "Blue Titanium"}, 1)

	assert.Len(t, c.Items, 2)
}

func TestAddItemSnapshotsDiscountedPrice(t *testing.T) {
	p := phone()
	p.DiscountPercent = 10

	c := New()
	c.AddItem(p, nil, 1)

	assert.Equal(t, int64(1665000), c.Items[0].Price)
}

func TestUpdateQuantityClampsAtOne(t *testing.T) {
	tests := []struct {
		name  string
		start int
		delta int
		want  int
	}{
		{"increment", 1, 2, 3},
		{"decrement", 3, -1, 2},
		{"clamped at one", 1, -1, 1},
		{"large negative clamped", 2, -10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.AddItem(phone(), nil, tt.start)

			found := c.UpdateQuantity("BB-001", nil, tt.delta)

			require.True(t, found)
			require.Len(t, c.Items, 1, "update must never remove the line")
			assert.Equal(t, tt.want, c.Items[0].Quantity)
		})
	}
}

func TestUpdateQuantityStructuralOptionMatch(t *testing.T) {
	c := New()
	c.AddItem(phone(), map[string]string{"Color": "Silver", "Storage": "256GB"}, 1)

	// Same pairs, different construction order
	found := c.UpdateQuantity("BB-001", map[string]string{"Storage": "256GB", "Color": "Silver"}, 1)

	require.True(t, found)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestUpdateQuantityMissingLine(t *testing.T) {
	c := New()
	assert.False(t, c.UpdateQuantity("BB-999", nil, 1))
}

func TestRemoveItem(t *testing.T) {
	c := New()
	c.AddItem(phone(), map[string]string{"Color": "Silver"}, 1)
	c.AddItem(phone(), map[string]string{"Color": "Blue Titanium"}, 1)

	c.RemoveItem(LineKey("BB-001", map[string]string{"Color": "Silver"}))
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Blue Titanium", c.Items[0].SelectedOptions["Color"])

	// Removing an absent key is a no-op
	c.RemoveItem("BB-404::{}")
	assert.Len(t, c.Items, 1)
}

func TestMergeSumsQuantitiesPerIdentity(t *testing.T) {
	user := New()
	user.AddItem(phone(), map[string]string{"Color": "Silver"}, 1)

	guest := New()
	guest.AddItem(phone(), map[string]string{"Color": "Silver"}, 2)
	guest.AddItem(phone(), map[string]string{"Color": "Blue Titanium"}, 1)

	user.Merge(guest)

	require.Len(t, user.Items, 2)
	assert.Equal(t, 3, user.Quantity("BB-001", map[string]string{"Color": "Silver"}))
	assert.Equal(t, 1, user.Quantity("BB-001", map[string]string{"Color": "Blue Titanium"}))
}

func TestComputeTotals(t *testing.T) {
	lines := []Line{
		{ProductID: "A", Price: 300, Quantity: 2},
		{ProductID: "B", Price: 400, Quantity: 1},
	}

	totals := ComputeTotals(lines, 1250)

	assert.Equal(t, 2, totals.ItemCount)
	assert.Equal(t, 3, totals.TotalQuantity)
	assert.Equal(t, int64(1000), totals.Subtotal)
	assert.Equal(t, int64(125), totals.Tax, "tax is exactly 12.5%% of subtotal")
	assert.Equal(t, int64(1125), totals.Total)

	// Idempotent: a second computation yields identical results
	assert.Equal(t, totals, ComputeTotals(lines, 1250))
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := ComputeTotals(nil, 1250)
	assert.Equal(t, Totals{}, totals)
}
