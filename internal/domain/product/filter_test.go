// internal/domain/product/filter_test.go
package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCatalog() []Product {
	return []Product{
		{ID: "BB-001", Name: "iPhone 15 Pro Max", Category: CategoryPhones, Price: 1850000, Description: "Forged in titanium", Stock: 8, IsFeatured: true},
		{ID: "BB-002", Name: "MacBook Pro 14-inch", Category: CategoryLaptops, Price: 2450000, Description: "A pro laptop like no other", Stock: 4, IsFeatured: true},
		{ID: "BB-003", Name: "AirPods Max", Category: CategoryAudio, Price: 680000, Description: "High-fidelity audio", Stock: 0},
		{ID: "BB-006", Name: "iPhone 13", Category: CategoryPhones, Price: 920000, Description: "Advanced dual-camera system", Stock: 15},
	}
}

func TestFilter(t *testing.T) {
	min := int64(900000)
	max := int64(2000000)

	tests := []struct {
		name    string
		params  FilterParams
		wantIDs []string
	}{
		{
			name:    "no filters returns everything",
			params:  FilterParams{},
			wantIDs: []string{"BB-001", "BB-002", "BB-003", "BB-006"},
		},
		{
			name:    "All category is a wildcard",
			params:  FilterParams{Category: CategoryAll},
			wantIDs: []string{"BB-001", "BB-002", "BB-003", "BB-006"},
		},
		{
			name:    "category exact match",
			params:  FilterParams{Category: "Phones"},
			wantIDs: []string{"BB-001", "BB-006"},
		},
		{
			name:    "search is case-insensitive over name",
			params:  FilterParams{Search: "iphone"},
			wantIDs: []string{"BB-001", "BB-006"},
		},
		{
			name:    "search matches description too",
			params:  FilterParams{Search: "TITANIUM"},
			wantIDs: []string{"BB-001"},
		},
		{
			name:    "price range bounds are inclusive",
			params:  FilterParams{MinPrice: &min, MaxPrice: &max},
			wantIDs: []string{"BB-001", "BB-006"},
		},
		{
			name:    "in-stock excludes zero stock",
			params:  FilterParams{InStockOnly: true},
			wantIDs: []string{"BB-001", "BB-002", "BB-006"},
		},
		{
			name:    "featured flag",
			params:  FilterParams{Featured: true},
			wantIDs: []string{"BB-001", "BB-002"},
		},
		{
			name:    "combined category and search",
			params:  FilterParams{Category: "Phones", Search: "dual-camera"},
			wantIDs: []string{"BB-006"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(testCatalog(), tt.params)
			gotIDs := make([]string, 0, len(got))
			for _, p := range got {
				gotIDs = append(gotIDs, p.ID)
			}
			assert.Equal(t, tt.wantIDs, gotIDs)
		})
	}
}

func TestRelated(t *testing.T) {
	catalog := testCatalog()

	t.Run("same category excluding current", func(t *testing.T) {
		related := Related(catalog, catalog[0], RelatedLimit)
		assert.Len(t, related, 1)
		assert.Equal(t, "BB-006", related[0].ID)
	})

	t.Run("respects the cap", func(t *testing.T) {
		many := []Product{}
		for i := 0; i < 8; i++ {
			many = append(many, Product{ID: string(rune('A' + i)), Category: CategoryPhones})
		}
		current := Product{ID: "X", Category: CategoryPhones}
		assert.Len(t, Related(many, current, RelatedLimit), RelatedLimit)
	})

	t.Run("no siblings yields empty", func(t *testing.T) {
		related := Related(catalog, catalog[2], RelatedLimit)
		assert.Empty(t, related)
	})
}

func TestDiscountedPrice(t *testing.T) {
	p := Product{Price: 1000}
	assert.Equal(t, int64(1000), p.DiscountedPrice())

	p.DiscountPercent = 25
	assert.Equal(t, int64(750), p.DiscountedPrice())
}

func TestVariantGroupOptions(t *testing.T) {
	g := VariantGroup{Name: "Color", Options: "Silver,Space Gray, Sky Blue"}
	assert.Equal(t, []string{"Silver", "Space Gray", "Sky Blue"}, g.OptionList())
	assert.True(t, g.HasOption("Space Gray"))
	assert.False(t, g.HasOption("Gold"))
}
