// internal/domain/product/entity.go
package product

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Category represents a catalog category
type Category string

const (
	CategoryPhones      Category = "Phones"
	CategoryLaptops     Category = "Laptops"
	CategoryAudio       Category = "Audio"
	CategoryConsoles    Category = "Consoles"
	CategoryAccessories Category = "Accessories"
)

// CategoryAll is the wildcard used by catalog filters
const CategoryAll = "All"

// Product represents a catalog entry. The catalog is seeded at migration
// time and treated as read-only by the commerce core.
type Product struct {
	ID              string         `gorm:"primaryKey;size:20" json:"id"` // stable catalog key, e.g. BB-001
	Name            string         `gorm:"not null;size:255" json:"name"`
	Category        Category       `gorm:"not null;size:50;index" json:"category"`
	Price           int64          `gorm:"not null" json:"price"` // minor currency units
	Description     string         `gorm:"type:text" json:"description"`
	Image           string         `gorm:"size:500" json:"image"`
	Stock           int            `gorm:"not null;default:0" json:"stock"`
	IsNew           bool           `gorm:"default:false" json:"is_new"`
	IsFeatured      bool           `gorm:"default:false" json:"is_featured"`
	DiscountPercent int            `gorm:"default:0" json:"discount_percent"`
	Rating          float64        `gorm:"default:0" json:"rating"`
	ReviewCount     int            `gorm:"default:0" json:"review_count"`
	Specs           string         `gorm:"size:1000" json:"specs"` // comma-separated spec strings
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Variants []VariantGroup `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"variants,omitempty"`
}

// VariantGroup represents a named, ordered option group on a product
// (e.g. Color: Silver, Space Gray)
type VariantGroup struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	ProductID string `gorm:"not null;size:20;index" json:"-"`
	Name      string `gorm:"not null;size:100" json:"name"`
	Options   string `gorm:"not null;size:500" json:"options"` // comma-separated, order preserved
	SortOrder int    `gorm:"default:0" json:"-"`
}

// TableName overrides
func (Product) TableName() string      { return "products" }
func (VariantGroup) TableName() string { return "product_variant_groups" }

// SpecList returns the spec strings as a slice
func (p *Product) SpecList() []string {
	return splitCSV(p.Specs)
}

// OptionList returns the group's options in catalog order
func (v *VariantGroup) OptionList() []string {
	return splitCSV(v.Options)
}

// HasOption reports whether value is a valid option of the group
func (v *VariantGroup) HasOption(value string) bool {
	for _, opt := range v.OptionList() {
		if opt == value {
			return true
		}
	}
	return false
}

// InStock reports whether the product has strictly positive stock
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// DiscountedPrice returns the effective price after the discount percent
func (p *Product) DiscountedPrice() int64 {
	if p.DiscountPercent <= 0 {
		return p.Price
	}
	return p.Price - p.Price*int64(p.DiscountPercent)/100
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
