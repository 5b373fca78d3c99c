// internal/domain/product/service.go
package product

import (
	"fmt"

	"github.com/blackbox-gh/storefront-backend/internal/config"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a product id is not in the catalog
var ErrNotFound = fmt.Errorf("product not found")

// RelatedLimit caps the related-products selector
const RelatedLimit = 4

// Service handles catalog reads
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// List returns the catalog filtered by params, in seed order
func (s *Service) List(params FilterParams) ([]Product, error) {
	products, err := s.loadCatalog()
	if err != nil {
		return nil, err
	}
	return Filter(products, params), nil
}

// Get returns a single product by its catalog id
func (s *Service) Get(id string) (*Product, error) {
	var p Product
	err := s.db.Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Where("id = ?", id).First(&p).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", id, err)
	}
	return &p, nil
}

// GetRelated returns up to RelatedLimit products sharing the product's category
func (s *Service) GetRelated(id string) ([]Product, error) {
	current, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	products, err := s.loadCatalog()
	if err != nil {
		return nil, err
	}

	return Related(products, *current, RelatedLimit), nil
}

// ValidateSelection checks that every selected option names an existing
// variant group and one of its catalog options
func (s *Service) ValidateSelection(p *Product, selected map[string]string) error {
	for name, value := range selected {
		var group *VariantGroup
		for i := range p.Variants {
			if p.Variants[i].Name == name {
				group = &p.Variants[i]
				break
			}
		}
		if group == nil {
			return fmt.Errorf("unknown variant group %q for product %s", name, p.ID)
		}
		if !group.HasOption(value) {
			return fmt.Errorf("invalid option %q for variant %q of product %s", value, name, p.ID)
		}
	}
	return nil
}

// loadCatalog reads the full catalog with variant groups
func (s *Service) loadCatalog() ([]Product, error) {
	var products []Product
	err := s.db.Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Order("id ASC").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return products, nil
}
