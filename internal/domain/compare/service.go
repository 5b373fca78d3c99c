// internal/domain/compare/service.go
package compare

import (
	"context"
	"fmt"

	"github.com/blackbox-gh/storefront-backend/internal/config"
	"github.com/blackbox-gh/storefront-backend/internal/domain/product"
	redisdb "github.com/blackbox-gh/storefront-backend/internal/infrastructure/database/redis"
)

// Service handles the compare set, stored whole as one blob per owner.
// Guests and signed-in users both get a compare set.
type Service struct {
	store    *redisdb.Client
	products *product.Service
	config   *config.Config
}

// NewService creates a new compare service
func NewService(store *redisdb.Client, products *product.Service, cfg *config.Config) *Service {
	return &Service{
		store:    store,
		products: products,
		config:   cfg,
	}
}

// Add puts a product into the compare set, enforcing the size cap
func (s *Service) Add(ctx context.Context, ownerKey, productID string) (*Set, error) {
	if _, err := s.products.Get(productID); err != nil {
		return nil, err
	}

	set, err := s.load(ctx, ownerKey)
	if err != nil {
		return nil, err
	}

	if err := set.Add(productID, s.config.Commerce.CompareLimit); err != nil {
		return set, err
	}

	if err := s.save(ctx, ownerKey, set); err != nil {
		return nil, err
	}
	return set, nil
}

// Remove drops a product from the compare set
func (s *Service) Remove(ctx context.Context, ownerKey, productID string) (*Set, error) {
	set, err := s.load(ctx, ownerKey)
	if err != nil {
		return nil, err
	}

	set.Remove(productID)

	if err := s.save(ctx, ownerKey, set); err != nil {
		return nil, err
	}
	return set, nil
}

// List returns the compared products with current catalog details
func (s *Service) List(ctx context.Context, ownerKey string) ([]product.Product, error) {
	set, err := s.load(ctx, ownerKey)
	if err != nil {
		return nil, err
	}

	out := make([]product.Product, 0, len(set.IDs))
	for _, id := range set.IDs {
		p, err := s.products.Get(id)
		if err != nil {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

// OwnerKey returns the compare blob key for an owner
func OwnerKey(userID, sessionID string) string {
	if userID != "" {
		return fmt.Sprintf("compare:user:%s", userID)
	}
	return fmt.Sprintf("compare:session:%s", sessionID)
}

func (s *Service) load(ctx context.Context, ownerKey string) (*Set, error) {
	var set Set
	err := s.store.LoadJSON(ctx, ownerKey, &set)
	if err == redisdb.ErrKeyNotFound {
		return &Set{IDs: []string{}}, nil
	}
	if err != nil {
		return &Set{IDs: []string{}}, nil
	}
	return &set, nil
}

func (s *Service) save(ctx context.Context, ownerKey string, set *Set) error {
	return s.store.SaveJSON(ctx, ownerKey, set, 0)
}
