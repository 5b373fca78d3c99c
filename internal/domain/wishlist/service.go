// internal/domain/wishlist/service.go
package wishlist

import (
	"context"
	"fmt"

	"github.com/blackbox-gh/storefront-backend/internal/config"
	"github.com/blackbox-gh/storefront-backend/internal/domain/product"
	redisdb "github.com/blackbox-gh/storefront-backend/internal/infrastructure/database/redis"
)

// Service handles wishlist business logic. A wishlist is a set of
// product ids per user, kept as a Redis set.
type Service struct {
	store    *redisdb.Client
	products *product.Service
	config   *config.Config
}

// NewService creates a new wishlist service
func NewService(store *redisdb.Client, products *product.Service, cfg *config.Config) *Service {
	return &Service{
		store:    store,
		products: products,
		config:   cfg,
	}
}

// ToggleResult reports the outcome of a wishlist toggle
type ToggleResult struct {
	ProductID string `json:"product_id"`
	Added     bool   `json:"added"`
}

// Toggle adds the product to the wishlist, or removes it when already present
func (s *Service) Toggle(ctx context.Context, userID, productID string) (*ToggleResult, error) {
	if _, err := s.products.Get(productID); err != nil {
		return nil, err
	}

	key := setKey(userID)
	member, err := s.store.Redis.SIsMember(ctx, key, productID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read wishlist: %w", err)
	}

	if member {
		if err := s.store.Redis.SRem(ctx, key, productID).Err(); err != nil {
			return nil, fmt.Errorf("failed to update wishlist: %w", err)
		}
		return &ToggleResult{ProductID: productID, Added: false}, nil
	}

	if err := s.store.Redis.SAdd(ctx, key, productID).Err(); err != nil {
		return nil, fmt.Errorf("failed to update wishlist: %w", err)
	}
	return &ToggleResult{ProductID: productID, Added: true}, nil
}

// List returns the wishlisted products with current catalog details
func (s *Service) List(ctx context.Context, userID string) ([]product.Product, error) {
	ids, err := s.store.Redis.SMembers(ctx, setKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read wishlist: %w", err)
	}

	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		p, err := s.products.Get(id)
		if err != nil {
			// Product may have left the catalog; skip it
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

// Contains reports whether the product is on the user's wishlist
func (s *Service) Contains(ctx context.Context, userID, productID string) (bool, error) {
	return s.store.Redis.SIsMember(ctx, setKey(userID), productID).Result()
}

func setKey(userID string) string {
	return fmt.Sprintf("wishlist:user:%s", userID)
}
