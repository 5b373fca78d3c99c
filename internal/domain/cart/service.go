// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blackbox-gh/storefront-backend/internal/config"
	"github.com/blackbox-gh/storefront-backend/internal/domain/product"
	redisdb "github.com/blackbox-gh/storefront-backend/internal/infrastructure/database/redis"
	"github.com/sirupsen/logrus"
)

// ErrInsufficientStock is returned when the requested quantity exceeds availability
var ErrInsufficientStock = errors.New("insufficient stock")

// Store is the blob persistence the cart service needs
type Store interface {
	LoadJSON(ctx context.Context, key string, dest interface{}) error
	SaveJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Remove(ctx context.Context, keys ...string) error
}

// Service handles cart business logic. Carts are stored whole as one
// JSON blob per owner and rewritten after every mutation.
type Service struct {
	store    Store
	products *product.Service
	config   *config.Config
	log      *logrus.Logger
}

// NewService creates a new cart service
func NewService(store Store, products *product.Service, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		store:    store,
		products: products,
		config:   cfg,
		log:      log,
	}
}

// AddItemRequest represents an add-to-cart request
type AddItemRequest struct {
	ProductID       string            `json:"product_id" binding:"required"`
	SelectedOptions map[string]string `json:"selected_options"`
	Quantity        int               `json:"quantity"`
}

// UpdateQuantityRequest represents a quantity adjustment request
type UpdateQuantityRequest struct {
	ProductID       string            `json:"product_id" binding:"required"`
	SelectedOptions map[string]string `json:"selected_options"`
	Delta           int               `json:"delta" binding:"required"`
}

// CartResponse represents a cart with computed totals
type CartResponse struct {
	Items  []Line `json:"items"`
	Totals Totals `json:"totals"`
}

// OwnerKey returns the blob key for a cart owner. Authenticated carts key
// on the user id, guest carts on the session id.
func OwnerKey(userID, sessionID string) string {
	if userID != "" {
		return fmt.Sprintf("cart:user:%s", userID)
	}
	return fmt.Sprintf("cart:session:%s", sessionID)
}

// Get returns the owner's cart with totals, empty when none is stored
func (s *Service) Get(ctx context.Context, ownerKey string) (*CartResponse, error) {
	c, err := s.load(ctx, ownerKey)
	if err != nil {
		return nil, err
	}
	return s.respond(c), nil
}

// AddItem validates the product and merges or appends a line
func (s *Service) AddItem(ctx context.Context, ownerKey string, req *AddItemRequest) (*CartResponse, error) {
	p, err := s.products.Get(req.ProductID)
	if err != nil {
		return nil, err
	}

	if err := s.products.ValidateSelection(p, req.SelectedOptions); err != nil {
		return nil, err
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	c, err := s.load(ctx, ownerKey)
	if err != nil {
		return nil, err
	}

	// Availability covers what the cart already carries for this identity
	if p.Stock < c.Quantity(p.ID, req.SelectedOptions)+quantity {
		return nil, fmt.Errorf("%w: %d available for %s", ErrInsufficientStock, p.Stock, p.ID)
	}

	c.AddItem(p, req.SelectedOptions, quantity)

	if err := s.save(ctx, ownerKey, c); err != nil {
		return nil, err
	}

	return s.respond(c), nil
}

// RemoveItem deletes the line with the given identity key
func (s *Service) RemoveItem(ctx context.Context, ownerKey, lineKey string) (*CartResponse, error) {
	c, err := s.load(ctx, ownerKey)
	if err != nil {
		return nil, err
	}

	c.RemoveItem(lineKey)

	if err := s.save(ctx, ownerKey, c); err != nil {
		return nil, err
	}

	return s.respond(c), nil
}

// UpdateQuantity applies a delta to a line, clamped at quantity 1
func (s *Service) UpdateQuantity(ctx context.Context, ownerKey string, req *UpdateQuantityRequest) (*CartResponse, error) {
	c, err := s.load(ctx, ownerKey)
	if err != nil {
		return nil, err
	}

	if !c.UpdateQuantity(req.ProductID, req.SelectedOptions, req.Delta) {
		return nil, fmt.Errorf("item not found in cart")
	}

	if err := s.save(ctx, ownerKey, c); err != nil {
		return nil, err
	}

	return s.respond(c), nil
}

// Clear removes the owner's cart entirely
func (s *Service) Clear(ctx context.Context, ownerKey string) error {
	return s.store.Remove(ctx, ownerKey)
}

// MergeGuestCart folds a guest session cart into the user's cart at login
func (s *Service) MergeGuestCart(ctx context.Context, userID, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	guestKey := OwnerKey("", sessionID)
	guest, err := s.load(ctx, guestKey)
	if err != nil {
		return err
	}
	if guest.IsEmpty() {
		return nil
	}

	userKey := OwnerKey(userID, "")
	userCart, err := s.load(ctx, userKey)
	if err != nil {
		return err
	}

	userCart.Merge(guest)

	if err := s.save(ctx, userKey, userCart); err != nil {
		return err
	}

	return s.store.Remove(ctx, guestKey)
}

// Load returns the raw cart aggregate for an owner. Used by checkout.
func (s *Service) Load(ctx context.Context, ownerKey string) (*Cart, error) {
	return s.load(ctx, ownerKey)
}

// load reads the cart blob; a missing or corrupt blob yields an empty cart
func (s *Service) load(ctx context.Context, ownerKey string) (*Cart, error) {
	var c Cart
	err := s.store.LoadJSON(ctx, ownerKey, &c)
	if err == redisdb.ErrKeyNotFound {
		return New(), nil
	}
	if err != nil {
		// Persistence failures fall back to an empty in-memory cart
		// rather than blocking the storefront
		s.log.WithError(err).WithField("owner", ownerKey).Warn("cart load failed, starting empty")
		return New(), nil
	}
	if c.Items == nil {
		c.Items = []Line{}
	}
	return &c, nil
}

// save rewrites the whole cart blob. Guest carts expire; user carts are kept.
func (s *Service) save(ctx context.Context, ownerKey string, c *Cart) error {
	ttl := time.Duration(0)
	if strings.HasPrefix(ownerKey, "cart:session:") {
		ttl = s.config.Commerce.GuestCartTTL
	}
	return s.store.SaveJSON(ctx, ownerKey, c, ttl)
}

func (s *Service) respond(c *Cart) *CartResponse {
	return &CartResponse{
		Items:  c.Items,
		Totals: ComputeTotals(c.Items, s.config.Commerce.TaxRateBasisPoints),
	}
}
