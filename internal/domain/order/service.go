// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/blackbox-gh/storefront-backend/internal/config"
	"github.com/blackbox-gh/storefront-backend/internal/domain/cart"
	redisdb "github.com/blackbox-gh/storefront-backend/internal/infrastructure/database/redis"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ownerIndexKey maps order ids to the owning user id so status updates
// can locate the right history blob
const ownerIndexKey = "orders:owner-index"

// Store is the blob persistence the order ledger needs
type Store interface {
	LoadJSON(ctx context.Context, key string, dest interface{}) error
	SaveJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Remove(ctx context.Context, keys ...string) error
	IndexSet(ctx context.Context, key, field, value string) error
	IndexGet(ctx context.Context, key, field string) (string, error)
}

// Service handles the order ledger. Each user's history is one JSON
// blob, most recent order first.
type Service struct {
	store  Store
	carts  *cart.Service
	config *config.Config
	log    *logrus.Logger
}

// NewService creates a new order service
func NewService(store Store, carts *cart.Service, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		store:  store,
		carts:  carts,
		config: cfg,
		log:    log,
	}
}

// CheckoutResult carries the created order and the navigation hint
type CheckoutResult struct {
	Order    *Order `json:"order"`
	Redirect string `json:"redirect"`
}

// Checkout converts the user's cart into a Pending order, prepends it to
// the history and clears the cart. Fails with ErrAuthRequired when no
// user is signed in; the cart is left untouched on any failure.
func (s *Service) Checkout(ctx context.Context, userID, userName, cartOwnerKey string) (*CheckoutResult, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}

	c, err := s.carts.Load(ctx, cartOwnerKey)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	totals := cart.ComputeTotals(c.Items, s.config.Commerce.TaxRateBasisPoints)

	o := &Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		UserName:      userName,
		Items:         snapshotLines(c.Items),
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Status:        StatusPending,
		Date:          time.Now().UTC(),
		PaymentMethod: s.config.Commerce.PaymentMethod,
	}

	history, err := s.loadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	history = append([]Order{*o}, history...)

	if err := s.saveHistory(ctx, userID, history); err != nil {
		return nil, err
	}

	if err := s.store.IndexSet(ctx, ownerIndexKey, o.ID, userID); err != nil {
		s.log.WithError(err).WithField("order_id", o.ID).Warn("failed to index order owner")
	}

	// Cart is cleared only after the order is durably written. A crash
	// between the two writes leaves the cart intact, never the reverse.
	if err := s.carts.Clear(ctx, cartOwnerKey); err != nil {
		s.log.WithError(err).WithField("order_id", o.ID).Warn("failed to clear cart after checkout")
	}

	s.log.WithFields(logrus.Fields{
		"order_id": o.ID,
		"user_id":  userID,
		"total":    o.Total,
	}).Info("order created")

	return &CheckoutResult{Order: o, Redirect: "profile"}, nil
}

// List returns the user's order history, most recent first
func (s *Service) List(ctx context.Context, userID string) ([]Order, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	return s.loadHistory(ctx, userID)
}

// Get returns one of the user's orders by id
func (s *Service) Get(ctx context.Context, userID, orderID string) (*Order, error) {
	history, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range history {
		if history[i].ID == orderID {
			return &history[i], nil
		}
	}
	return nil, ErrNotFound
}

// Cancel moves one of the user's own orders to Cancelled
func (s *Service) Cancel(ctx context.Context, userID, orderID string) (*Order, error) {
	return s.transition(ctx, userID, orderID, StatusCancelled)
}

// UpdateStatus applies an administrative status change to any order
func (s *Service) UpdateStatus(ctx context.Context, orderID string, next Status) (*Order, error) {
	userID, err := s.store.IndexGet(ctx, ownerIndexKey, orderID)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.transition(ctx, userID, orderID, next)
}

// transition locates the order in its owner's history, validates the
// lifecycle and rewrites the blob
func (s *Service) transition(ctx context.Context, userID, orderID string, next Status) (*Order, error) {
	history, err := s.loadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range history {
		if history[i].ID != orderID {
			continue
		}
		if err := history[i].TransitionTo(next); err != nil {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, history[i].Status, next)
		}
		if err := s.saveHistory(ctx, userID, history); err != nil {
			return nil, err
		}
		return &history[i], nil
	}

	return nil, ErrNotFound
}

func (s *Service) loadHistory(ctx context.Context, userID string) ([]Order, error) {
	var history []Order
	err := s.store.LoadJSON(ctx, historyKey(userID), &history)
	if err == redisdb.ErrKeyNotFound {
		return []Order{}, nil
	}
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("order history load failed, starting empty")
		return []Order{}, nil
	}
	return history, nil
}

func (s *Service) saveHistory(ctx context.Context, userID string, history []Order) error {
	return s.store.SaveJSON(ctx, historyKey(userID), history, 0)
}

func historyKey(userID string) string {
	return fmt.Sprintf("orders:user:%s", userID)
}

// snapshotLines deep-copies cart lines so later cart mutations cannot
// reach into the order record
func snapshotLines(lines []cart.Line) []cart.Line {
	out := make([]cart.Line, len(lines))
	for i, line := range lines {
		out[i] = line
		if line.SelectedOptions != nil {
			opts := make(map[string]string, len(line.SelectedOptions))
			for k, v := range line.SelectedOptions {
				opts[k] = v
			}
			out[i].SelectedOptions = opts
		}
	}
	return out
}
