// internal/domain/order/entity.go
package order

import (
	"errors"
	"time"

	"github.com/blackbox-gh/storefront-backend/internal/domain/cart"
)

// Status represents the order status
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// Errors raised by the order ledger
var (
	ErrAuthRequired      = errors.New("sign-in required")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// nextStatus is the linear fulfilment path
var nextStatus = map[Status]Status{
	StatusPending:    StatusProcessing,
	StatusProcessing: StatusShipped,
	StatusShipped:    StatusDelivered,
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo enforces the lifecycle: one step forward along the
// linear path, or Cancelled from Pending/Processing. Terminal states
// admit nothing.
func (s Status) CanTransitionTo(next Status) bool {
	if s.IsTerminal() || !next.IsValid() {
		return false
	}
	if next == StatusCancelled {
		return s == StatusPending || s == StatusProcessing
	}
	return nextStatus[s] == next
}

// Order is an immutable checkout record; only Status may change after creation
type Order struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	UserName      string      `json:"user_name"`
	Items         []cart.Line `json:"items"` // deep snapshot of the cart at checkout
	Subtotal      int64       `json:"subtotal"`
	Tax           int64       `json:"tax"`
	Total         int64       `json:"total"`
	Status        Status      `json:"status"`
	Date          time.Time   `json:"date"`
	PaymentMethod string      `json:"payment_method"`
}

// TransitionTo applies a status change after validating the lifecycle
func (o *Order) TransitionTo(next Status) error {
	if !o.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	o.Status = next
	return nil
}

// CanBeCancelled reports whether the order is still cancellable
func (o *Order) CanBeCancelled() bool {
	return o.Status.CanTransitionTo(StatusCancelled)
}
