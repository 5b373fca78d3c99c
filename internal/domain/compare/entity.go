// internal/domain/compare/entity.go
package compare

import "errors"

// ErrLimitExceeded is returned when adding beyond the compare cap
var ErrLimitExceeded = errors.New("compare set is full")

// Set is an ordered product-id set with a hard size cap
type Set struct {
	IDs []string `json:"ids"`
}

// Contains reports whether the product is in the set
func (s *Set) Contains(productID string) bool {
	for _, id := range s.IDs {
		if id == productID {
			return true
		}
	}
	return false
}

// Add appends the product id. Duplicate adds are no-ops; adding a fifth
// distinct entry is rejected, never silently truncated.
func (s *Set) Add(productID string, limit int) error {
	if s.Contains(productID) {
		return nil
	}
	if len(s.IDs) >= limit {
		return ErrLimitExceeded
	}
	s.IDs = append(s.IDs, productID)
	return nil
}

// Remove drops the product id; no-op when absent
func (s *Set) Remove(productID string) {
	for i, id := range s.IDs {
		if id == productID {
			s.IDs = append(s.IDs[:i], s.IDs[i+1:]...)
			return
		}
	}
}
