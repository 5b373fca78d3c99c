// internal/domain/compare/entity_test.go
package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCapEnforced(t *testing.T) {
	s := &Set{}

	for _, id := range []string{"BB-001", "BB-002", "BB-003", "BB-004"} {
		require.NoError(t, s.Add(id, 4))
	}
	require.Len(t, s.IDs, 4)

	err := s.Add("BB-005", 4)
	require.ErrorIs(t, err, ErrLimitExceeded)
	assert.Len(t, s.IDs, 4, "rejected add must not truncate or grow the set")
}

func TestSetDuplicateAddIsNoOp(t *testing.T) {
	s := &Set{}

	require.NoError(t, s.Add("BB-001", 4))
	require.NoError(t, s.Add("BB-001", 4))

	assert.Equal(t, []string{"BB-001"}, s.IDs)
}

func TestSetDuplicateAddAllowedWhenFull(t *testing.T) {
	s := &Set{IDs: []string{"BB-001", "BB-002", "BB-003", "BB-004"}}

	// Re-adding an existing member of a full set is still a no-op, not an error
	require.NoError(t, s.Add("BB-002", 4))
	assert.Len(t, s.IDs, 4)
}

func TestSetRemove(t *testing.T) {
	s := &Set{IDs: []string{"BB-001", "BB-002"}}

	s.Remove("BB-001")
	assert.Equal(t, []string{"BB-002"}, s.IDs)

	s.Remove("BB-404")
	assert.Equal(t, []string{"BB-002"}, s.IDs)
}
