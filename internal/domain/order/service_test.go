// internal/domain/order/service_test.go
package order

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackbox-gh/storefront-backend/internal/config"
	"github.com/blackbox-gh/storefront-backend/internal/domain/cart"
	"github.com/blackbox-gh/storefront-backend/internal/domain/product"
	redisdb "github.com/blackbox-gh/storefront-backend/internal/infrastructure/database/redis"
)

// memStore keeps blobs and hash indexes in maps, standing in for Redis
type memStore struct {
	blobs map[string][]byte
	index map[string]map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		blobs: map[string][]byte{},
		index: map[string]map[string]string{},
	}
}

func (m *memStore) LoadJSON(_ context.Context, key string, dest interface{}) error {
	data, ok := m.blobs[key]
	if !ok {
		return redisdb.ErrKeyNotFound
	}
	return json.Unmarshal(data, dest)
}

func (m *memStore) SaveJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.blobs[key] = data
	return nil
}

func (m *memStore) Remove(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.blobs, key)
	}
	return nil
}

func (m *memStore) IndexSet(_ context.Context, key, field, value string) error {
	if m.index[key] == nil {
		m.index[key] = map[string]string{}
	}
	m.index[key][field] = value
	return nil
}

func (m *memStore) IndexGet(_ context.Context, key, field string) (string, error) {
	value, ok := m.index[key][field]
	if !ok {
		return "", redisdb.ErrKeyNotFound
	}
	return value, nil
}

func testServices(t *testing.T) (*memStore, *cart.Service, *Service) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Commerce.TaxRateBasisPoints = 1250
	cfg.Commerce.PaymentMethod = "Momo"

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	store := newMemStore()
	carts := cart.NewService(store, nil, cfg, log)
	return store, carts, NewService(store, carts, cfg, log)
}

func seedCart(t *testing.T, store *memStore, ownerKey string) cart.Totals {
	t.Helper()

	c := cart.New()
	c.AddItem(&product.Product{ID: "BB-001", Name: "MacBook Pro", Category: product.CategoryLaptops, Price: 300}, nil, 2)
	c.AddItem(&product.Product{ID: "BB-002", Name: "Bose 700", Category: product.CategoryAudio, Price: 400}, map[string]string{"Color": "Black"}, 1)
	require.NoError(t, store.SaveJSON(context.Background(), ownerKey, c, 0))

	return cart.ComputeTotals(c.Items, 1250)
}

func TestCheckoutRequiresSignIn(t *testing.T) {
	store, carts, orders := testServices(t)
	ctx := context.Background()

	cartKey := cart.OwnerKey("", "guest-1")
	seedCart(t, store, cartKey)

	_, err := orders.Checkout(ctx, "", "Kwame", cartKey)
	assert.ErrorIs(t, err, ErrAuthRequired)

	// No order was written and the guest cart is untouched
	assert.Len(t, store.blobs, 1)
	c, err := carts.Load(ctx, cartKey)
	require.NoError(t, err)
	assert.False(t, c.IsEmpty())
	assert.Len(t, c.Items, 2)
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	_, _, orders := testServices(t)

	_, err := orders.Checkout(context.Background(), "U-01", "Kwame", cart.OwnerKey("U-01", ""))
	assert.ErrorIs(t, err, ErrEmptyCart)

	history, err := orders.List(context.Background(), "U-01")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestCheckoutCreatesOrderAndClearsCart(t *testing.T) {
	store, carts, orders := testServices(t)
	ctx := context.Background()

	cartKey := cart.OwnerKey("U-01", "")
	want := seedCart(t, store, cartKey)

	result, err := orders.Checkout(ctx, "U-01", "Kwame", cartKey)
	require.NoError(t, err)

	assert.Equal(t, "profile", result.Redirect)
	assert.Equal(t, StatusPending, result.Order.Status)
	assert.Equal(t, "Momo", result.Order.PaymentMethod)

	// Totals on the order equal the cart's pre-checkout totals
	assert.Equal(t, want.Subtotal, result.Order.Subtotal)
	assert.Equal(t, want.Tax, result.Order.Tax)
	assert.Equal(t, want.Total, result.Order.Total)
	assert.Equal(t, int64(1000), result.Order.Subtotal)
	assert.Equal(t, int64(125), result.Order.Tax)
	assert.Equal(t, int64(1125), result.Order.Total)

	// History grew by one and the cart is now empty
	history, err := orders.List(ctx, "U-01")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, result.Order.ID, history[0].ID)

	c, err := carts.Load(ctx, cartKey)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	// An emptied cart cannot be checked out again
	_, err = orders.Checkout(ctx, "U-01", "Kwame", cartKey)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutPrependsMostRecent(t *testing.T) {
	store, _, orders := testServices(t)
	ctx := context.Background()

	cartKey := cart.OwnerKey("U-01", "")

	seedCart(t, store, cartKey)
	first, err := orders.Checkout(ctx, "U-01", "Kwame", cartKey)
	require.NoError(t, err)

	seedCart(t, store, cartKey)
	second, err := orders.Checkout(ctx, "U-01", "Kwame", cartKey)
	require.NoError(t, err)

	history, err := orders.List(ctx, "U-01")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.Order.ID, history[0].ID)
	assert.Equal(t, first.Order.ID, history[1].ID)
}

func TestUpdateStatusThroughOwnerIndex(t *testing.T) {
	store, _, orders := testServices(t)
	ctx := context.Background()

	cartKey := cart.OwnerKey("U-01", "")
	seedCart(t, store, cartKey)
	result, err := orders.Checkout(ctx, "U-01", "Kwame", cartKey)
	require.NoError(t, err)

	updated, err := orders.UpdateStatus(ctx, result.Order.ID, StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, updated.Status)

	// Lifecycle still binds on the admin path
	_, err = orders.UpdateStatus(ctx, result.Order.ID, StatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = orders.UpdateStatus(ctx, "no-such-order", StatusShipped)
	assert.ErrorIs(t, err, ErrNotFound)
}
