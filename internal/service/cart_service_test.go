package service

import (
	"context"
	"testing"
	"time"

	"eventhub/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCartService(t *testing.T) (*CartService, *database.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewCartService(db), db
}

func TestGetCart_EmptyIsNotNil(t *testing.T) {
	svc, db := setupCartService(t)

	user := createTestUser(t, db, "empty@example.com")
	cart, err := svc.GetCart(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotNil(t, cart.Items)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.TotalAmount)
}

func TestAddToCart(t *testing.T) {
	svc, db := setupCartService(t)
	ctx := context.Background()

	user := createTestUser(t, db, "add@example.com")
	event := createTestEvent(t, db, 50, time.Now().AddDate(0, 1, 0))

	cart, err := svc.AddToCart(ctx, user.ID, event.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, event.Price*2, cart.TotalAmount)

	// Adding the same event again merges the line.
	cart, err = svc.AddToCart(ctx, user.ID, event.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.EqualValues(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, event.Price*3, cart.TotalAmount)

	_, err = svc.AddToCart(ctx, user.ID, event.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddToCart(ctx, user.ID, 9999, 1)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestUpdateQuantityAndRemove(t *testing.T) {
	svc, db := setupCartService(t)
	ctx := context.Background()

	user := createTestUser(t, db, "update@example.com")
	event := createTestEvent(t, db, 50, time.Now().AddDate(0, 1, 0))

	cart, err := svc.AddToCart(ctx, user.ID, event.ID, 1)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	cart, err = svc.UpdateQuantity(ctx, user.ID, itemID, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 5, cart.Items[0].Quantity)

	_, err = svc.UpdateQuantity(ctx, user.ID, itemID, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	cart, err = svc.RemoveItem(ctx, user.ID, itemID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, err = svc.RemoveItem(ctx, user.ID, itemID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestClearCart(t *testing.T) {
	svc, db := setupCartService(t)
	ctx := context.Background()

	user := createTestUser(t, db, "clear@example.com")
	first := createTestEvent(t, db, 50, time.Now().AddDate(0, 1, 0))
	second := createTestEvent(t, db, 50, time.Now().AddDate(0, 2, 0))

	_, err := svc.AddToCart(ctx, user.ID, first.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, user.ID, second.ID, 2)
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, user.ID))

	cart, err := svc.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
