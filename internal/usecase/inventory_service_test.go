package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetshop-backend/internal/domain"
	"sweetshop-backend/internal/infrastructure/repo"
)

func TestInventoryService_AdjustAndAvailable(t *testing.T) {
	ctx := context.Background()
	sweets := repo.NewMemorySweetRepo()
	require.NoError(t, sweets.PutSweet(ctx, &domain.Sweet{ID: "S1", Stock: domain.Stock{Qty500g: 3}}))
	inv := &InventoryService{Repo: sweets}

	require.NoError(t, inv.Adjust(ctx, "S1", domain.Size500g, -2))
	n, err := inv.GetAvailable(ctx, "S1", domain.Size500g)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var conflict ErrConflict
	assert.True(t, errors.As(inv.Adjust(ctx, "S1", domain.Size500g, -2), &conflict))
	n, _ = inv.GetAvailable(ctx, "S1", domain.Size500g)
	assert.Equal(t, 1, n)

	require.NoError(t, inv.Adjust(ctx, "S1", domain.Size500g, 4))
	n, _ = inv.GetAvailable(ctx, "S1", domain.Size500g)
	assert.Equal(t, 5, n)

	require.NoError(t, inv.Adjust(ctx, "S1", domain.Size500g, 0))

	var nf ErrNotFound
	assert.True(t, errors.As(inv.Adjust(ctx, "nope", domain.Size1kg, 1), &nf))
	_, err = inv.GetAvailable(ctx, "nope", domain.Size1kg)
	assert.True(t, errors.As(err, &nf))

	var bad ErrBadRequest
	assert.True(t, errors.As(inv.Adjust(ctx, "S1", domain.SizeTier("2kg"), 1), &bad))
	_, err = inv.GetAvailable(ctx, "S1", domain.SizeTier("2kg"))
	assert.True(t, errors.As(err, &bad))
}

func TestInventoryService_DeductRestockRoundTrip(t *testing.T) {
	ctx := context.Background()
	sweets := repo.NewMemorySweetRepo()
	require.NoError(t, sweets.PutSweet(ctx, &domain.Sweet{ID: "S1", Stock: domain.Stock{Qty250g: 2, Qty1kg: 5}}))
	require.NoError(t, sweets.PutSweet(ctx, &domain.Sweet{ID: "S2", Stock: domain.Stock{Qty500g: 1}}))
	inv := &InventoryService{Repo: sweets}

	o := &domain.Order{Items: []domain.OrderItem{
		{SweetID: "S1", Quantity: 2, SelectedSize: domain.Size1kg},
		{SweetID: "S1", Quantity: 2, SelectedSize: domain.Size250g},
		{SweetID: "S2", Quantity: 1, SelectedSize: domain.Size500g},
	}}
	before1, _, _ := sweets.GetSweet(ctx, "S1")
	before2, _, _ := sweets.GetSweet(ctx, "S2")

	require.NoError(t, inv.Deduct(ctx, o))
	s1, _, _ := sweets.GetSweet(ctx, "S1")
	assert.Equal(t, domain.Stock{Qty250g: 0, Qty1kg: 3}, s1.Stock)
	assert.Equal(t, 4, s1.QuantitySold)

	require.NoError(t, inv.Restock(ctx, o))
	s1, _, _ = sweets.GetSweet(ctx, "S1")
	s2, _, _ := sweets.GetSweet(ctx, "S2")
	assert.Equal(t, before1.Stock, s1.Stock)
	assert.Equal(t, before2.Stock, s2.Stock)
	assert.Equal(t, 0, s1.QuantitySold)
}
