package repo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetshop-backend/internal/domain"
)

func TestStockColumn(t *testing.T) {
	for _, tier := range domain.SizeTiers {
		col, ok := stockColumn(tier)
		assert.True(t, ok)
		assert.Equal(t, "quantity"+string(tier), col)
	}
	_, ok := stockColumn("quantity1kg; DROP TABLE sweets")
	assert.False(t, ok)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now\\`, escapeLike(`50% off_now\`))
}

// TestPostgresRepo_Ledger runs against a real database when
// SWEETS_TEST_DATABASE_URL is set.
func TestPostgresRepo_Ledger(t *testing.T) {
	dsn := os.Getenv("SWEETS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SWEETS_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	r, err := NewPostgresRepo(dsn)
	require.NoError(t, err)
	defer r.Close()

	id := domain.NewID()
	now := time.Now().UTC()
	require.NoError(t, r.PutSweet(ctx, &domain.Sweet{ID: id, Name: "Rasgulla", Price: decimal.NewFromInt(450), Stock: domain.Stock{Qty1kg: 3}, CreatedAt: now, UpdatedAt: now}))
	t.Cleanup(func() { _, _ = r.DeleteSweet(ctx, id) })

	err = r.AdjustStock(ctx, []domain.StockAdjustment{
		{SweetID: id, Size: domain.Size1kg, Delta: -2},
		{SweetID: id, Size: domain.Size1kg, Delta: -2},
	})
	require.True(t, errors.Is(err, domain.ErrInsufficientStock), "got %v", err)
	n, ok, err := r.AvailableStock(ctx, id, domain.Size1kg)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, n)

	require.NoError(t, r.AdjustStock(ctx, []domain.StockAdjustment{{SweetID: id, Size: domain.Size1kg, Delta: -3}}))
	s, ok, err := r.GetSweet(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, s.Qty1kg)
	assert.Equal(t, 3, s.QuantitySold)

	err = r.AdjustStock(ctx, []domain.StockAdjustment{{SweetID: domain.NewID(), Size: domain.Size1kg, Delta: 1}})
	assert.True(t, errors.Is(err, domain.ErrUnknownSweet))
}
