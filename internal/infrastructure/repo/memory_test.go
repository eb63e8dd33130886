package repo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetshop-backend/internal/domain"
)

func seedSweet(t *testing.T, r *MemorySweetRepo, id string, st domain.Stock) {
	t.Helper()
	require.NoError(t, r.PutSweet(context.Background(), &domain.Sweet{ID: id, Name: id, Price: decimal.NewFromInt(800), Stock: st}))
}

func TestMemorySweetRepo_AdjustStockAllOrNothing(t *testing.T) {
	ctx := context.Background()
	r := NewMemorySweetRepo()
	seedSweet(t, r, "S1", domain.Stock{Qty1kg: 5})
	seedSweet(t, r, "S2", domain.Stock{Qty250g: 1})

	err := r.AdjustStock(ctx, []domain.StockAdjustment{
		{SweetID: "S1", Size: domain.Size1kg, Delta: -2},
		{SweetID: "S2", Size: domain.Size250g, Delta: -3},
	})
	require.True(t, errors.Is(err, domain.ErrInsufficientStock), "got %v", err)

	n, _, _ := r.AvailableStock(ctx, "S1", domain.Size1kg)
	assert.Equal(t, 5, n, "S1 must be untouched after a refused batch")

	require.NoError(t, r.AdjustStock(ctx, []domain.StockAdjustment{
		{SweetID: "S1", Size: domain.Size1kg, Delta: -2},
		{SweetID: "S1", Size: domain.Size1kg, Delta: -3},
	}))
	s, ok, _ := r.GetSweet(ctx, "S1")
	require.True(t, ok)
	assert.Equal(t, 0, s.Qty1kg)
	assert.Equal(t, 5, s.QuantitySold)

	err = r.AdjustStock(ctx, []domain.StockAdjustment{{SweetID: "nope", Size: domain.Size1kg, Delta: 1}})
	assert.True(t, errors.Is(err, domain.ErrUnknownSweet))
}

func TestMemorySweetRepo_ConcurrentDecrementsNeverGoNegative(t *testing.T) {
	ctx := context.Background()
	r := NewMemorySweetRepo()
	seedSweet(t, r, "S1", domain.Stock{Qty500g: 10})

	var wg sync.WaitGroup
	var mu sync.Mutex
	okCount := 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.AdjustStock(ctx, []domain.StockAdjustment{{SweetID: "S1", Size: domain.Size500g, Delta: -1}}) == nil {
				mu.Lock()
				okCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	n, _, _ := r.AvailableStock(ctx, "S1", domain.Size500g)
	assert.Equal(t, 0, n)
	assert.Equal(t, 10, okCount)
}

func TestMemorySweetRepo_PutKeepsLedgerCounters(t *testing.T) {
	ctx := context.Background()
	r := NewMemorySweetRepo()
	seedSweet(t, r, "S1", domain.Stock{Qty1kg: 4})

	require.NoError(t, r.PutSweet(ctx, &domain.Sweet{ID: "S1", Name: "renamed", Price: decimal.NewFromInt(900)}))
	s, _, _ := r.GetSweet(ctx, "S1")
	assert.Equal(t, "renamed", s.Name)
	assert.Equal(t, 4, s.Qty1kg)

	ok, err := r.SetStock(ctx, "S1", domain.Stock{Qty250g: 7})
	require.NoError(t, err)
	assert.True(t, ok)
	s, _, _ = r.GetSweet(ctx, "S1")
	assert.Equal(t, domain.Stock{Qty250g: 7}, s.Stock)
}

func TestMemoryOrderRepo_ListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryOrderRepo()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, r.PutOrder(ctx, &domain.Order{
			ID:        id,
			User:      domain.UserSnapshot{ID: "u1", Name: "Asha"},
			Status:    domain.OrderPending,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, r.PutOrder(ctx, &domain.Order{ID: "d", User: domain.UserSnapshot{ID: "u2", Name: "Ravi"}, Status: domain.OrderShipped, CreatedAt: base}))

	all, err := r.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "c", all[0].ID)

	mine, err := r.ListOrdersByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	found, err := r.SearchOrders(ctx, domain.OrderFilter{Query: "rav", Status: domain.OrderShipped})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "d", found[0].ID)
}

func TestMemoryOrderRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryOrderRepo()
	require.NoError(t, r.PutOrder(ctx, &domain.Order{ID: "a", Status: domain.OrderPending, Items: []domain.OrderItem{{SweetID: "S1", Quantity: 1}}}))

	o, _, _ := r.GetOrder(ctx, "a")
	o.Status = domain.OrderShipped
	o.Items[0].Quantity = 99

	again, _, _ := r.GetOrder(ctx, "a")
	assert.Equal(t, domain.OrderPending, again.Status)
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestMemoryNotificationRepo(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryNotificationRepo()
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, r.PutNotification(ctx, &domain.Notification{ID: domain.NewID(), UserID: "u1", Message: "m", CreatedAt: now.Add(time.Duration(i) * time.Second)}))
	}
	require.NoError(t, r.PutNotification(ctx, &domain.Notification{ID: "other", UserID: "u2", CreatedAt: now}))

	list, err := r.ListNotifications(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))

	n, err := r.MarkAllNotificationsRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, _ = r.MarkAllNotificationsRead(ctx, "u1")
	assert.Equal(t, 0, n)

	ok, err := r.DeleteNotification(ctx, "other")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = r.DeleteNotification(ctx, "other")
	assert.False(t, ok)
}

func TestMemorySweetRepo_ReplaceSweetWritesCountersKeepsSold(t *testing.T) {
	ctx := context.Background()
	r := NewMemorySweetRepo()
	seedSweet(t, r, "S1", domain.Stock{Qty1kg: 5})
	require.NoError(t, r.AdjustStock(ctx, []domain.StockAdjustment{{SweetID: "S1", Size: domain.Size1kg, Delta: -2}}))

	require.NoError(t, r.ReplaceSweet(ctx, &domain.Sweet{
		ID:    "S1",
		Name:  "Kaju Katli",
		Price: decimal.NewFromInt(900),
		Stock: domain.Stock{Qty250g: 4, Qty1kg: 7},
	}))
	s, ok, err := r.GetSweet(ctx, "S1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Kaju Katli", s.Name)
	assert.Equal(t, domain.Stock{Qty250g: 4, Qty1kg: 7}, s.Stock)
	assert.Equal(t, 2, s.QuantitySold)

	// PutSweet on the same entry leaves the counters alone
	s.Stock = domain.Stock{}
	require.NoError(t, r.PutSweet(ctx, s))
	s, _, _ = r.GetSweet(ctx, "S1")
	assert.Equal(t, domain.Stock{Qty250g: 4, Qty1kg: 7}, s.Stock)
}
