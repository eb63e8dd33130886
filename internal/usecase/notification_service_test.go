package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweetshop-backend/internal/domain"
)

func TestNotificationService_Emit(t *testing.T) {
	ctx := context.Background()
	r := &fakeNotificationRepo{}
	svc := &NotificationService{Repo: r}

	n, err := svc.Emit(ctx, ownerID, "hello", domain.NotifyDelivery, "o1")
	require.NoError(t, err)
	assert.Equal(t, ownerID, n.UserID)
	assert.Equal(t, domain.NotifyDelivery, n.Type)
	assert.Equal(t, "o1", n.OrderID)
	assert.False(t, n.Read)
	assert.False(t, n.CreatedAt.IsZero())

	n, err = svc.Emit(ctx, ownerID, "system", domain.NotificationType("PROMO"), "")
	require.NoError(t, err)
	assert.Equal(t, domain.NotifySystem, n.Type)

	var bad ErrBadRequest
	_, err = svc.Emit(ctx, " ", "x", domain.NotifySystem, "")
	assert.True(t, errors.As(err, &bad))

	r.fail = true
	_, err = svc.Emit(ctx, ownerID, "x", domain.NotifySystem, "")
	assert.Error(t, err)
}

func TestNotificationService_OwnerOperations(t *testing.T) {
	ctx := context.Background()
	r := &fakeNotificationRepo{}
	svc := &NotificationService{Repo: r}
	mine, err := svc.Emit(ctx, ownerID, "a", domain.NotifyOrderStatus, "")
	require.NoError(t, err)
	_, err = svc.Emit(ctx, ownerID, "b", domain.NotifyOrderStatus, "")
	require.NoError(t, err)
	theirs, err := svc.Emit(ctx, otherID, "c", domain.NotifyOrderStatus, "")
	require.NoError(t, err)

	list, err := svc.ListForUser(ctx, owner, ownerID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	var forbidden ErrForbidden
	_, err = svc.ListForUser(ctx, owner, otherID)
	assert.True(t, errors.As(err, &forbidden))
	_, err = svc.MarkRead(ctx, owner, theirs.ID)
	assert.True(t, errors.As(err, &forbidden))
	assert.True(t, errors.As(svc.Delete(ctx, owner, theirs.ID), &forbidden))

	n, err := svc.MarkRead(ctx, owner, mine.ID)
	require.NoError(t, err)
	assert.True(t, n.Read)

	updated, err := svc.MarkAllRead(ctx, owner, ownerID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	updated, err = svc.MarkAllRead(ctx, admin, otherID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	require.NoError(t, svc.Delete(ctx, owner, mine.ID))
	var nf ErrNotFound
	assert.True(t, errors.As(svc.Delete(ctx, owner, mine.ID), &nf))
	_, err = svc.MarkRead(ctx, owner, "missing")
	assert.True(t, errors.As(err, &nf))
}
