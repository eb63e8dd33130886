package usecase

import (
	"context"
	"strings"
	"time"

	"sweetshop-backend/internal/domain"
)

const notificationListLimit = 50

type NotificationRepo interface {
	PutNotification(ctx context.Context, n *domain.Notification) error
	GetNotification(ctx context.Context, id string) (*domain.Notification, bool, error)
	ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID string) (int, error)
	DeleteNotification(ctx context.Context, id string) (bool, error)
}

type NotificationService struct {
	Repo NotificationRepo
}

// Emit records a notification for userID, which must already be a canonical
// user id. Callers treat a failure as non-fatal.
func (s *NotificationService) Emit(ctx context.Context, userID, message string, typ domain.NotificationType, orderID string) (*domain.Notification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrBadRequest("userId required")
	}
	if !typ.Valid() {
		typ = domain.NotifySystem
	}
	n := &domain.Notification{
		ID:        domain.NewID(),
		UserID:    userID,
		Message:   message,
		Type:      typ,
		OrderID:   orderID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.PutNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NotificationService) ListForUser(ctx context.Context, actor domain.Actor, userID string) ([]domain.Notification, error) {
	userID = domain.NormalizeID(userID)
	if !actor.CanAccess(userID) {
		return nil, ErrForbidden("")
	}
	return s.Repo.ListNotifications(ctx, userID, notificationListLimit)
}

func (s *NotificationService) MarkRead(ctx context.Context, actor domain.Actor, id string) (*domain.Notification, error) {
	n, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if n.Read {
		return n, nil
	}
	n.Read = true
	if err := s.Repo.PutNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor domain.Actor, userID string) (int, error) {
	userID = domain.NormalizeID(userID)
	if !actor.CanAccess(userID) {
		return 0, ErrForbidden("")
	}
	return s.Repo.MarkAllNotificationsRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	ok, err := s.Repo.DeleteNotification(ctx, domain.NormalizeID(id))
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound("notification")
	}
	return nil
}

func (s *NotificationService) owned(ctx context.Context, actor domain.Actor, id string) (*domain.Notification, error) {
	n, ok, err := s.Repo.GetNotification(ctx, domain.NormalizeID(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound("notification")
	}
	if !actor.CanAccess(n.UserID) {
		return nil, ErrForbidden("")
	}
	return n, nil
}
