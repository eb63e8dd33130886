package usecase

import (
	"context"
	"errors"
	"sync"

	"sweetshop-backend/internal/domain"
)

type fakeOrderRepo struct {
	mu      sync.Mutex
	m       map[string]*domain.Order
	failPut error
}

func (r *fakeOrderRepo) PutOrder(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failPut != nil {
		return r.failPut
	}
	if r.m == nil {
		r.m = map[string]*domain.Order{}
	}
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	r.m[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) GetOrder(_ context.Context, id string) (*domain.Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.m[id]
	if !ok {
		return nil, false, nil
	}
	cp := *o
	return &cp, true, nil
}

func (r *fakeOrderRepo) ListOrders(context.Context) ([]domain.Order, error) {
	return r.filter(func(domain.Order) bool { return true }), nil
}

func (r *fakeOrderRepo) ListOrdersByUser(_ context.Context, userID string) ([]domain.Order, error) {
	return r.filter(func(o domain.Order) bool { return o.User.ID == userID }), nil
}

func (r *fakeOrderRepo) SearchOrders(_ context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	return r.filter(f.Match), nil
}

func (r *fakeOrderRepo) filter(keep func(domain.Order) bool) []domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.m {
		if keep(*o) {
			out = append(out, *o)
		}
	}
	return out
}

type fakeNotificationRepo struct {
	mu   sync.Mutex
	m    map[string]*domain.Notification
	fail bool
}

func (r *fakeNotificationRepo) PutNotification(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("notification store down")
	}
	if r.m == nil {
		r.m = map[string]*domain.Notification{}
	}
	cp := *n
	r.m[n.ID] = &cp
	return nil
}

func (r *fakeNotificationRepo) GetNotification(_ context.Context, id string) (*domain.Notification, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.m[id]
	if !ok {
		return nil, false, nil
	}
	cp := *n
	return &cp, true, nil
}

func (r *fakeNotificationRepo) ListNotifications(_ context.Context, userID string, limit int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.m {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkAllNotificationsRead(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, v := range r.m {
		if v.UserID == userID && !v.Read {
			v.Read = true
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) DeleteNotification(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[id]; !ok {
		return false, nil
	}
	delete(r.m, id)
	return true, nil
}

func (r *fakeNotificationRepo) all() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Notification, 0, len(r.m))
	for _, n := range r.m {
		out = append(out, *n)
	}
	return out
}
