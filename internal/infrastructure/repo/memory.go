package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"sweetshop-backend/internal/domain"
)

type MemorySweetRepo struct {
	mu sync.RWMutex
	m  map[string]*domain.Sweet
}

func NewMemorySweetRepo() *MemorySweetRepo {
	return &MemorySweetRepo{m: make(map[string]*domain.Sweet)}
}

func (r *MemorySweetRepo) PutSweet(_ context.Context, s *domain.Sweet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := copySweet(s)
	if cur, ok := r.m[s.ID]; ok {
		cp.Stock = cur.Stock
		cp.QuantitySold = cur.QuantitySold
	}
	r.m[s.ID] = cp
	return nil
}

// ReplaceSweet writes the catalog fields and the three counters together,
// keeping only the sold count of the stored entry.
func (r *MemorySweetRepo) ReplaceSweet(_ context.Context, s *domain.Sweet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := copySweet(s)
	if cur, ok := r.m[s.ID]; ok {
		cp.QuantitySold = cur.QuantitySold
	}
	r.m[s.ID] = cp
	return nil
}

func (r *MemorySweetRepo) GetSweet(_ context.Context, id string) (*domain.Sweet, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.m[id]
	if !ok {
		return nil, false, nil
	}
	return copySweet(s), true, nil
}

func (r *MemorySweetRepo) ListSweets(_ context.Context) ([]domain.Sweet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Sweet, 0, len(r.m))
	for _, s := range r.m {
		out = append(out, *copySweet(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemorySweetRepo) DeleteSweet(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[id]; !ok {
		return false, nil
	}
	delete(r.m, id)
	return true, nil
}

func (r *MemorySweetRepo) SetStock(_ context.Context, id string, stock domain.Stock) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[id]
	if !ok {
		return false, nil
	}
	s.Stock = stock
	return true, nil
}

// AdjustStock checks the whole batch against the current counters before
// touching any of them, so a refused decrement leaves every counter as it was.
func (r *MemorySweetRepo) AdjustStock(_ context.Context, adjs []domain.StockAdjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make(map[string]domain.Stock, len(adjs))
	for _, a := range adjs {
		s, ok := r.m[a.SweetID]
		if !ok {
			return fmt.Errorf("sweet %s: %w", a.SweetID, domain.ErrUnknownSweet)
		}
		st, seen := next[a.SweetID]
		if !seen {
			st = s.Stock
		}
		st.Add(a.Size, a.Delta)
		if a.Delta < 0 && st.Get(a.Size) < 0 {
			return fmt.Errorf("%w: sweet %s size %s", domain.ErrInsufficientStock, a.SweetID, a.Size)
		}
		next[a.SweetID] = st
	}
	for _, a := range adjs {
		r.m[a.SweetID].QuantitySold -= a.Delta
	}
	for id, st := range next {
		r.m[id].Stock = st
	}
	return nil
}

func (r *MemorySweetRepo) AvailableStock(_ context.Context, sweetID string, size domain.SizeTier) (int, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.m[sweetID]
	if !ok {
		return 0, false, nil
	}
	return s.Get(size), true, nil
}

func copySweet(s *domain.Sweet) *domain.Sweet {
	cp := *s
	cp.Photos = append([]string(nil), s.Photos...)
	return &cp
}

type MemoryOrderRepo struct {
	mu sync.RWMutex
	m  map[string]*domain.Order
}

func NewMemoryOrderRepo() *MemoryOrderRepo {
	return &MemoryOrderRepo{m: make(map[string]*domain.Order)}
}

func (r *MemoryOrderRepo) PutOrder(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[o.ID] = copyOrder(o)
	return nil
}

func (r *MemoryOrderRepo) GetOrder(_ context.Context, id string) (*domain.Order, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.m[id]
	if !ok {
		return nil, false, nil
	}
	return copyOrder(o), true, nil
}

func (r *MemoryOrderRepo) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return r.SearchOrders(ctx, domain.OrderFilter{})
}

func (r *MemoryOrderRepo) ListOrdersByUser(_ context.Context, userID string) ([]domain.Order, error) {
	return r.collect(func(o *domain.Order) bool { return o.User.ID == userID }), nil
}

func (r *MemoryOrderRepo) SearchOrders(_ context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	return r.collect(func(o *domain.Order) bool { return f.Match(*o) }), nil
}

// collect returns matching orders newest first.
func (r *MemoryOrderRepo) collect(keep func(*domain.Order) bool) []domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Order, 0, len(r.m))
	for _, o := range r.m {
		if keep(o) {
			out = append(out, *copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func copyOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	return &cp
}

type MemoryNotificationRepo struct {
	mu sync.RWMutex
	m  map[string]*domain.Notification
}

func NewMemoryNotificationRepo() *MemoryNotificationRepo {
	return &MemoryNotificationRepo{m: make(map[string]*domain.Notification)}
}

func (r *MemoryNotificationRepo) PutNotification(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	r.m[n.ID] = &cp
	return nil
}

func (r *MemoryNotificationRepo) GetNotification(_ context.Context, id string) (*domain.Notification, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.m[id]
	if !ok {
		return nil, false, nil
	}
	cp := *n
	return &cp, true, nil
}

func (r *MemoryNotificationRepo) ListNotifications(_ context.Context, userID string, limit int) ([]domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Notification, 0)
	for _, n := range r.m {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryNotificationRepo) MarkAllNotificationsRead(_ context.Context, userID string) (int, error) {
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

func (r *MemoryNotificationRepo) DeleteNotification(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[id]; !ok {
		return false, nil
	}
	delete(r.m, id)
	return true, nil
}
