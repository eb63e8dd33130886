package events

import (
	"context"
	"sync"

	"sweetshop-backend/internal/domain"
)

const subscriberBuffer = 16

// Hub fans catalog events out to connected storefront streams. Delivery is
// best effort: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan domain.CatalogEvent]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan domain.CatalogEvent]struct{})}
}

func (h *Hub) Publish(_ context.Context, ev domain.CatalogEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of events and a func that detaches it. The
// channel is closed on detach or when the hub closes.
func (h *Hub) Subscribe() (<-chan domain.CatalogEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan domain.CatalogEvent, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[ch]; ok {
				delete(h.subs, ch)
				close(ch)
			}
		})
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
	return nil
}
