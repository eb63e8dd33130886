package events

import (
	"context"
	"errors"

	"sweetshop-backend/internal/domain"
)

type Sink interface {
	Publish(ctx context.Context, ev domain.CatalogEvent) error
}

// Multi publishes to every sink and joins their errors.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, ev domain.CatalogEvent) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
