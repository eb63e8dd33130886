package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"sweetshop-backend/internal/domain"
)

// StockRepo applies ledger adjustments. AdjustStock must apply the whole batch
// or nothing, and must refuse any decrement that would take a counter below
// zero with domain.ErrInsufficientStock.
type StockRepo interface {
	AdjustStock(ctx context.Context, adjs []domain.StockAdjustment) error
	AvailableStock(ctx context.Context, sweetID string, size domain.SizeTier) (int, bool, error)
}

type InventoryService struct {
	Repo StockRepo
	Log  *zap.Logger
}

func (s *InventoryService) Adjust(ctx context.Context, sweetID string, size domain.SizeTier, delta int) error {
	size, ok := domain.ParseSizeTier(string(size))
	if !ok {
		return ErrBadRequest("invalid size tier")
	}
	if delta == 0 {
		return nil
	}
	return s.apply(ctx, []domain.StockAdjustment{{SweetID: sweetID, Size: size, Delta: delta}})
}

// GetAvailable is advisory; the value can change before any order ships.
func (s *InventoryService) GetAvailable(ctx context.Context, sweetID string, size domain.SizeTier) (int, error) {
	size, ok := domain.ParseSizeTier(string(size))
	if !ok {
		return 0, ErrBadRequest("invalid size tier")
	}
	n, ok, err := s.Repo.AvailableStock(ctx, sweetID, size)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNotFound("sweet")
	}
	return n, nil
}

func (s *InventoryService) Deduct(ctx context.Context, o *domain.Order) error {
	return s.apply(ctx, o.Adjustments(-1))
}

func (s *InventoryService) Restock(ctx context.Context, o *domain.Order) error {
	return s.apply(ctx, o.Adjustments(1))
}

func (s *InventoryService) apply(ctx context.Context, adjs []domain.StockAdjustment) error {
	if len(adjs) == 0 {
		return nil
	}
	err := s.Repo.AdjustStock(ctx, adjs)
	switch {
	case err == nil:
		logger(s.Log).Debug("ledger adjusted", zap.Int("adjustments", len(adjs)))
		return nil
	case errors.Is(err, domain.ErrInsufficientStock):
		return ErrConflict(err.Error())
	case errors.Is(err, domain.ErrUnknownSweet):
		return ErrNotFound("sweet")
	}
	return err
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
