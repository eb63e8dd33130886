package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sweetshop-backend/internal/domain"
)

// SweetRepo stores catalog entries. PutSweet on an existing sweet must keep
// its stock counters and sold count; those change only through SetStock,
// ReplaceSweet and the ledger. ReplaceSweet writes fields and counters in
// one step and keeps the sold count.
type SweetRepo interface {
	PutSweet(ctx context.Context, s *domain.Sweet) error
	ReplaceSweet(ctx context.Context, s *domain.Sweet) error
	GetSweet(ctx context.Context, id string) (*domain.Sweet, bool, error)
	ListSweets(ctx context.Context) ([]domain.Sweet, error)
	DeleteSweet(ctx context.Context, id string) (bool, error)
	SetStock(ctx context.Context, id string, stock domain.Stock) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, ev domain.CatalogEvent) error
}

type PhotoWriter interface {
	WriteFile(dir, filename string, data []byte) (string, error)
}

type SweetInput struct {
	Name         *string          `json:"name"`
	Price        *decimal.Decimal `json:"price"`
	Quantity250g *int             `json:"quantity250g"`
	Quantity500g *int             `json:"quantity500g"`
	Quantity1kg  *int             `json:"quantity1kg"`
	Description  *string          `json:"description"`
}

type Photo struct {
	Filename string
	Data     []byte
}

type CatalogService struct {
	Repo   SweetRepo
	Events EventPublisher
	Photos PhotoWriter
	Log    *zap.Logger
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Sweet, error) {
	return s.Repo.ListSweets(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Sweet, error) {
	sw, ok, err := s.Repo.GetSweet(ctx, domain.NormalizeID(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound("sweet")
	}
	return sw, nil
}

func (s *CatalogService) Create(ctx context.Context, actor domain.Actor, in SweetInput) (*domain.Sweet, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden("")
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, ErrBadRequest("name required")
	}
	if in.Price == nil || !in.Price.IsPositive() {
		return nil, ErrBadRequest("price must be positive")
	}
	now := time.Now().UTC()
	sw := &domain.Sweet{ID: domain.NewID(), Photos: []string{}, CreatedAt: now, UpdatedAt: now}
	if err := applySweetInput(sw, in); err != nil {
		return nil, err
	}
	if err := s.Repo.PutSweet(ctx, sw); err != nil {
		return nil, err
	}
	s.log().Info("sweet added", zap.String("sweet_id", sw.ID), zap.String("name", sw.Name))
	s.publish(ctx, domain.EventSweetAdded, sw)
	return sw, nil
}

func (s *CatalogService) Update(ctx context.Context, actor domain.Actor, id string, in SweetInput) (*domain.Sweet, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden("")
	}
	sw, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, ErrBadRequest("name must not be empty")
	}
	if in.Price != nil && !in.Price.IsPositive() {
		return nil, ErrBadRequest("price must be positive")
	}
	stockBefore := sw.Stock
	if err := applySweetInput(sw, in); err != nil {
		return nil, err
	}
	sw.UpdatedAt = time.Now().UTC()
	write := s.Repo.PutSweet
	if sw.Stock != stockBefore {
		write = s.Repo.ReplaceSweet
	}
	if err := write(ctx, sw); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.EventSweetUpdated, sw)
	return sw, nil
}

func (s *CatalogService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin {
		return ErrForbidden("")
	}
	id = domain.NormalizeID(id)
	ok, err := s.Repo.DeleteSweet(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound("sweet")
	}
	s.log().Info("sweet deleted", zap.String("sweet_id", id))
	s.publish(ctx, domain.EventSweetDeleted, id)
	return nil
}

// SetStock overwrites all three counters; it is not a delta.
func (s *CatalogService) SetStock(ctx context.Context, actor domain.Actor, id string, stock domain.Stock) (*domain.Sweet, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden("")
	}
	if err := stock.Validate(); err != nil {
		return nil, ErrBadRequest(err.Error())
	}
	id = domain.NormalizeID(id)
	ok, err := s.Repo.SetStock(ctx, id, stock)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound("sweet")
	}
	sw, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log().Info("stock overwritten", zap.String("sweet_id", id),
		zap.Int("quantity250g", stock.Qty250g), zap.Int("quantity500g", stock.Qty500g), zap.Int("quantity1kg", stock.Qty1kg))
	s.publish(ctx, domain.EventSweetUpdated, sw)
	return sw, nil
}

func (s *CatalogService) AddPhotos(ctx context.Context, actor domain.Actor, id string, photos []Photo) (*domain.Sweet, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden("")
	}
	if len(photos) == 0 {
		return nil, ErrBadRequest("photos required")
	}
	sw, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(sw.Photos)+len(photos) > domain.MaxSweetPhotos {
		return nil, ErrBadRequest(fmt.Sprintf("a sweet holds at most %d photos", domain.MaxSweetPhotos))
	}
	exts := make([]string, len(photos))
	for i, p := range photos {
		exts[i] = strings.ToLower(filepath.Ext(p.Filename))
		if !validImageExt(exts[i]) {
			return nil, ErrBadRequest("only jpg/png allowed")
		}
	}
	stamp := time.Now().UnixMilli()
	base := len(sw.Photos)
	for i, p := range photos {
		url, err := s.Photos.WriteFile("sweets/"+sw.ID, fmt.Sprintf("%d-%d%s", stamp, base+i, exts[i]), p.Data)
		if err != nil {
			return nil, err
		}
		sw.Photos = append(sw.Photos, url)
	}
	sw.UpdatedAt = time.Now().UTC()
	if err := s.Repo.PutSweet(ctx, sw); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.EventSweetUpdated, sw)
	return sw, nil
}

func applySweetInput(sw *domain.Sweet, in SweetInput) error {
	if in.Name != nil {
		sw.Name = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		sw.Price = *in.Price
	}
	if in.Description != nil {
		sw.Description = *in.Description
	}
	if in.Quantity250g != nil {
		sw.Qty250g = *in.Quantity250g
	}
	if in.Quantity500g != nil {
		sw.Qty500g = *in.Quantity500g
	}
	if in.Quantity1kg != nil {
		sw.Qty1kg = *in.Quantity1kg
	}
	if err := sw.Stock.Validate(); err != nil {
		return ErrBadRequest(err.Error())
	}
	return nil
}

func validImageExt(ext string) bool {
	return ext == ".jpg" || ext == ".jpeg" || ext == ".png"
}

// publish is fire-and-forget: a storefront that misses an event refreshes on reload.
func (s *CatalogService) publish(ctx context.Context, name string, payload any) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, domain.CatalogEvent{Name: name, Payload: payload}); err != nil {
		s.log().Warn("catalog event not delivered", zap.String("event", name), zap.Error(err))
	}
}

func (s *CatalogService) log() *zap.Logger {
	return logger(s.Log)
}
