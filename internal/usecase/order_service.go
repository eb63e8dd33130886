package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"sweetshop-backend/internal/domain"
)

var tracer = otel.Tracer("sweetshop-backend/usecase")

type OrderRepo interface {
	PutOrder(ctx context.Context, o *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, bool, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)
	SearchOrders(ctx context.Context, f domain.OrderFilter) ([]domain.Order, error)
}

type Ledger interface {
	Deduct(ctx context.Context, o *domain.Order) error
	Restock(ctx context.Context, o *domain.Order) error
}

type Notifier interface {
	Emit(ctx context.Context, userID, message string, typ domain.NotificationType, orderID string) (*domain.Notification, error)
}

type OrderService struct {
	Repo     OrderRepo
	Ledger   Ledger
	Notifier Notifier
	Log      *zap.Logger
}

func (s *OrderService) Create(ctx context.Context, actor domain.Actor, sub OrderSubmission) (o *domain.Order, err error) {
	ctx, span := tracer.Start(ctx, "OrderService.Create")
	defer func() { endSpan(span, err) }()

	o, err = ValidateOrder(sub)
	if err != nil {
		return nil, err
	}
	user, err := resolveUser(actor, sub.User)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	o.ID = domain.NewID()
	o.User = user
	o.CreatedAt = now
	o.UpdatedAt = now
	span.SetAttributes(attribute.String("order.id", o.ID))
	if err := s.Repo.PutOrder(ctx, o); err != nil {
		return nil, err
	}
	s.log().Info("order placed", zap.String("order_id", o.ID), zap.String("user_id", user.ID), zap.Int("items", len(o.Items)))
	return o, nil
}

// resolveUser turns the submitted user variant into the snapshot embedded in
// the order. A snapshot without an id belongs to the caller.
func resolveUser(actor domain.Actor, in domain.UserInput) (domain.UserSnapshot, error) {
	var u domain.UserSnapshot
	if in.Snapshot != nil {
		u = *in.Snapshot
	} else {
		u.ID = strings.TrimSpace(in.Ref)
	}
	if strings.TrimSpace(u.ID) == "" {
		u.ID = actor.ID
	}
	u.ID = domain.NormalizeID(u.ID)
	if u.ID == "" {
		return u, ErrBadRequest("user is required")
	}
	if !actor.CanAccess(u.ID) {
		return u, ErrForbidden("cannot place an order for another user")
	}
	if u.ID == actor.ID {
		if u.Email == "" {
			u.Email = actor.Email
		}
		if u.Name == "" {
			u.Name = actor.Name
		}
	}
	return u, nil
}

func (s *OrderService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(o.User.ID) {
		return nil, ErrForbidden("")
	}
	return o, nil
}

func (s *OrderService) ListAll(ctx context.Context, actor domain.Actor) ([]domain.Order, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden("")
	}
	return s.Repo.ListOrders(ctx)
}

func (s *OrderService) ListForUser(ctx context.Context, actor domain.Actor, userID string) ([]domain.Order, error) {
	userID = domain.NormalizeID(userID)
	if !actor.CanAccess(userID) {
		return nil, ErrForbidden("")
	}
	return s.Repo.ListOrdersByUser(ctx, userID)
}

func (s *OrderService) Search(ctx context.Context, actor domain.Actor, f domain.OrderFilter) ([]domain.Order, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden("")
	}
	return s.Repo.SearchOrders(ctx, f)
}

// UpdateStatus is the administrator transition. The first move into Shipped or
// Delivered takes the items out of the ledger as one batch; if any counter
// would go negative nothing changes and the transition fails.
func (s *OrderService) UpdateStatus(ctx context.Context, actor domain.Actor, id, status string) (o *domain.Order, err error) {
	ctx, span := tracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		attribute.String("order.id", id),
		attribute.String("order.status", status),
	))
	defer func() { endSpan(span, err) }()

	if !actor.IsAdmin {
		return nil, ErrForbidden("")
	}
	next, ok := domain.ParseOrderStatus(status)
	if !ok {
		return nil, ErrBadRequest("invalid status")
	}
	o, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if next == domain.OrderCancelled {
		return s.cancel(ctx, o)
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, ErrInvalidState(fmt.Sprintf("cannot move order from %s to %s", o.Status, next))
	}

	deducted := false
	if next.ConsumesStock() && !o.StockDeducted {
		if err := s.Ledger.Deduct(ctx, o); err != nil {
			return nil, err
		}
		o.StockDeducted = true
		deducted = true
	}
	prev := o.Status
	o.Status = next
	o.UpdatedAt = time.Now().UTC()
	if err := s.Repo.PutOrder(ctx, o); err != nil {
		if deducted {
			if rerr := s.Ledger.Restock(ctx, o); rerr != nil {
				s.log().Error("restock after failed status save", zap.String("order_id", o.ID), zap.Error(rerr))
			}
		}
		return nil, err
	}
	s.log().Info("order status updated", zap.String("order_id", o.ID), zap.String("from", string(prev)), zap.String("to", string(next)))

	typ := domain.NotifyOrderStatus
	if next == domain.OrderDelivered {
		typ = domain.NotifyDelivery
	}
	s.notify(ctx, o, fmt.Sprintf("Your order #%s status has been updated to %s", o.ID, next), typ)
	return o, nil
}

func (s *OrderService) Cancel(ctx context.Context, actor domain.Actor, id string) (o *domain.Order, err error) {
	ctx, span := tracer.Start(ctx, "OrderService.Cancel", trace.WithAttributes(attribute.String("order.id", id)))
	defer func() { endSpan(span, err) }()

	o, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(o.User.ID) {
		return nil, ErrForbidden("")
	}
	return s.cancel(ctx, o)
}

func (s *OrderService) cancel(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	if o.Status != domain.OrderPending {
		return nil, ErrInvalidState("can only cancel pending orders")
	}
	// only what was taken out is put back
	if o.StockDeducted {
		if err := s.Ledger.Restock(ctx, o); err != nil {
			s.log().Warn("restock on cancel failed", zap.String("order_id", o.ID), zap.Error(err))
		} else {
			o.StockDeducted = false
		}
	}
	o.Status = domain.OrderCancelled
	o.UpdatedAt = time.Now().UTC()
	if err := s.Repo.PutOrder(ctx, o); err != nil {
		return nil, err
	}
	s.log().Info("order cancelled", zap.String("order_id", o.ID))
	s.notify(ctx, o, fmt.Sprintf("Your order #%s has been cancelled", o.ID), domain.NotifyOrderStatus)
	return o, nil
}

func (s *OrderService) UpdatePaymentStatus(ctx context.Context, actor domain.Actor, id, paymentStatus string) (o *domain.Order, err error) {
	ctx, span := tracer.Start(ctx, "OrderService.UpdatePaymentStatus", trace.WithAttributes(attribute.String("order.id", id)))
	defer func() { endSpan(span, err) }()

	if !actor.IsAdmin {
		return nil, ErrForbidden("")
	}
	ps, ok := domain.ParsePaymentStatus(paymentStatus)
	if !ok {
		return nil, ErrBadRequest("invalid payment status")
	}
	o, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	o.PaymentStatus = ps
	o.UpdatedAt = time.Now().UTC()
	if err := s.Repo.PutOrder(ctx, o); err != nil {
		return nil, err
	}
	s.log().Info("payment status updated", zap.String("order_id", o.ID), zap.String("payment_status", string(ps)))
	s.notify(ctx, o, fmt.Sprintf("Payment for your order #%s has been marked as %s", o.ID, ps), domain.NotifyOrderStatus)
	return o, nil
}

func (s *OrderService) load(ctx context.Context, id string) (*domain.Order, error) {
	o, ok, err := s.Repo.GetOrder(ctx, domain.NormalizeID(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound("order")
	}
	return o, nil
}

// notify never fails the caller; the order change has already been saved.
func (s *OrderService) notify(ctx context.Context, o *domain.Order, msg string, typ domain.NotificationType) {
	if s.Notifier == nil {
		return
	}
	if o.User.ID == "" {
		s.log().Warn("order has no user to notify", zap.String("order_id", o.ID))
		return
	}
	if _, err := s.Notifier.Emit(ctx, o.User.ID, msg, typ, o.ID); err != nil {
		s.log().Warn("notification failed", zap.String("order_id", o.ID), zap.String("user_id", o.User.ID), zap.Error(err))
	}
}

func (s *OrderService) log() *zap.Logger {
	return logger(s.Log)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
