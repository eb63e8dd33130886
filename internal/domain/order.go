package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderDelivered, OrderCancelled},
	OrderShipped:    {OrderDelivered},
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range []OrderStatus{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, true
		}
	}
	return "", false
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, n := range orderTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// ConsumesStock reports whether reaching this status takes the items out of the ledger.
func (s OrderStatus) ConsumesStock() bool {
	return s == OrderShipped || s == OrderDelivered
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCollected PaymentStatus = "Collected"
	PaymentFailed    PaymentStatus = "Failed"
)

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentCollected, PaymentFailed:
		return PaymentStatus(s), true
	}
	return "", false
}

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentUPI  PaymentMethod = "upi"
	PaymentCard PaymentMethod = "card"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(s))) {
	case "", PaymentCash:
		return PaymentCash, true
	case PaymentUPI:
		return PaymentUPI, true
	case PaymentCard:
		return PaymentCard, true
	}
	return "", false
}

type OrderItem struct {
	SweetID      string          `json:"sweet"`
	Quantity     int             `json:"quantity"`
	SelectedSize SizeTier        `json:"selectedSize"`
	Price        decimal.Decimal `json:"price"`
}

type Order struct {
	ID              string          `json:"_id"`
	User            UserSnapshot    `json:"user"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingAddress string          `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	Notes           string          `json:"notes"`
	Status          OrderStatus     `json:"status"`
	// StockDeducted is set once the items have been taken out of the ledger.
	StockDeducted bool      `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (o *Order) OwnedBy(userID string) bool {
	return userID != "" && o.User.ID == userID
}

// Adjustments turns the order items into ledger deltas, each multiplied by sign.
func (o *Order) Adjustments(sign int) []StockAdjustment {
	out := make([]StockAdjustment, 0, len(o.Items))
	for _, it := range o.Items {
		out = append(out, StockAdjustment{SweetID: it.SweetID, Size: it.SelectedSize, Delta: sign * it.Quantity})
	}
	return out
}

type OrderFilter struct {
	Query  string
	Status OrderStatus
	From   *time.Time
	To     *time.Time
}

func (f OrderFilter) Match(o Order) bool {
	if q := strings.TrimSpace(f.Query); q != "" {
		lq := strings.ToLower(q)
		byUser := strings.Contains(strings.ToLower(o.User.Name), lq) || strings.Contains(strings.ToLower(o.User.Phone), lq)
		byID := IsObjectID(q) && NormalizeID(q) == o.ID
		if !byUser && !byID {
			return false
		}
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.From != nil && o.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && o.CreatedAt.After(*f.To) {
		return false
	}
	return true
}
