package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"sweetshop-backend/internal/domain"
)

// OrderSubmission is the checkout payload as the storefront sends it.
type OrderSubmission struct {
	User            domain.UserInput `json:"user"`
	Items           json.RawMessage  `json:"items"`
	TotalAmount     decimal.Decimal  `json:"totalAmount"`
	ShippingAddress string           `json:"shippingAddress"`
	PaymentMethod   string           `json:"paymentMethod"`
	Notes           string           `json:"notes"`
}

// maxItemQuantity keeps a line quantity inside the 32-bit stock counters.
const maxItemQuantity = math.MaxInt32

type submittedItem struct {
	Sweet        domain.ObjectRef `json:"sweet"`
	Quantity     float64          `json:"quantity"`
	Price        decimal.Decimal  `json:"price"`
	SelectedSize string           `json:"selectedSize"`
}

// ValidateOrder checks a submission and returns the order draft it describes.
// It does not touch storage; the caller resolves the user and assigns the id.
func ValidateOrder(sub OrderSubmission) (*domain.Order, error) {
	if sub.User.Empty() {
		return nil, ErrBadRequest("user is required")
	}
	raw := bytes.TrimSpace(sub.Items)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, ErrBadRequest("items must be a non-empty list")
	}
	var in []submittedItem
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, ErrBadRequest("items: " + err.Error())
	}
	if len(in) == 0 {
		return nil, ErrBadRequest("items must be a non-empty list")
	}

	items := make([]domain.OrderItem, 0, len(in))
	sum := decimal.Zero
	for i, it := range in {
		ref := strings.TrimSpace(string(it.Sweet))
		if ref == "" {
			return nil, ErrBadRequest(fmt.Sprintf("items[%d]: sweet is required", i))
		}
		if it.Quantity < 1 || it.Quantity != math.Trunc(it.Quantity) {
			return nil, ErrBadRequest(fmt.Sprintf("items[%d]: quantity must be a positive integer", i))
		}
		if it.Quantity > maxItemQuantity {
			return nil, ErrBadRequest(fmt.Sprintf("items[%d]: quantity must not exceed %d", i, maxItemQuantity))
		}
		size, ok := domain.ParseSizeTier(it.SelectedSize)
		if !ok {
			return nil, ErrBadRequest(fmt.Sprintf("items[%d]: selectedSize must be one of 250g, 500g, 1kg", i))
		}
		if it.Price.IsNegative() {
			return nil, ErrBadRequest(fmt.Sprintf("items[%d]: price must not be negative", i))
		}
		item := domain.OrderItem{
			SweetID:      domain.NormalizeID(string(it.Sweet)),
			Quantity:     int(it.Quantity),
			SelectedSize: size,
			Price:        it.Price,
		}
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		items = append(items, item)
	}

	method, ok := domain.ParsePaymentMethod(sub.PaymentMethod)
	if !ok {
		return nil, ErrBadRequest("paymentMethod must be one of cash, upi, card")
	}
	total := sub.TotalAmount
	if total.IsNegative() {
		return nil, ErrBadRequest("totalAmount must not be negative")
	}
	if total.IsZero() {
		total = sum
	}

	return &domain.Order{
		Items:           items,
		TotalAmount:     total,
		ShippingAddress: strings.TrimSpace(sub.ShippingAddress),
		PaymentMethod:   method,
		PaymentStatus:   domain.PaymentPending,
		Notes:           sub.Notes,
		Status:          domain.OrderPending,
	}, nil
}
