package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices travel as JSON numbers to and from the storefront
	decimal.MarshalJSONWithoutQuotes = true
}

type SizeTier string

const (
	Size250g SizeTier = "250g"
	Size500g SizeTier = "500g"
	Size1kg  SizeTier = "1kg"
)

var SizeTiers = []SizeTier{Size250g, Size500g, Size1kg}

func ParseSizeTier(s string) (SizeTier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "250g", "quantity250g":
		return Size250g, true
	case "500g", "quantity500g":
		return Size500g, true
	case "1kg", "1000g", "quantity1kg":
		return Size1kg, true
	}
	return "", false
}

func (t SizeTier) Valid() bool {
	_, ok := ParseSizeTier(string(t))
	return ok
}

// Fraction is the share of a kilogram sold in this tier.
func (t SizeTier) Fraction() decimal.Decimal {
	switch t {
	case Size250g:
		return decimal.New(25, -2)
	case Size500g:
		return decimal.New(5, -1)
	default:
		return decimal.NewFromInt(1)
	}
}

type Stock struct {
	Qty250g int `json:"quantity250g"`
	Qty500g int `json:"quantity500g"`
	Qty1kg  int `json:"quantity1kg"`
}

func (s Stock) Get(t SizeTier) int {
	switch t {
	case Size250g:
		return s.Qty250g
	case Size500g:
		return s.Qty500g
	case Size1kg:
		return s.Qty1kg
	}
	return 0
}

func (s *Stock) Add(t SizeTier, delta int) {
	switch t {
	case Size250g:
		s.Qty250g += delta
	case Size500g:
		s.Qty500g += delta
	case Size1kg:
		s.Qty1kg += delta
	}
}

func (s Stock) Validate() error {
	if s.Qty250g < 0 || s.Qty500g < 0 || s.Qty1kg < 0 {
		return errors.New("stock counters must not be negative")
	}
	return nil
}

const MaxSweetPhotos = 3

type Sweet struct {
	ID           string          `json:"_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Stock
	QuantitySold int       `json:"quantitySold"`
	Description  string    `json:"description"`
	Photos       []string  `json:"photos"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PriceFor derives the tier price from the per-kilogram price.
func (s Sweet) PriceFor(t SizeTier) decimal.Decimal {
	return s.Price.Mul(t.Fraction())
}

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnknownSweet      = errors.New("unknown sweet")
)

type StockAdjustment struct {
	SweetID string
	Size    SizeTier
	Delta   int
}
