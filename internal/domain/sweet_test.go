package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSizeTier(t *testing.T) {
	for in, want := range map[string]SizeTier{
		"250g":         Size250g,
		"quantity500g": Size500g,
		"1KG":          Size1kg,
		"quantity1kg":  Size1kg,
	} {
		got, ok := ParseSizeTier(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseSizeTier("2kg")
	assert.False(t, ok)
}

func TestSweet_PriceFor(t *testing.T) {
	s := Sweet{Price: decimal.NewFromInt(800)}
	assert.True(t, s.PriceFor(Size250g).Equal(decimal.NewFromInt(200)))
	assert.True(t, s.PriceFor(Size500g).Equal(decimal.NewFromInt(400)))
	assert.True(t, s.PriceFor(Size1kg).Equal(decimal.NewFromInt(800)))
}

func TestSweet_JSONShape(t *testing.T) {
	s := Sweet{ID: "S1", Name: "Kaju Katli", Price: decimal.NewFromInt(800), Stock: Stock{Qty250g: 1, Qty500g: 2, Qty1kg: 3}}
	b, err := json.Marshal(s)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "S1", m["_id"])
	assert.Equal(t, float64(800), m["price"])
	assert.Equal(t, float64(3), m["quantity1kg"])
}

func TestStock_AddAndValidate(t *testing.T) {
	var s Stock
	s.Add(Size1kg, 5)
	s.Add(Size1kg, -2)
	assert.Equal(t, 3, s.Get(Size1kg))
	assert.NoError(t, s.Validate())
	s.Add(Size250g, -1)
	assert.Error(t, s.Validate())
}
