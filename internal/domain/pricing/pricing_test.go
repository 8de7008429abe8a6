package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestPrice_NoDiscounts(t *testing.T) {
	q := Price(CartInput{
		Lines: []LineInput{
			{ProductID: "p1", Name: "Soap", UnitPrice: d("250"), Quantity: 2},
		},
	})

	require.Len(t, q.Lines, 1)
	assert.True(t, q.Lines[0].Subtotal.Equal(d("500")), "subtotal %s", q.Lines[0].Subtotal)
	assert.True(t, q.Subtotal.Equal(d("500")))
	assert.True(t, q.Discount.IsZero())
	assert.True(t, q.Total.Equal(d("500")))
}

func TestPrice_LineDiscountBeforeOrderDiscount(t *testing.T) {
	// Line discount applies to the line subtotal; the order discount applies
	// to the sum of discounted line totals.
	q := Price(CartInput{
		Lines: []LineInput{
			{ProductID: "p1", UnitPrice: d("100"), Quantity: 5, Discount: Percent(d("20"))},
			{ProductID: "p2", UnitPrice: d("50"), Quantity: 2},
		},
		OrderDiscount: Percent(d("10")),
	})

	require.Len(t, q.Lines, 2)
	assert.True(t, q.Lines[0].Discount.Equal(d("100")))
	assert.True(t, q.Lines[0].Total.Equal(d("400")))
	assert.True(t, q.Subtotal.Equal(d("500")))
	assert.True(t, q.Discount.Equal(d("50")))
	assert.True(t, q.Total.Equal(d("450")))
}

func TestPrice_FixedOrderDiscount(t *testing.T) {
	q := Price(CartInput{
		Lines: []LineInput{
			{ProductID: "p1", UnitPrice: d("250"), Quantity: 2},
		},
		OrderDiscount: Fixed(d("50")),
	})

	assert.True(t, q.Total.Equal(d("450")), "total %s", q.Total)
}

func TestDiscount_AmountOffClamping(t *testing.T) {
	tests := []struct {
		name     string
		discount Discount
		base     string
		want     string
	}{
		{"percent over 100 clamps to base", Percent(d("150")), "200", "200"},
		{"negative percent is no-op", Percent(d("-5")), "200", "0"},
		{"fixed over base clamps to base", Fixed(d("500")), "200", "200"},
		{"fixed under base applies", Fixed(d("50")), "200", "50"},
		{"none is no-op", None(), "200", "0"},
		{"zero base yields zero", Percent(d("10")), "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.discount.AmountOff(d(tt.base))
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestPrice_TotalNeverNegative(t *testing.T) {
	q := Price(CartInput{
		Lines: []LineInput{
			{ProductID: "p1", UnitPrice: d("10"), Quantity: 1, Discount: Fixed(d("10"))},
		},
		OrderDiscount: Fixed(d("100")),
	})
	assert.False(t, q.Total.IsNegative())
	assert.True(t, q.Total.IsZero())
}

func TestPrice_Deterministic(t *testing.T) {
	input := CartInput{
		Lines: []LineInput{
			{ProductID: "p1", UnitPrice: d("19.99"), Quantity: 3, Discount: Percent(d("5"))},
			{ProductID: "p2", UnitPrice: d("4.50"), Quantity: 7},
		},
		OrderDiscount: Fixed(d("3")),
	}
	first := Price(input)
	second := Price(input)
	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.Subtotal.Equal(second.Subtotal))
}
