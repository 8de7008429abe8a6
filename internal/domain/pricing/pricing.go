// Package pricing is the pure discount engine. Price is deterministic over a
// cart snapshot: the same input always yields the same quote, which is what
// makes receipts reproducible and the engine testable in isolation.
package pricing

import (
	"github.com/shopspring/decimal"
)

type DiscountKind string

const (
	DiscountNone    DiscountKind = "none"
	DiscountPercent DiscountKind = "percent"
	DiscountFixed   DiscountKind = "fixed"
)

var (
	hundred = decimal.NewFromInt(100)
)

// Discount is a percentage or fixed reduction. Values outside the valid range
// are clamped rather than rejected: percentages to [0,100], fixed amounts to
// the subtotal they apply against.
type Discount struct {
	Kind  DiscountKind
	Value decimal.Decimal
}

func None() Discount { return Discount{Kind: DiscountNone} }

func Percent(v decimal.Decimal) Discount { return Discount{Kind: DiscountPercent, Value: v} }

func Fixed(v decimal.Decimal) Discount { return Discount{Kind: DiscountFixed, Value: v} }

// IsZero reports whether the discount has no effect on any amount.
func (d Discount) IsZero() bool {
	return d.Kind == DiscountNone || d.Kind == "" || !d.Value.IsPositive()
}

// AmountOff returns the reduction the discount takes from base, clamped so it
// is never negative and never exceeds base.
func (d Discount) AmountOff(base decimal.Decimal) decimal.Decimal {
	if d.IsZero() || !base.IsPositive() {
		return decimal.Zero
	}
	switch d.Kind {
	case DiscountPercent:
		pct := d.Value
		if pct.GreaterThan(hundred) {
			pct = hundred
		}
		return base.Mul(pct).Div(hundred)
	case DiscountFixed:
		if d.Value.GreaterThan(base) {
			return base
		}
		return d.Value
	default:
		return decimal.Zero
	}
}

// LineInput is a priced cart line snapshot.
type LineInput struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Discount  Discount
}

type CartInput struct {
	Lines         []LineInput
	OrderDiscount Discount
}

type LineQuote struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
}

type Quote struct {
	Lines    []LineQuote
	Subtotal decimal.Decimal // sum of line totals after line discounts
	Discount decimal.Decimal // order-level discount amount
	Total    decimal.Decimal
}

// Price applies line discounts before the order discount; the order discount
// applies to the post-line-discount subtotal. The total is never negative.
func Price(cart CartInput) Quote {
	q := Quote{
		Lines:    make([]LineQuote, 0, len(cart.Lines)),
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Total:    decimal.Zero,
	}

	for _, line := range cart.Lines {
		subtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		off := line.Discount.AmountOff(subtotal)
		lq := LineQuote{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  subtotal,
			Discount:  off,
			Total:     subtotal.Sub(off),
		}
		q.Lines = append(q.Lines, lq)
		q.Subtotal = q.Subtotal.Add(lq.Total)
	}

	q.Discount = cart.OrderDiscount.AmountOff(q.Subtotal)
	q.Total = q.Subtotal.Sub(q.Discount)
	if q.Total.IsNegative() {
		q.Total = decimal.Zero
	}
	return q
}
