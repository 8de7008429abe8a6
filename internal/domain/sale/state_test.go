package sale

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftmart/pos/internal/domain/payment"
	"github.com/swiftmart/pos/internal/domain/pricing"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func testCart() *Cart {
	c := NewCart("cart-1", "cashier-1", "cust-1")
	_ = c.AddLine(Line{ProductID: "p1", Name: "Soap", UnitPrice: d("250"), Quantity: 2})
	return c
}

func pricedCart(t *testing.T) *Cart {
	t.Helper()
	c := testCart()
	_, err := c.Price()
	require.NoError(t, err)
	return c
}

func settledCart(t *testing.T) *Cart {
	t.Helper()
	c := pricedCart(t)
	_, err := c.Settle([]payment.Tender{{Mode: payment.ModeCard, Amount: d("500")}})
	require.NoError(t, err)
	return c
}

func TestCart_Lifecycle(t *testing.T) {
	c := testCart()
	assert.Equal(t, StatusOpen, c.Status())

	quote, err := c.Price()
	require.NoError(t, err)
	assert.Equal(t, StatusPriced, c.Status())
	assert.True(t, quote.Total.Equal(d("500")))

	settlement, err := c.Settle([]payment.Tender{{Mode: payment.ModeCash, Amount: d("500")}})
	require.NoError(t, err)
	assert.Equal(t, StatusSettling, c.Status())
	assert.True(t, settlement.Change.IsZero())

	require.NoError(t, c.MarkCommitted())
	assert.Equal(t, StatusCommitted, c.Status())
}

func TestCart_EditReturnsToOpenAndClearsQuote(t *testing.T) {
	c := pricedCart(t)
	require.NotNil(t, c.Quote)

	require.NoError(t, c.AddLine(Line{ProductID: "p2", Name: "Tea", UnitPrice: d("100"), Quantity: 1}))
	assert.Equal(t, StatusOpen, c.Status())
	assert.Nil(t, c.Quote, "quote is stale once contents change")
}

func TestCart_PriceEmptyCart(t *testing.T) {
	c := NewCart("cart-1", "cashier-1", "")
	_, err := c.Price()
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, StatusOpen, c.Status())
}

func TestCart_AddLineInvalidQuantity(t *testing.T) {
	c := NewCart("cart-1", "cashier-1", "")
	err := c.AddLine(Line{ProductID: "p1", UnitPrice: d("10"), Quantity: 0})
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCart_RemoveLineNotFound(t *testing.T) {
	c := testCart()
	require.ErrorIs(t, c.RemoveLine("missing"), ErrLineNotFound)
}

func TestCart_SettleRequiresPriced(t *testing.T) {
	c := testCart()
	_, err := c.Settle([]payment.Tender{{Mode: payment.ModeCash, Amount: d("500")}})
	require.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestCart_FailedSettleStaysSettling(t *testing.T) {
	c := pricedCart(t)

	_, err := c.Settle([]payment.Tender{{Mode: payment.ModeCard, Amount: d("400")}})
	require.ErrorIs(t, err, payment.ErrUnderpaid)
	assert.Equal(t, StatusSettling, c.Status())
	assert.Nil(t, c.Settlement)

	// Corrected tenders succeed without re-pricing.
	_, err = c.Settle([]payment.Tender{{Mode: payment.ModeCard, Amount: d("500")}})
	require.NoError(t, err)
	require.NotNil(t, c.Settlement)
}

func TestCart_CommitRequiresSettlement(t *testing.T) {
	c := pricedCart(t)
	require.ErrorIs(t, c.MarkCommitted(), ErrNotSettled)
}

func TestCart_CommitIdempotent(t *testing.T) {
	c := settledCart(t)
	require.NoError(t, c.MarkCommitted())
	require.NoError(t, c.MarkCommitted())
	assert.Equal(t, StatusCommitted, c.Status())
}

func TestCart_ReturnToPricedDropsSettlement(t *testing.T) {
	c := settledCart(t)
	require.NoError(t, c.ReturnToPriced())
	assert.Equal(t, StatusPriced, c.Status())
	assert.Nil(t, c.Settlement)
	require.NotNil(t, c.Quote, "quote survives the rollback")
}

func TestCart_VoidIsTerminal(t *testing.T) {
	c := settledCart(t)
	require.NoError(t, c.Void("customer walked away"))
	assert.Equal(t, StatusVoided, c.Status())
	assert.Equal(t, "customer walked away", c.VoidReason)

	assert.ErrorIs(t, c.AddLine(Line{ProductID: "p2", UnitPrice: d("10"), Quantity: 1}), ErrInvalidStateTransition)
	_, err := c.Price()
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
	assert.ErrorIs(t, c.MarkCommitted(), ErrInvalidStateTransition)
	assert.NoError(t, c.Void("again"), "re-voiding is a no-op")
}

func TestCart_CommittedRejectsEditsAndVoid(t *testing.T) {
	c := settledCart(t)
	require.NoError(t, c.MarkCommitted())

	assert.ErrorIs(t, c.RemoveLine("p1"), ErrInvalidStateTransition)
	assert.ErrorIs(t, c.SetOrderDiscount(pricing.Percent(d("10"))), ErrInvalidStateTransition)
	assert.ErrorIs(t, c.Void("too late"), ErrInvalidStateTransition)
}

func TestCart_Finalize(t *testing.T) {
	c := settledCart(t)
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	record, err := c.Finalize(c.ID, at, 5)
	require.NoError(t, err)
	assert.Equal(t, c.ID, record.ID)
	assert.Equal(t, at, record.At)
	assert.Equal(t, "cashier-1", record.CashierID)
	assert.Equal(t, "cust-1", record.CustomerID)
	assert.True(t, record.Total.Equal(d("500")))
	assert.Equal(t, 5, record.PointsEarned)
	require.Len(t, record.Payments, 1)
}

func TestCart_FinalizeRequiresSettlement(t *testing.T) {
	c := pricedCart(t)
	_, err := c.Finalize(c.ID, time.Now(), 0)
	require.ErrorIs(t, err, ErrNotSettled)
}
