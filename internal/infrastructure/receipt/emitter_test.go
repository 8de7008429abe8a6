package receipt

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftmart/pos/internal/domain/payment"
	"github.com/swiftmart/pos/internal/domain/pricing"
	"github.com/swiftmart/pos/internal/domain/sale"
)

func testSale() *sale.Sale {
	d := decimal.RequireFromString
	return &sale.Sale{
		ID:         "sale-1",
		At:         time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC),
		CashierID:  "cashier-1",
		CustomerID: "cust-1",
		Lines: []pricing.LineQuote{
			{ProductID: "p1", Name: "Soap", Quantity: 2, UnitPrice: d("250"), Subtotal: d("500"), Discount: d("0"), Total: d("500")},
		},
		Subtotal: d("500"),
		Discount: d("50"),
		Total:    d("450"),
		Payments: []payment.Tender{
			{Mode: payment.ModeCash, Amount: d("500")},
		},
		Change:       d("50"),
		PointsEarned: 4,
	}
}

func TestEmit_WritesReceiptFile(t *testing.T) {
	dir := t.TempDir()
	e := NewEmitter(dir, "SwiftMart")

	require.NoError(t, e.Emit(context.Background(), testSale()))

	raw, err := os.ReadFile(filepath.Join(dir, "receipt_sale-1.txt"))
	require.NoError(t, err)
	text := string(raw)

	assert.Contains(t, text, "SwiftMart")
	assert.Contains(t, text, "RECEIPT - Sale sale-1")
	assert.Contains(t, text, "Customer: cust-1")
	assert.Contains(t, text, "Soap")
	assert.Contains(t, text, "SUBTOTAL: 500.00")
	assert.Contains(t, text, "ORDER DISCOUNT: 50.00")
	assert.Contains(t, text, "TOTAL: 450.00")
	assert.Contains(t, text, "PAID (cash): 500.00")
	assert.Contains(t, text, "CHANGE: 50.00")
	assert.Contains(t, text, "LOYALTY POINTS EARNED: 4")
}

func TestEmit_OmitsOptionalSections(t *testing.T) {
	dir := t.TempDir()
	e := NewEmitter(dir, "SwiftMart")

	s := testSale()
	s.ID = "sale-2"
	s.CustomerID = ""
	s.Change = decimal.Zero
	s.PointsEarned = 0
	require.NoError(t, e.Emit(context.Background(), s))

	raw, err := os.ReadFile(filepath.Join(dir, "receipt_sale-2.txt"))
	require.NoError(t, err)
	text := string(raw)

	assert.NotContains(t, text, "Customer:")
	assert.NotContains(t, text, "CHANGE:")
	assert.NotContains(t, text, "LOYALTY POINTS")
}

func TestEmit_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "receipts")
	e := NewEmitter(dir, "SwiftMart")

	require.NoError(t, e.Emit(context.Background(), testSale()))
	_, err := os.Stat(filepath.Join(dir, "receipt_sale-1.txt"))
	require.NoError(t, err)
}
