package catalog_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcatalog "github.com/swiftmart/pos/internal/application/catalog"
	"github.com/swiftmart/pos/internal/domain/auth"
	domcatalog "github.com/swiftmart/pos/internal/domain/catalog"
	"github.com/swiftmart/pos/internal/infrastructure/memory"
)

type seqIDGen struct{ n int }

func (g *seqIDGen) NewID() string {
	g.n++
	return fmt.Sprintf("prod-%d", g.n)
}

var (
	cashier = auth.Operator{UserID: "cashier-1", Role: auth.RoleCashier}
	admin   = auth.Operator{UserID: "admin-1", Role: auth.RoleAdmin}
)

func newService() (*appcatalog.Service, *memory.ProductRepository) {
	repo := memory.NewProductRepository()
	return appcatalog.NewService(repo, &seqIDGen{}, 5, nil), repo
}

func TestCreate_AdminOnly(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	input := appcatalog.CreateProductInput{
		Barcode:   "111",
		Name:      "Soap",
		Category:  "toiletries",
		Supplier:  "Acme",
		UnitPrice: decimal.RequireFromString("250"),
		Stock:     10,
	}

	_, err := svc.Create(ctx, cashier, input)
	require.ErrorIs(t, err, auth.ErrPermissionDenied)

	p, err := svc.Create(ctx, admin, input)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "toiletries", p.Category)
	assert.Equal(t, "Acme", p.Supplier)

	found, err := svc.Lookup(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)
}

func TestRestock(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	p, err := svc.Create(ctx, admin, appcatalog.CreateProductInput{
		Name: "Tea", UnitPrice: decimal.RequireFromString("100"), Stock: 3,
	})
	require.NoError(t, err)

	// Cashiers may restock; it is routine shelf work.
	stock, err := svc.Restock(ctx, cashier, p.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 10, stock)

	_, err = svc.Restock(ctx, cashier, p.ID, -1)
	require.ErrorIs(t, err, domcatalog.ErrInvalidQuantity)
}

func TestSetPrice_AdminOnly(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	p, err := svc.Create(ctx, admin, appcatalog.CreateProductInput{
		Name: "Tea", UnitPrice: decimal.RequireFromString("100"), Stock: 3,
	})
	require.NoError(t, err)

	_, err = svc.SetPrice(ctx, cashier, p.ID, decimal.RequireFromString("120"))
	require.ErrorIs(t, err, auth.ErrPermissionDenied)

	updated, err := svc.SetPrice(ctx, admin, p.ID, decimal.RequireFromString("120"))
	require.NoError(t, err)
	assert.True(t, updated.UnitPrice.Equal(decimal.RequireFromString("120")))

	_, err = svc.SetPrice(ctx, admin, p.ID, decimal.RequireFromString("-1"))
	require.ErrorIs(t, err, domcatalog.ErrInvalidPrice)
}

func TestLowStock(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, admin, appcatalog.CreateProductInput{
		Name: "Tea", UnitPrice: decimal.RequireFromString("100"), Stock: 3,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, admin, appcatalog.CreateProductInput{
		Name: "Soap", UnitPrice: decimal.RequireFromString("250"), Stock: 40,
	})
	require.NoError(t, err)

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Tea", low[0].Name)
}

func TestLookup_EmptyCode(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Lookup(context.Background(), "")
	require.ErrorIs(t, err, domcatalog.ErrNotFound)
}
