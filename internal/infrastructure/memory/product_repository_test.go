package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domcatalog "github.com/swiftmart/pos/internal/domain/catalog"
	domcustomer "github.com/swiftmart/pos/internal/domain/customer"
)

func newProduct(t *testing.T, id, barcode string, price string, stock int) *domcatalog.Product {
	t.Helper()
	p, err := domcatalog.NewProduct(id, barcode, "Item "+id, decimal.RequireFromString(price), stock)
	require.NoError(t, err)
	return p
}

func TestProductRepository_InsertAndLookup(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newProduct(t, "p1", "111", "250", 10)))

	byID, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", byID.ID)
	assert.Equal(t, 1, byID.Version)

	byCode, err := repo.FindByCode(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, "p1", byCode.ID)

	// A bare product id also resolves, for registers without a scanner.
	byIDCode, err := repo.FindByCode(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", byIDCode.ID)

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, domcatalog.ErrNotFound)
}

func TestProductRepository_InsertConflicts(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newProduct(t, "p1", "111", "250", 10)))
	require.ErrorIs(t, repo.Insert(ctx, newProduct(t, "p1", "999", "250", 10)), domcatalog.ErrConflict)
	require.ErrorIs(t, repo.Insert(ctx, newProduct(t, "p2", "111", "250", 10)), domcatalog.ErrConflict)
}

func TestProductRepository_UpdateCompareAndSet(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, newProduct(t, "p1", "111", "250", 10)))

	first, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	second, err := repo.Get(ctx, "p1")
	require.NoError(t, err)

	require.NoError(t, first.SetUnitPrice(decimal.RequireFromString("300")))
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, 2, first.Version)

	// The second reader holds a stale version now.
	require.NoError(t, second.SetUnitPrice(decimal.RequireFromString("275")))
	require.ErrorIs(t, repo.Update(ctx, second), domcatalog.ErrConflict)

	current, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, current.UnitPrice.Equal(decimal.RequireFromString("300")))
}

func TestProductRepository_DeductAndRestock(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, newProduct(t, "p1", "111", "250", 10)))

	remaining, err := repo.Deduct(ctx, "p1", 4)
	require.NoError(t, err)
	assert.Equal(t, 6, remaining)

	_, err = repo.Deduct(ctx, "p1", 7)
	require.ErrorIs(t, err, domcatalog.ErrInsufficientStock)

	remaining, err = repo.Restock(ctx, "p1", 5)
	require.NoError(t, err)
	assert.Equal(t, 11, remaining)

	_, err = repo.Deduct(ctx, "missing", 1)
	require.ErrorIs(t, err, domcatalog.ErrNotFound)
}

func TestProductRepository_CloneOnRead(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, newProduct(t, "p1", "111", "250", 10)))

	read, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	read.Stock = 0

	again, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 10, again.Stock, "caller mutation must not leak into the store")
}

func TestCustomerRepository_AccrueIdempotentPerSale(t *testing.T) {
	repo := NewCustomerRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, domcustomer.New("c1", "Asha", "555")))

	balance, err := repo.Accrue(ctx, "c1", "sale-1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, balance)

	// Replaying the same sale id does not double-count.
	balance, err = repo.Accrue(ctx, "c1", "sale-1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, balance)

	balance, err = repo.Accrue(ctx, "c1", "sale-2", 3)
	require.NoError(t, err)
	assert.Equal(t, 8, balance)
}

func TestCustomerRepository_Revoke(t *testing.T) {
	repo := NewCustomerRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, domcustomer.New("c1", "Asha", "555")))

	_, err := repo.Accrue(ctx, "c1", "sale-1", 5)
	require.NoError(t, err)
	require.NoError(t, repo.Revoke(ctx, "c1", "sale-1"))

	c, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 0, c.Points)

	// Revoking an unknown sale is a no-op.
	require.NoError(t, repo.Revoke(ctx, "c1", "never-happened"))
}
