package catalog

import "context"

type Repository interface {
	Get(ctx context.Context, id string) (*Product, error)
	// FindByCode resolves a scanned value against barcode first, then id.
	FindByCode(ctx context.Context, code string) (*Product, error)
	// Insert adds a new product; ErrConflict if the id or barcode is taken.
	Insert(ctx context.Context, p *Product) error
	// Update replaces a product using its Version for compare-and-set;
	// ErrConflict on a stale version.
	Update(ctx context.Context, p *Product) error
	// Deduct atomically decrements stock, re-validating availability under
	// the store's lock so concurrent commits cannot oversell.
	Deduct(ctx context.Context, productID string, quantity int) (remaining int, err error)
	// Restock atomically increments stock. Commit compensation relies on it.
	Restock(ctx context.Context, productID string, quantity int) (remaining int, err error)
	List(ctx context.Context) ([]*Product, error)
}
