package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/swiftmart/pos/internal/domain/catalog"
)

// ProductRepository is the embedded catalog store. One mutex serializes all
// stock mutation, which is what makes the commit-time check-then-deduct safe
// across registers; Version gives Update compare-and-set semantics.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	barcodes map[string]string // barcode -> product id
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[string]*domain.Product),
		barcodes: make(map[string]string),
	}
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *ProductRepository) FindByCode(ctx context.Context, code string) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	if id, ok := r.barcodes[code]; ok {
		if p, found := r.products[id]; found {
			return p.Clone(), nil
		}
	}
	if p, ok := r.products[code]; ok {
		return p.Clone(), nil
	}
	return nil, domain.ErrNotFound
}

func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil || p.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[p.ID]; exists {
		return domain.ErrConflict
	}
	if p.Barcode != "" {
		if _, taken := r.barcodes[p.Barcode]; taken {
			return domain.ErrConflict
		}
	}

	clone := p.Clone()
	clone.Version = 1
	r.products[clone.ID] = clone
	if clone.Barcode != "" {
		r.barcodes[clone.Barcode] = clone.ID
	}
	p.Version = clone.Version
	return nil
}

// Update replaces a product only when the caller read the current version.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil || p.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.products[p.ID]
	if !exists {
		return domain.ErrNotFound
	}
	if current.Version != p.Version {
		return domain.ErrConflict
	}

	clone := p.Clone()
	clone.Version = current.Version + 1
	if current.Barcode != clone.Barcode {
		delete(r.barcodes, current.Barcode)
		if clone.Barcode != "" {
			r.barcodes[clone.Barcode] = clone.ID
		}
	}
	r.products[clone.ID] = clone
	p.Version = clone.Version
	return nil
}

func (r *ProductRepository) Deduct(ctx context.Context, productID string, quantity int) (int, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if err := p.Deduct(quantity); err != nil {
		return p.Stock, err
	}
	p.Version++
	return p.Stock, nil
}

func (r *ProductRepository) Restock(ctx context.Context, productID string, quantity int) (int, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if err := p.Restock(quantity); err != nil {
		return p.Stock, err
	}
	p.Version++
	return p.Stock, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
