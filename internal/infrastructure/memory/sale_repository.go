package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/swiftmart/pos/internal/domain/sale"
)

// SaleRepository stores committed sales. Records are append-only.
type SaleRepository struct {
	mu    sync.RWMutex
	sales map[string]*domain.Sale

	// failNextInsert lets tests exercise commit compensation.
	failNextInsert error
}

func NewSaleRepository() *SaleRepository {
	return &SaleRepository{
		sales: make(map[string]*domain.Sale),
	}
}

func (r *SaleRepository) Insert(ctx context.Context, s *domain.Sale) error {
	_ = ctx
	if s == nil || s.ID == "" {
		return fmt.Errorf("sale repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.failNextInsert; err != nil {
		r.failNextInsert = nil
		return err
	}

	if _, exists := r.sales[s.ID]; exists {
		return domain.ErrConflict
	}
	clone := *s
	r.sales[s.ID] = &clone
	return nil
}

func (r *SaleRepository) Get(ctx context.Context, id string) (*domain.Sale, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sales[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *SaleRepository) List(ctx context.Context) ([]*domain.Sale, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Sale, 0, len(r.sales))
	for _, s := range r.sales {
		clone := *s
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out, nil
}

// FailNextInsert makes the next Insert return err. Test hook.
func (r *SaleRepository) FailNextInsert(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNextInsert = err
}
