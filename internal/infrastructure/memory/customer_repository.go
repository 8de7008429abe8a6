package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/swiftmart/pos/internal/domain/customer"
)

type accrual struct {
	customerID string
	points     int
}

// CustomerRepository holds customers and the per-sale accrual ledger that
// makes loyalty crediting idempotent: one committed sale id credits exactly
// once no matter how many times the commit is retried.
type CustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer
	accruals  map[string]accrual // sale id -> applied accrual
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{
		customers: make(map[string]*domain.Customer),
		accruals:  make(map[string]accrual),
	}
}

func (r *CustomerRepository) Get(ctx context.Context, id string) (*domain.Customer, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c.Clone(), nil
}

func (r *CustomerRepository) Insert(ctx context.Context, c *domain.Customer) error {
	_ = ctx
	if c == nil || c.ID == "" {
		return fmt.Errorf("customer repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.customers[c.ID]; exists {
		return domain.ErrConflict
	}
	r.customers[c.ID] = c.Clone()
	return nil
}

func (r *CustomerRepository) Accrue(ctx context.Context, customerID, saleID string, points int) (int, error) {
	_ = ctx
	if saleID == "" {
		return 0, fmt.Errorf("customer repository: sale id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.customers[customerID]
	if !ok {
		return 0, domain.ErrNotFound
	}

	// Replay of an already-credited sale returns the recorded balance.
	if _, applied := r.accruals[saleID]; applied {
		return c.Points, nil
	}

	if err := c.AddPoints(points); err != nil {
		return c.Points, err
	}
	r.accruals[saleID] = accrual{customerID: customerID, points: points}
	return c.Points, nil
}

func (r *CustomerRepository) Revoke(ctx context.Context, customerID, saleID string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	a, applied := r.accruals[saleID]
	if !applied || a.customerID != customerID {
		return nil
	}
	c, ok := r.customers[customerID]
	if !ok {
		return domain.ErrNotFound
	}
	if err := c.RemovePoints(a.points); err != nil {
		return err
	}
	delete(r.accruals, saleID)
	return nil
}
