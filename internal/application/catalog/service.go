package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/swiftmart/pos/internal/domain/auth"
	domain "github.com/swiftmart/pos/internal/domain/catalog"
	"github.com/swiftmart/pos/internal/observability"
	"github.com/swiftmart/pos/internal/observability/logctx"
)

const componentCatalog = "catalog_service"

type IDGenerator interface {
	NewID() string
}

// Service is the read/maintenance surface over the catalog: lookups for the
// register, and the admin-gated product maintenance the engine needs.
type Service struct {
	repo              domain.Repository
	idGen             IDGenerator
	lowStockThreshold int
	log               observability.Logger
}

func NewService(repo domain.Repository, idGen IDGenerator, lowStockThreshold int, logger observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		repo:              repo,
		idGen:             idGen,
		lowStockThreshold: lowStockThreshold,
		log:               logger.With(observability.F("component", componentCatalog)),
	}
}

// Lookup resolves a scanned barcode or a product id.
func (s *Service) Lookup(ctx context.Context, code string) (*domain.Product, error) {
	if code == "" {
		return nil, domain.ErrNotFound
	}
	return s.repo.FindByCode(ctx, code)
}

type CreateProductInput struct {
	Barcode   string
	Name      string
	Category  string
	Supplier  string
	UnitPrice decimal.Decimal
	Stock     int
}

func (s *Service) Create(ctx context.Context, op auth.Operator, input CreateProductInput) (*domain.Product, error) {
	logger := logctx.FromOr(ctx, s.log)

	if err := auth.Require(op.Role, auth.ActionProductCreate); err != nil {
		return nil, err
	}

	p, err := domain.NewProduct(s.idGen.NewID(), input.Barcode, input.Name, input.UnitPrice, input.Stock)
	if err != nil {
		return nil, err
	}
	p.Category = input.Category
	p.Supplier = input.Supplier

	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("catalog: insert: %w", err)
	}
	logger.Info("product_created",
		observability.F("product_id", p.ID),
		observability.F("name", p.Name),
	)
	return p, nil
}

func (s *Service) Restock(ctx context.Context, op auth.Operator, productID string, quantity int) (int, error) {
	logger := logctx.FromOr(ctx, s.log)

	if err := auth.Require(op.Role, auth.ActionRestock); err != nil {
		return 0, err
	}

	remaining, err := s.repo.Restock(ctx, productID, quantity)
	if err != nil {
		return remaining, err
	}
	logger.Info("product_restocked",
		observability.F("product_id", productID),
		observability.F("quantity", quantity),
		observability.F("stock", remaining),
	)
	return remaining, nil
}

// SetPrice is an admin-gated price edit using the repository's
// compare-and-set update.
func (s *Service) SetPrice(ctx context.Context, op auth.Operator, productID string, price decimal.Decimal) (*domain.Product, error) {
	logger := logctx.FromOr(ctx, s.log)

	if err := auth.Require(op.Role, auth.ActionPriceEdit); err != nil {
		return nil, err
	}

	p, err := s.repo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := p.SetUnitPrice(price); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("catalog: update: %w", err)
	}
	logger.Info("product_price_set",
		observability.F("product_id", p.ID),
		observability.F("price", price.String()),
	)
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

// LowStock lists products at or below the configured threshold, the
// register-side view behind the low-stock report.
func (s *Service) LowStock(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Product, 0)
	for _, p := range products {
		if p.Stock <= s.lowStockThreshold {
			out = append(out, p)
		}
	}
	return out, nil
}
