package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("catalog: product not found")
	ErrConflict          = errors.New("catalog: product already exists or was modified concurrently")
	ErrInvalidQuantity   = errors.New("catalog: quantity must be greater than zero")
	ErrInvalidPrice      = errors.New("catalog: unit price must be zero or greater")
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
)

// Product is the catalog record for a sellable item. Stock is mutated only
// through Deduct/Restock so the non-negative invariant holds everywhere.
type Product struct {
	ID        string
	Barcode   string
	Name      string
	Category  string
	Supplier  string
	UnitPrice decimal.Decimal
	Stock     int
	Version   int
	UpdatedAt time.Time
}

func NewProduct(id, barcode, name string, unitPrice decimal.Decimal, stock int) (*Product, error) {
	if unitPrice.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if stock < 0 {
		return nil, ErrInvalidQuantity
	}
	if barcode == "" {
		// The original register falls back to the product id as its scan code.
		barcode = id
	}
	return &Product{
		ID:        id,
		Barcode:   barcode,
		Name:      name,
		UnitPrice: unitPrice,
		Stock:     stock,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// Deduct removes quantity units of stock. It never lets stock go negative.
func (p *Product) Deduct(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > p.Stock {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	p.touch()
	return nil
}

// Restock adds quantity units of stock.
func (p *Product) Restock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	p.Stock += quantity
	p.touch()
	return nil
}

// Available reports whether quantity units could be deducted right now.
// It is the pre-commit check; stock is only mutated at commit time.
func (p *Product) Available(quantity int) bool {
	return quantity > 0 && quantity <= p.Stock
}

func (p *Product) SetUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	p.UnitPrice = price
	p.touch()
	return nil
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}
