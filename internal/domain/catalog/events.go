package catalog

import "time"

// LowStockEvent is emitted when a sale commit drives a product's stock at or
// below the configured threshold. Reporting consumes it; the checkout path
// never blocks on it.
type LowStockEvent struct {
	ProductID  string
	Name       string
	Remaining  int
	Threshold  int
	OccurredAt time.Time
}

func (LowStockEvent) EventName() string { return "catalog.low_stock" }

func NewLowStockEvent(p *Product, threshold int) LowStockEvent {
	return LowStockEvent{
		ProductID:  p.ID,
		Name:       p.Name,
		Remaining:  p.Stock,
		Threshold:  threshold,
		OccurredAt: time.Now().UTC(),
	}
}
