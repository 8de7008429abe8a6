package checkout

type IDGenerator interface {
	NewID() string
}

// Config carries the register policy knobs the orchestrator enforces.
type Config struct {
	// LowStockThreshold triggers the low-stock signal after commit-time
	// deduction.
	LowStockThreshold int
	// SpendPerPoint is the currency spend that earns one loyalty point.
	SpendPerPoint int64
	// CashierDiscountCapPercent is the largest discount a cashier may apply
	// without the admin override.
	CashierDiscountCapPercent float64
}
