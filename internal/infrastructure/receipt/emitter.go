// Package receipt renders a finalized sale as a plain-text receipt file.
// PDF and barcode rendering are external collaborators; this emitter keeps
// the same layout so they can be swapped in behind the same port.
package receipt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	domain "github.com/swiftmart/pos/internal/domain/sale"
)

type Emitter struct {
	dir       string
	storeName string
}

func NewEmitter(dir, storeName string) *Emitter {
	return &Emitter{dir: dir, storeName: storeName}
}

// Emit writes receipt_<sale id>.txt into the configured directory.
func (e *Emitter) Emit(ctx context.Context, s *domain.Sale) error {
	_ = ctx
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("receipt: prepare dir: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", e.storeName)
	fmt.Fprintf(&b, "RECEIPT - Sale %s\n", s.ID)
	fmt.Fprintf(&b, "Date: %s\n", s.At.Format("2006-01-02 15:04:05"))
	if s.CustomerID != "" {
		fmt.Fprintf(&b, "Customer: %s\n", s.CustomerID)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%-36s %5s %10s %12s\n", "Item", "Qty", "Disc", "Line")
	b.WriteString(strings.Repeat("-", 66) + "\n")
	for _, line := range s.Lines {
		fmt.Fprintf(&b, "%-36s %5d %10s %12s\n",
			truncate(line.Name, 36), line.Quantity, line.Discount.StringFixed(2), line.Total.StringFixed(2))
	}
	b.WriteString(strings.Repeat("-", 66) + "\n")
	fmt.Fprintf(&b, "SUBTOTAL: %s\n", s.Subtotal.StringFixed(2))
	fmt.Fprintf(&b, "ORDER DISCOUNT: %s\n", s.Discount.StringFixed(2))
	fmt.Fprintf(&b, "TOTAL: %s\n", s.Total.StringFixed(2))
	for _, p := range s.Payments {
		fmt.Fprintf(&b, "PAID (%s): %s\n", p.Mode, p.Amount.StringFixed(2))
	}
	if s.Change.IsPositive() {
		fmt.Fprintf(&b, "CHANGE: %s\n", s.Change.StringFixed(2))
	}
	if s.PointsEarned > 0 {
		fmt.Fprintf(&b, "LOYALTY POINTS EARNED: %d\n", s.PointsEarned)
	}

	path := filepath.Join(e.dir, fmt.Sprintf("receipt_%s.txt", s.ID))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("receipt: write: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
