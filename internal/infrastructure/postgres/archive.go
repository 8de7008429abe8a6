// Package postgres is the durable sales archive. The engine commits against
// the in-process store; this adapter records finalized sales for history and
// revenue reporting, off the checkout critical path.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	domain "github.com/swiftmart/pos/internal/domain/sale"
)

type Archive struct {
	db *sql.DB
}

func Open(dsn string) (*Archive, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("archive: open: %w", err)
	}
	return &Archive{db: db}, nil
}

func NewArchive(db *sql.DB) *Archive {
	return &Archive{db: db}
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// Record writes the sale header and its lines in one transaction.
func (a *Archive) Record(ctx context.Context, s *domain.Sale) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, created_at, cashier_id, customer_id, subtotal, discount, total, change, points_earned)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`,
		s.ID, s.At, s.CashierID, s.CustomerID,
		s.Subtotal.String(), s.Discount.String(), s.Total.String(), s.Change.String(),
		s.PointsEarned,
	)
	if err != nil {
		return fmt.Errorf("archive: insert sale: %w", err)
	}

	for _, line := range s.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_lines (sale_id, product_id, product_name, quantity, unit_price, discount, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			s.ID, line.ProductID, line.Name, line.Quantity,
			line.UnitPrice.String(), line.Discount.String(), line.Total.String(),
		)
		if err != nil {
			return fmt.Errorf("archive: insert line: %w", err)
		}
	}

	for _, p := range s.Payments {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_payments (sale_id, mode, amount)
			VALUES ($1, $2, $3)`,
			s.ID, string(p.Mode), p.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("archive: insert payment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive: commit: %w", err)
	}
	return nil
}

type BestSeller struct {
	Name    string
	QtySold int
}

type RevenueSummary struct {
	TotalRevenue decimal.Decimal
	SaleCount    int
	BestSeller   BestSeller
}

// RevenueToday reports revenue, sale count, and the best-selling product for
// the current day.
func (a *Archive) RevenueToday(ctx context.Context) (*RevenueSummary, error) {
	var revenue sql.NullString
	var count sql.NullInt64

	err := a.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(total), 0) AS total_revenue,
			COALESCE(COUNT(*), 0)  AS sale_count
		FROM sales
		WHERE created_at >= CURRENT_DATE
		  AND created_at <  CURRENT_DATE + INTERVAL '1 day'
	`).Scan(&revenue, &count)
	if err != nil {
		return nil, fmt.Errorf("archive: revenue: %w", err)
	}

	summary := &RevenueSummary{
		TotalRevenue: decimal.Zero,
		SaleCount:    int(count.Int64),
	}
	if revenue.Valid {
		total, err := decimal.NewFromString(revenue.String)
		if err != nil {
			return nil, fmt.Errorf("archive: parse revenue: %w", err)
		}
		summary.TotalRevenue = total
	}

	var name sql.NullString
	var qty sql.NullInt64
	err = a.db.QueryRowContext(ctx, `
		SELECT
			l.product_name,
			COALESCE(SUM(l.quantity), 0) AS qty_sold
		FROM sale_lines l
		JOIN sales s ON s.id = l.sale_id
		WHERE s.created_at >= CURRENT_DATE
		  AND s.created_at <  CURRENT_DATE + INTERVAL '1 day'
		GROUP BY l.product_id, l.product_name
		ORDER BY qty_sold DESC, l.product_name ASC
		LIMIT 1
	`).Scan(&name, &qty)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("archive: best seller: %w", err)
	}
	if name.Valid {
		summary.BestSeller = BestSeller{Name: name.String, QtySold: int(qty.Int64)}
	}

	return summary, nil
}
