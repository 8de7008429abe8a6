package customer

import "context"

type Repository interface {
	Get(ctx context.Context, id string) (*Customer, error)
	Insert(ctx context.Context, c *Customer) error
	// Accrue credits points for a committed sale. The saleID keys the
	// accrual so a retried commit never double-credits; replaying the same
	// saleID returns the balance already recorded.
	Accrue(ctx context.Context, customerID, saleID string, points int) (balance int, err error)
	// Revoke undoes an accrual during commit compensation. Unknown saleIDs
	// are a no-op.
	Revoke(ctx context.Context, customerID, saleID string) error
}
