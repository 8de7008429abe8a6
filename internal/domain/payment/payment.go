// Package payment validates tender coverage for a sale. Modes are recorded,
// not processed against external rails.
package payment

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNoTender      = errors.New("payment: at least one tender is required")
	ErrInvalidTender = errors.New("payment: tender amount must be greater than zero")
	ErrUnknownMode   = errors.New("payment: unknown payment mode")
	ErrUnderpaid     = errors.New("payment: tenders do not cover the total")
	ErrOverpaid      = errors.New("payment: tenders exceed the total")
)

type Mode string

const (
	ModeCash Mode = "cash"
	ModeCard Mode = "card"
	ModeUPI  Mode = "upi"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeCash, ModeCard, ModeUPI:
		return true
	}
	return false
}

// Tender is one payment component. A split payment is simply a sequence of
// two or more tenders; modes need not be distinct.
type Tender struct {
	Mode   Mode
	Amount decimal.Decimal
}

// Settlement records how a total was covered. Change is only ever returned
// against cash; Paid equals the sale total exactly.
type Settlement struct {
	Total   decimal.Decimal
	Tenders []Tender
	Paid    decimal.Decimal
	Change  decimal.Decimal
}

// Settle validates that the tenders cover total exactly. Any shortfall is
// ErrUnderpaid. Excess is allowed only to the extent it can be attributed to
// cash, in which case it is returned as change; card and UPI tenders are
// taken at face value, so excess beyond the cash portion is ErrOverpaid.
func Settle(total decimal.Decimal, tenders []Tender) (*Settlement, error) {
	if len(tenders) == 0 {
		return nil, ErrNoTender
	}

	paid := decimal.Zero
	cash := decimal.Zero
	for _, t := range tenders {
		if !t.Mode.Valid() {
			return nil, ErrUnknownMode
		}
		if !t.Amount.IsPositive() {
			return nil, ErrInvalidTender
		}
		paid = paid.Add(t.Amount)
		if t.Mode == ModeCash {
			cash = cash.Add(t.Amount)
		}
	}

	if paid.LessThan(total) {
		return nil, ErrUnderpaid
	}

	change := paid.Sub(total)
	if change.IsPositive() && change.GreaterThan(cash) {
		return nil, ErrOverpaid
	}

	return &Settlement{
		Total:   total,
		Tenders: append([]Tender(nil), tenders...),
		Paid:    total,
		Change:  change,
	}, nil
}
