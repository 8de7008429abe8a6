package sale

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/swiftmart/pos/internal/domain/payment"
	"github.com/swiftmart/pos/internal/domain/pricing"
)

var (
	ErrNotFound     = errors.New("sale: not found")
	ErrConflict     = errors.New("sale: already recorded")
	ErrEmptyCart    = errors.New("sale: cart is empty")
	ErrLineNotFound = errors.New("sale: line not found")
	ErrNotSettled   = errors.New("sale: tenders not settled")
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusPriced    Status = "priced"
	StatusSettling  Status = "settling"
	StatusCommitted Status = "committed"
	StatusVoided    Status = "voided"
)

// Line is a cart entry. It snapshots the unit price at scan time so the
// quote stays stable even if the catalog price changes mid-sale.
type Line struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Discount  pricing.Discount
}

// Cart is the transaction in progress. It is owned by a single register for
// its whole lifetime; mutation goes through methods so every change passes
// the state machine.
type Cart struct {
	ID            string
	CashierID     string
	CustomerID    string
	Lines         []Line
	OrderDiscount pricing.Discount
	Quote         *pricing.Quote
	Settlement    *payment.Settlement
	VoidReason    string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	state cartState
}

func NewCart(id, cashierID, customerID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		ID:         id,
		CashierID:  cashierID,
		CustomerID: customerID,
		CreatedAt:  now,
		UpdatedAt:  now,
		state:      openState{},
	}
}

func (c *Cart) Status() Status { return c.state.Status() }

// AddLine appends a line and drops the cart back to open; any existing quote
// or settlement is stale once the contents change.
func (c *Cart) AddLine(line Line) error {
	if line.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	next, err := c.state.OnEdit(c)
	if err != nil {
		return err
	}
	c.Lines = append(c.Lines, line)
	c.state = next
	c.touch()
	return nil
}

// RemoveLine removes the first line for productID.
func (c *Cart) RemoveLine(productID string) error {
	next, err := c.state.OnEdit(c)
	if err != nil {
		return err
	}
	for i, line := range c.Lines {
		if line.ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.state = next
			c.touch()
			return nil
		}
	}
	return ErrLineNotFound
}

func (c *Cart) SetOrderDiscount(d pricing.Discount) error {
	next, err := c.state.OnEdit(c)
	if err != nil {
		return err
	}
	c.OrderDiscount = d
	c.state = next
	c.touch()
	return nil
}

// Price runs the pricing engine over the cart snapshot and moves to priced.
// An empty cart fails back to open.
func (c *Cart) Price() (*pricing.Quote, error) {
	if len(c.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	next, err := c.state.OnPriced(c)
	if err != nil {
		return nil, err
	}

	input := pricing.CartInput{OrderDiscount: c.OrderDiscount}
	for _, line := range c.Lines {
		input.Lines = append(input.Lines, pricing.LineInput{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Discount:  line.Discount,
		})
	}
	quote := pricing.Price(input)
	c.Quote = &quote
	c.state = next
	c.touch()
	return c.Quote, nil
}

// Settle submits tenders against the priced total. The cart enters settling
// on submission; an Underpaid/Overpaid result keeps it there with no
// settlement recorded so the operator can correct the tenders.
func (c *Cart) Settle(tenders []payment.Tender) (*payment.Settlement, error) {
	if c.Quote == nil {
		return nil, ErrInvalidStateTransition
	}
	next, err := c.state.OnTender(c)
	if err != nil {
		return nil, err
	}
	c.state = next

	settlement, err := payment.Settle(c.Quote.Total, tenders)
	if err != nil {
		c.Settlement = nil
		c.touch()
		return nil, err
	}
	c.Settlement = settlement
	c.touch()
	return settlement, nil
}

// MarkCommitted is the terminal success transition. It requires a recorded
// settlement; the atomic side effects happen in the orchestrator before this
// is called.
func (c *Cart) MarkCommitted() error {
	if c.Settlement == nil {
		return ErrNotSettled
	}
	next, err := c.state.OnCommit(c)
	if err != nil {
		return err
	}
	c.state = next
	c.touch()
	return nil
}

// ReturnToPriced backs a settling cart out to priced, discarding the
// settlement. Used when commit-time stock validation fails: the cart is
// preserved for correction, not destroyed.
func (c *Cart) ReturnToPriced() error {
	next, err := c.state.OnPriced(c)
	if err != nil {
		return err
	}
	c.Settlement = nil
	c.state = next
	c.touch()
	return nil
}

// Void cancels the cart. No inventory or ledger effects have happened for a
// voided cart; it is terminal.
func (c *Cart) Void(reason string) error {
	next, err := c.state.OnVoid(c, reason)
	if err != nil {
		return err
	}
	c.state = next
	c.touch()
	return nil
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}

// Sale is the immutable record of a committed transaction. It is complete —
// lines, discounts, payments, points — before it is handed to any consumer.
type Sale struct {
	ID            string
	At            time.Time
	CashierID     string
	CustomerID    string
	Lines         []pricing.LineQuote
	OrderDiscount pricing.Discount
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	Payments      []payment.Tender
	Change        decimal.Decimal
	PointsEarned  int
}

// Finalize builds the durable record from a settled cart. It does not touch
// cart state; the orchestrator commits the record and side effects first.
func (c *Cart) Finalize(saleID string, at time.Time, points int) (*Sale, error) {
	if c.Quote == nil || c.Settlement == nil {
		return nil, ErrNotSettled
	}
	return &Sale{
		ID:            saleID,
		At:            at,
		CashierID:     c.CashierID,
		CustomerID:    c.CustomerID,
		Lines:         append([]pricing.LineQuote(nil), c.Quote.Lines...),
		OrderDiscount: c.OrderDiscount,
		Subtotal:      c.Quote.Subtotal,
		Discount:      c.Quote.Discount,
		Total:         c.Quote.Total,
		Payments:      append([]payment.Tender(nil), c.Settlement.Tenders...),
		Change:        c.Settlement.Change,
		PointsEarned:  points,
	}, nil
}
