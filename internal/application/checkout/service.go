package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/swiftmart/pos/internal/domain/auth"
	domcatalog "github.com/swiftmart/pos/internal/domain/catalog"
	domcustomer "github.com/swiftmart/pos/internal/domain/customer"
	domoutbox "github.com/swiftmart/pos/internal/domain/outbox"
	dompayment "github.com/swiftmart/pos/internal/domain/payment"
	"github.com/swiftmart/pos/internal/domain/pricing"
	domsale "github.com/swiftmart/pos/internal/domain/sale"
	"github.com/swiftmart/pos/internal/observability"
	"github.com/swiftmart/pos/internal/observability/logctx"
)

var (
	ErrCartNotFound = errors.New("checkout: cart not found")
	ErrCommitFailed = errors.New("checkout: commit failed")
)

const componentCheckout = "checkout_service"

// Service is the transaction orchestrator. It owns every open cart for its
// lifetime and coordinates catalog, pricing, settlement, and the customer
// ledger into one atomic commit.
type Service struct {
	mu    sync.Mutex
	carts map[string]*domsale.Cart

	products  domcatalog.Repository
	customers domcustomer.Repository
	sales     domsale.Repository
	idGen     IDGenerator
	publisher domoutbox.Publisher
	cfg       Config
	log       observability.Logger
}

func NewService(
	products domcatalog.Repository,
	customers domcustomer.Repository,
	sales domsale.Repository,
	idGen IDGenerator,
	publisher domoutbox.Publisher,
	cfg Config,
	logger observability.Logger,
) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if cfg.SpendPerPoint <= 0 {
		cfg.SpendPerPoint = 100
	}
	return &Service{
		carts:     make(map[string]*domsale.Cart),
		products:  products,
		customers: customers,
		sales:     sales,
		idGen:     idGen,
		publisher: publisher,
		cfg:       cfg,
		log:       logger.With(observability.F("component", componentCheckout)),
	}
}

// Open starts a cart for the operator. A non-empty customerID must resolve
// against the ledger so commit-time accrual cannot hit an unknown customer.
func (s *Service) Open(ctx context.Context, op auth.Operator, customerID string) (*domsale.Cart, error) {
	logger := logctx.FromOr(ctx, s.log)

	if customerID != "" {
		if _, err := s.customers.Get(ctx, customerID); err != nil {
			return nil, fmt.Errorf("checkout: customer lookup: %w", err)
		}
	}

	cart := domsale.NewCart(s.idGen.NewID(), op.UserID, customerID)

	s.mu.Lock()
	s.carts[cart.ID] = cart
	s.mu.Unlock()

	logger.Info("cart_opened",
		observability.F("cart_id", cart.ID),
		observability.F("cashier_id", op.UserID),
		observability.F("customer_id", customerID),
	)
	return cart, nil
}

// AddLine resolves a scanned code against the catalog and appends a line
// with the price snapshotted at scan time. Stock is only validated at
// checkout and commit; a long-lived cart holds no reservation.
func (s *Service) AddLine(ctx context.Context, op auth.Operator, cartID, code string, quantity int, discount pricing.Discount) (*domsale.Cart, error) {
	logger := logctx.FromOr(ctx, s.log)

	product, err := s.products.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("checkout: product lookup: %w", err)
	}

	lineBase := product.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	if err := s.requireDiscountAllowed(op, discount, lineBase); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.lookupCart(cartID)
	if err != nil {
		return nil, err
	}
	if err := cart.AddLine(domsale.Line{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.UnitPrice,
		Quantity:  quantity,
		Discount:  discount,
	}); err != nil {
		return nil, err
	}

	logger.Info("cart_line_added",
		observability.F("cart_id", cart.ID),
		observability.F("product_id", product.ID),
		observability.F("quantity", quantity),
	)
	return cart, nil
}

func (s *Service) RemoveLine(ctx context.Context, cartID, productID string) (*domsale.Cart, error) {
	logger := logctx.FromOr(ctx, s.log)

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.lookupCart(cartID)
	if err != nil {
		return nil, err
	}
	if err := cart.RemoveLine(productID); err != nil {
		return nil, err
	}

	logger.Info("cart_line_removed",
		observability.F("cart_id", cart.ID),
		observability.F("product_id", productID),
	)
	return cart, nil
}

func (s *Service) SetOrderDiscount(ctx context.Context, op auth.Operator, cartID string, discount pricing.Discount) (*domsale.Cart, error) {
	logger := logctx.FromOr(ctx, s.log)

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.lookupCart(cartID)
	if err != nil {
		return nil, err
	}
	if err := s.requireDiscountAllowed(op, discount, cartSubtotal(cart)); err != nil {
		return nil, err
	}
	if err := cart.SetOrderDiscount(discount); err != nil {
		return nil, err
	}

	logger.Info("order_discount_set",
		observability.F("cart_id", cart.ID),
		observability.F("kind", string(discount.Kind)),
		observability.F("value", discount.Value.String()),
	)
	return cart, nil
}

// Checkout prices the cart and validates availability for every line. A
// failed availability check leaves the cart priced with stock untouched; the
// operator corrects quantities and retries.
func (s *Service) Checkout(ctx context.Context, cartID string) (*pricing.Quote, error) {
	logger := logctx.FromOr(ctx, s.log)

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.lookupCart(cartID)
	if err != nil {
		return nil, err
	}

	quote, err := cart.Price()
	if err != nil {
		return nil, err
	}

	for productID, qty := range quantitiesByProduct(cart) {
		product, err := s.products.Get(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("checkout: reserve %s: %w", productID, err)
		}
		if !product.Available(qty) {
			logger.Warn("reserve_failed",
				observability.F("cart_id", cart.ID),
				observability.F("product_id", productID),
				observability.F("requested", qty),
				observability.F("stock", product.Stock),
			)
			return nil, fmt.Errorf("checkout: reserve %s: %w", productID, domcatalog.ErrInsufficientStock)
		}
	}

	logger.Info("cart_priced",
		observability.F("cart_id", cart.ID),
		observability.F("total", quote.Total.String()),
	)
	return quote, nil
}

// Settle submits tenders for a priced cart. Underpaid and Overpaid results
// keep the cart in settling for correction.
func (s *Service) Settle(ctx context.Context, cartID string, tenders []dompayment.Tender) (*dompayment.Settlement, error) {
	logger := logctx.FromOr(ctx, s.log)

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.lookupCart(cartID)
	if err != nil {
		return nil, err
	}

	settlement, err := cart.Settle(tenders)
	if err != nil {
		logger.Warn("settle_failed",
			observability.F("cart_id", cart.ID),
			observability.F("error", err.Error()),
		)
		return nil, err
	}

	logger.Info("cart_settled",
		observability.F("cart_id", cart.ID),
		observability.F("paid", settlement.Paid.String()),
		observability.F("change", settlement.Change.String()),
	)
	return settlement, nil
}

// Commit finalizes a settled cart: deduct stock for every line, accrue
// loyalty points, persist the sale record, all or nothing. Any failure
// unwinds the effects of this attempt. Insufficient stock is recoverable and
// returns the cart to priced; a storage fault voids the cart.
func (s *Service) Commit(ctx context.Context, cartID string) (*domsale.Sale, error) {
	logger := logctx.FromOr(ctx, s.log)

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.lookupCart(cartID)
	if err != nil {
		return nil, err
	}

	// A committed cart replays its recorded sale; commit is idempotent.
	if cart.Status() == domsale.StatusCommitted {
		return s.sales.Get(ctx, cart.ID)
	}

	points := s.pointsFor(cart)
	record, err := cart.Finalize(cart.ID, time.Now().UTC(), points)
	if err != nil {
		return nil, err
	}

	// Step 1: stock deduction, re-validated under the store's lock.
	type deduction struct {
		productID string
		quantity  int
	}
	var (
		deducted []deduction
		lowStock []*domcatalog.Product
	)
	undoStock := func() {
		for _, d := range deducted {
			if _, err := s.products.Restock(ctx, d.productID, d.quantity); err != nil {
				logger.Error("commit_rollback_restock_failed",
					observability.F("cart_id", cart.ID),
					observability.F("product_id", d.productID),
					observability.F("error", err.Error()),
				)
			}
		}
	}

	for productID, qty := range quantitiesByProduct(cart) {
		remaining, err := s.products.Deduct(ctx, productID, qty)
		if err != nil {
			undoStock()
			if errors.Is(err, domcatalog.ErrInsufficientStock) || errors.Is(err, domcatalog.ErrNotFound) {
				if stateErr := cart.ReturnToPriced(); stateErr != nil {
					logger.Error("commit_return_to_priced_failed",
						observability.F("cart_id", cart.ID),
						observability.F("error", stateErr.Error()),
					)
				}
				return nil, fmt.Errorf("checkout: deduct %s: %w", productID, err)
			}
			return nil, s.voidAttempt(ctx, cart, "stock_deduction_failed", err)
		}
		deducted = append(deducted, deduction{productID: productID, quantity: qty})
		if remaining <= s.cfg.LowStockThreshold {
			if p, err := s.products.Get(ctx, productID); err == nil {
				lowStock = append(lowStock, p)
			}
		}
	}

	// Step 2: loyalty accrual, idempotent per sale id.
	accrued := false
	if cart.CustomerID != "" && points > 0 {
		if _, err := s.customers.Accrue(ctx, cart.CustomerID, record.ID, points); err != nil {
			undoStock()
			return nil, s.voidAttempt(ctx, cart, "loyalty_accrual_failed", err)
		}
		accrued = true
	}

	// Step 3: durable sale record.
	if err := s.sales.Insert(ctx, record); err != nil {
		if accrued {
			if revokeErr := s.customers.Revoke(ctx, cart.CustomerID, record.ID); revokeErr != nil {
				logger.Error("commit_rollback_revoke_failed",
					observability.F("cart_id", cart.ID),
					observability.F("error", revokeErr.Error()),
				)
			}
		}
		undoStock()
		return nil, s.voidAttempt(ctx, cart, "sale_persist_failed", err)
	}

	if err := cart.MarkCommitted(); err != nil {
		// The record is durable; state refusal here is a programming error.
		return nil, fmt.Errorf("checkout: mark committed: %w", err)
	}

	s.publish(ctx, domsale.NewCommittedEvent(record))
	for _, p := range lowStock {
		s.publish(ctx, domcatalog.NewLowStockEvent(p, s.cfg.LowStockThreshold))
	}

	logger.Info("sale_committed",
		observability.F("sale_id", record.ID),
		observability.F("total", record.Total.String()),
		observability.F("points_earned", record.PointsEarned),
	)
	return record, nil
}

// Void cancels a cart before commit. No inventory or ledger effects exist
// yet, so there is nothing to unwind.
func (s *Service) Void(ctx context.Context, cartID, reason string) error {
	logger := logctx.FromOr(ctx, s.log)

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.lookupCart(cartID)
	if err != nil {
		return err
	}

	if err := cart.Void(reason); err != nil {
		return err
	}
	logger.Info("cart_voided",
		observability.F("cart_id", cart.ID),
		observability.F("reason", reason),
	)
	return nil
}

func (s *Service) Get(ctx context.Context, cartID string) (*domsale.Cart, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupCart(cartID)
}

// LoyaltyBalance reads a customer's current point balance.
func (s *Service) LoyaltyBalance(ctx context.Context, customerID string) (int, error) {
	c, err := s.customers.Get(ctx, customerID)
	if err != nil {
		return 0, err
	}
	return c.Points, nil
}

// RegisterCustomer adds a customer to the ledger.
func (s *Service) RegisterCustomer(ctx context.Context, name, phone string) (*domcustomer.Customer, error) {
	c := domcustomer.New(s.idGen.NewID(), name, phone)
	if err := s.customers.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// lookupCart requires s.mu to be held.
func (s *Service) lookupCart(cartID string) (*domsale.Cart, error) {
	cart, ok := s.carts[cartID]
	if !ok {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

// voidAttempt records the forced void after the caller has unwound the
// attempt's effects, publishes it, and wraps the cause as a commit failure.
func (s *Service) voidAttempt(ctx context.Context, cart *domsale.Cart, reason string, cause error) error {
	logger := logctx.FromOr(ctx, s.log)
	if err := cart.Void(reason); err != nil {
		logger.Error("commit_void_failed",
			observability.F("cart_id", cart.ID),
			observability.F("error", err.Error()),
		)
	}
	s.publish(ctx, domsale.NewVoidedEvent(cart.ID, reason))
	logger.Error("commit_failed",
		observability.F("cart_id", cart.ID),
		observability.F("reason", reason),
		observability.F("error", cause.Error()),
	)
	return fmt.Errorf("%w: %s: %w", ErrCommitFailed, reason, cause)
}

func (s *Service) publish(ctx context.Context, e domoutbox.Event) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, e); err != nil {
		logctx.FromOr(ctx, s.log).Warn("event_publish_failed",
			observability.F("event", e.EventName()),
			observability.F("error", err.Error()),
		)
	}
}

func (s *Service) pointsFor(cart *domsale.Cart) int {
	if cart.Quote == nil || cart.CustomerID == "" {
		return 0
	}
	perPoint := decimal.NewFromInt(s.cfg.SpendPerPoint)
	return int(cart.Quote.Total.Div(perPoint).Floor().IntPart())
}

// requireDiscountAllowed enforces the cashier discount cap: anything beyond
// it needs the admin override.
func (s *Service) requireDiscountAllowed(op auth.Operator, d pricing.Discount, base decimal.Decimal) error {
	if d.IsZero() {
		return nil
	}
	capPct := decimal.NewFromFloat(s.cfg.CashierDiscountCapPercent)
	var pct decimal.Decimal
	switch d.Kind {
	case pricing.DiscountPercent:
		pct = d.Value
	case pricing.DiscountFixed:
		if !base.IsPositive() {
			return nil
		}
		pct = d.Value.Mul(decimal.NewFromInt(100)).Div(base)
	default:
		return nil
	}
	if pct.LessThanOrEqual(capPct) {
		return nil
	}
	return auth.Require(op.Role, auth.ActionDiscountOverride)
}

func cartSubtotal(cart *domsale.Cart) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range cart.Lines {
		sum = sum.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return sum
}

func quantitiesByProduct(cart *domsale.Cart) map[string]int {
	out := make(map[string]int, len(cart.Lines))
	for _, line := range cart.Lines {
		out[line.ProductID] += line.Quantity
	}
	return out
}
