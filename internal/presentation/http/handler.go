package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	appCatalog "github.com/swiftmart/pos/internal/application/catalog"
	appCheckout "github.com/swiftmart/pos/internal/application/checkout"
	"github.com/swiftmart/pos/internal/domain/auth"
	domainCatalog "github.com/swiftmart/pos/internal/domain/catalog"
	domainCustomer "github.com/swiftmart/pos/internal/domain/customer"
	domainPayment "github.com/swiftmart/pos/internal/domain/payment"
	"github.com/swiftmart/pos/internal/domain/pricing"
	domainSale "github.com/swiftmart/pos/internal/domain/sale"
	"github.com/swiftmart/pos/internal/infrastructure/postgres"
	"github.com/swiftmart/pos/internal/observability"
	"github.com/swiftmart/pos/internal/observability/logctx"
)

// RevenueReporter is the optional sales-archive view behind the revenue
// report. Nil when the archive is disabled.
type RevenueReporter interface {
	RevenueToday(ctx context.Context) (*postgres.RevenueSummary, error)
}

type Handler struct {
	checkoutService *appCheckout.Service
	commitSale      *appCheckout.CommitSaleUseCase
	catalogService  *appCatalog.Service
	revenue         RevenueReporter
	log             observability.Logger
	tel             observability.Telemetry
}

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
	headerUserID         = "X-User-ID"
	headerRole           = "X-Role"
)

func NewHandler(
	checkoutSvc *appCheckout.Service,
	commitSale *appCheckout.CommitSaleUseCase,
	catalogSvc *appCatalog.Service,
	revenue RevenueReporter,
	logger observability.Logger,
	tel observability.Telemetry,
) *Handler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = observability.NopLogger()
	}
	return &Handler{
		checkoutService: checkoutSvc,
		commitSale:      commitSale,
		catalogService:  catalogSvc,
		revenue:         revenue,
		log:             baseLogger.With(observability.F("component", componentHTTPHandler)),
		tel:             tel,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// Wire each route with middlewares:
	// Trace → ObservabilityMiddleware (request logger) → HTTP metrics → Access log → Handler
	h.muxHandle(mux, http.MethodPost, "/carts", h.handleOpenCart)
	h.muxHandle(mux, http.MethodGet, "/carts/{id}", h.handleGetCart)
	h.muxHandle(mux, http.MethodPost, "/carts/{id}/lines", h.handleAddLine)
	h.muxHandle(mux, http.MethodDelete, "/carts/{id}/lines/{productID}", h.handleRemoveLine)
	h.muxHandle(mux, http.MethodPost, "/carts/{id}/discount", h.handleSetDiscount)
	h.muxHandle(mux, http.MethodPost, "/carts/{id}/checkout", h.handleCheckout)
	h.muxHandle(mux, http.MethodPost, "/carts/{id}/tenders", h.handleTenders)
	h.muxHandle(mux, http.MethodPost, "/carts/{id}/commit", h.handleCommit)
	h.muxHandle(mux, http.MethodPost, "/carts/{id}/void", h.handleVoid)

	h.muxHandle(mux, http.MethodGet, "/products", h.handleLookupProduct)
	h.muxHandle(mux, http.MethodPost, "/products", h.handleCreateProduct)
	h.muxHandle(mux, http.MethodPost, "/products/{id}/restock", h.handleRestock)
	h.muxHandle(mux, http.MethodPut, "/products/{id}/price", h.handleSetPrice)

	h.muxHandle(mux, http.MethodPost, "/customers", h.handleRegisterCustomer)
	h.muxHandle(mux, http.MethodGet, "/customers/{id}/loyalty", h.handleLoyalty)

	h.muxHandle(mux, http.MethodGet, "/reports/low-stock", h.handleLowStockReport)
	h.muxHandle(mux, http.MethodGet, "/reports/revenue", h.handleRevenueReport)

	h.muxHandle(mux, http.MethodGet, "/health", h.handleHealth)

	return mux
}

func (h *Handler) muxHandle(mux *http.ServeMux, method, route string, handler http.HandlerFunc) {
	mux.HandleFunc(method+" "+route, func(w http.ResponseWriter, r *http.Request) {
		// Store stable route template for low-cardinality labels
		ctx := contextWithRoute(r.Context(), method+" "+route)
		r = r.WithContext(ctx)

		// Wrap: Trace → Request Logger → Metrics → Access Log → Handler
		wrapped := h.withTrace(
			ObservabilityMiddleware(
				logctx.FromOr(ctx, h.log),
				func(r *http.Request) string {
					return r.Header.Get(headerRequestID)
				},
				func(r *http.Request) string {
					return r.Header.Get(headerUserID)
				},
				h.tel,
			)(
				h.withAccessLog(
					h.withHTTPMetrics(http.HandlerFunc(handler)),
				),
			),
		)
		wrapped.ServeHTTP(w, r)
	})
}

// operatorFrom resolves the register operator from headers. Anything other
// than an explicit admin role is treated as a cashier.
func operatorFrom(r *http.Request) auth.Operator {
	role := auth.RoleCashier
	if auth.Role(r.Header.Get(headerRole)) == auth.RoleAdmin {
		role = auth.RoleAdmin
	}
	return auth.Operator{
		UserID: r.Header.Get(headerUserID),
		Role:   role,
	}
}

type discountPayload struct {
	Kind  string          `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

func (p discountPayload) toDomain() pricing.Discount {
	switch pricing.DiscountKind(p.Kind) {
	case pricing.DiscountPercent:
		return pricing.Percent(p.Value)
	case pricing.DiscountFixed:
		return pricing.Fixed(p.Value)
	default:
		return pricing.None()
	}
}

type lineView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type cartResponse struct {
	CartID     string            `json:"cart_id"`
	Status     domainSale.Status `json:"status"`
	CustomerID string            `json:"customer_id,omitempty"`
	Lines      []lineView        `json:"lines"`
}

func cartToResponse(c *domainSale.Cart) cartResponse {
	resp := cartResponse{
		CartID:     c.ID,
		Status:     c.Status(),
		CustomerID: c.CustomerID,
		Lines:      make([]lineView, 0, len(c.Lines)),
	}
	for _, line := range c.Lines {
		resp.Lines = append(resp.Lines, lineView{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice.String(),
			Quantity:  line.Quantity,
		})
	}
	return resp
}

type openCartRequest struct {
	CustomerID string `json:"customer_id"`
}

func (h *Handler) handleOpenCart(w http.ResponseWriter, r *http.Request) {
	var req openCartRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cart, err := h.checkoutService.Open(r.Context(), operatorFrom(r), req.CustomerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cartToResponse(cart))
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.checkoutService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartToResponse(cart))
}

type addLineRequest struct {
	Code     string           `json:"code"`
	Quantity int              `json:"quantity"`
	Discount *discountPayload `json:"discount,omitempty"`
}

func (h *Handler) handleAddLine(w http.ResponseWriter, r *http.Request) {
	var req addLineRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	discount := pricing.None()
	if req.Discount != nil {
		discount = req.Discount.toDomain()
	}
	cart, err := h.checkoutService.AddLine(r.Context(), operatorFrom(r), r.PathValue("id"), req.Code, req.Quantity, discount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartToResponse(cart))
}

func (h *Handler) handleRemoveLine(w http.ResponseWriter, r *http.Request) {
	cart, err := h.checkoutService.RemoveLine(r.Context(), r.PathValue("id"), r.PathValue("productID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartToResponse(cart))
}

func (h *Handler) handleSetDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountPayload
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cart, err := h.checkoutService.SetOrderDiscount(r.Context(), operatorFrom(r), r.PathValue("id"), req.toDomain())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartToResponse(cart))
}

type lineQuoteView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
	Discount  string `json:"discount"`
	Total     string `json:"total"`
}

type quoteResponse struct {
	Lines    []lineQuoteView `json:"lines"`
	Subtotal string          `json:"subtotal"`
	Discount string          `json:"discount"`
	Total    string          `json:"total"`
}

func quoteToResponse(q *pricing.Quote) quoteResponse {
	resp := quoteResponse{
		Lines:    make([]lineQuoteView, 0, len(q.Lines)),
		Subtotal: q.Subtotal.String(),
		Discount: q.Discount.String(),
		Total:    q.Total.String(),
	}
	for _, lq := range q.Lines {
		resp.Lines = append(resp.Lines, lineQuoteView{
			ProductID: lq.ProductID,
			Name:      lq.Name,
			Quantity:  lq.Quantity,
			UnitPrice: lq.UnitPrice.String(),
			Subtotal:  lq.Subtotal.String(),
			Discount:  lq.Discount.String(),
			Total:     lq.Total.String(),
		})
	}
	return resp
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	quote, err := h.checkoutService.Checkout(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteToResponse(quote))
}

type tenderPayload struct {
	Mode   string          `json:"mode"`
	Amount decimal.Decimal `json:"amount"`
}

type tendersRequest struct {
	Tenders []tenderPayload `json:"tenders"`
}

type settlementResponse struct {
	Total   string          `json:"total"`
	Paid    string          `json:"paid"`
	Change  string          `json:"change"`
	Tenders []tenderPayload `json:"tenders"`
}

func (h *Handler) handleTenders(w http.ResponseWriter, r *http.Request) {
	var req tendersRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tenders := make([]domainPayment.Tender, 0, len(req.Tenders))
	for _, t := range req.Tenders {
		tenders = append(tenders, domainPayment.Tender{
			Mode:   domainPayment.Mode(t.Mode),
			Amount: t.Amount,
		})
	}

	settlement, err := h.checkoutService.Settle(r.Context(), r.PathValue("id"), tenders)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := settlementResponse{
		Total:   settlement.Total.String(),
		Paid:    settlement.Paid.String(),
		Change:  settlement.Change.String(),
		Tenders: make([]tenderPayload, 0, len(settlement.Tenders)),
	}
	for _, t := range settlement.Tenders {
		resp.Tenders = append(resp.Tenders, tenderPayload{Mode: string(t.Mode), Amount: t.Amount})
	}
	writeJSON(w, http.StatusOK, resp)
}

type saleResponse struct {
	SaleID       string          `json:"sale_id"`
	At           time.Time       `json:"at"`
	CashierID    string          `json:"cashier_id,omitempty"`
	CustomerID   string          `json:"customer_id,omitempty"`
	Lines        []lineQuoteView `json:"lines"`
	Subtotal     string          `json:"subtotal"`
	Discount     string          `json:"discount"`
	Total        string          `json:"total"`
	Payments     []tenderPayload `json:"payments"`
	Change       string          `json:"change"`
	PointsEarned int             `json:"points_earned"`
}

func saleToResponse(s *domainSale.Sale) saleResponse {
	resp := saleResponse{
		SaleID:       s.ID,
		At:           s.At,
		CashierID:    s.CashierID,
		CustomerID:   s.CustomerID,
		Lines:        make([]lineQuoteView, 0, len(s.Lines)),
		Subtotal:     s.Subtotal.String(),
		Discount:     s.Discount.String(),
		Total:        s.Total.String(),
		Payments:     make([]tenderPayload, 0, len(s.Payments)),
		Change:       s.Change.String(),
		PointsEarned: s.PointsEarned,
	}
	for _, lq := range s.Lines {
		resp.Lines = append(resp.Lines, lineQuoteView{
			ProductID: lq.ProductID,
			Name:      lq.Name,
			Quantity:  lq.Quantity,
			UnitPrice: lq.UnitPrice.String(),
			Subtotal:  lq.Subtotal.String(),
			Discount:  lq.Discount.String(),
			Total:     lq.Total.String(),
		})
	}
	for _, t := range s.Payments {
		resp.Payments = append(resp.Payments, tenderPayload{Mode: string(t.Mode), Amount: t.Amount})
	}
	return resp
}

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	result, err := h.commitSale.Execute(r.Context(), appCheckout.CommitSaleInput{
		CartID: r.PathValue("id"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saleToResponse(result.Sale))
}

type voidRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleVoid(w http.ResponseWriter, r *http.Request) {
	var req voidRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.checkoutService.Void(r.Context(), r.PathValue("id"), req.Reason); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type productResponse struct {
	ProductID string `json:"product_id"`
	Barcode   string `json:"barcode,omitempty"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Supplier  string `json:"supplier,omitempty"`
	UnitPrice string `json:"unit_price"`
	Stock     int    `json:"stock"`
}

func productToResponse(p *domainCatalog.Product) productResponse {
	return productResponse{
		ProductID: p.ID,
		Barcode:   p.Barcode,
		Name:      p.Name,
		Category:  p.Category,
		Supplier:  p.Supplier,
		UnitPrice: p.UnitPrice.String(),
		Stock:     p.Stock,
	}
}

// handleLookupProduct serves GET /products?code= as a scan lookup, and the
// full catalog listing when no code is given.
func (h *Handler) handleLookupProduct(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		products, err := h.catalogService.List(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]productResponse, 0, len(products))
		for _, p := range products {
			out = append(out, productToResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	product, err := h.catalogService.Lookup(r.Context(), code)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, productToResponse(product))
}

type createProductRequest struct {
	Barcode   string          `json:"barcode"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Supplier  string          `json:"supplier"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     int             `json:"stock"`
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	product, err := h.catalogService.Create(r.Context(), operatorFrom(r), appCatalog.CreateProductInput{
		Barcode:   req.Barcode,
		Name:      req.Name,
		Category:  req.Category,
		Supplier:  req.Supplier,
		UnitPrice: req.UnitPrice,
		Stock:     req.Stock,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, productToResponse(product))
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

type restockResponse struct {
	ProductID string `json:"product_id"`
	Stock     int    `json:"stock"`
}

func (h *Handler) handleRestock(w http.ResponseWriter, r *http.Request) {
	var req restockRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	productID := r.PathValue("id")
	stock, err := h.catalogService.Restock(r.Context(), operatorFrom(r), productID, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restockResponse{ProductID: productID, Stock: stock})
}

type setPriceRequest struct {
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (h *Handler) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	var req setPriceRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	product, err := h.catalogService.SetPrice(r.Context(), operatorFrom(r), r.PathValue("id"), req.UnitPrice)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, productToResponse(product))
}

type registerCustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type customerResponse struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Points     int    `json:"points"`
}

func (h *Handler) handleRegisterCustomer(w http.ResponseWriter, r *http.Request) {
	var req registerCustomerRequest
	if err := decodeJSON(r.Context(), r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	customer, err := h.checkoutService.RegisterCustomer(r.Context(), req.Name, req.Phone)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customerResponse{
		CustomerID: customer.ID,
		Name:       customer.Name,
		Phone:      customer.Phone,
		Points:     customer.Points,
	})
}

type loyaltyResponse struct {
	CustomerID string `json:"customer_id"`
	Points     int    `json:"points"`
}

func (h *Handler) handleLoyalty(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("id")
	points, err := h.checkoutService.LoyaltyBalance(r.Context(), customerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loyaltyResponse{CustomerID: customerID, Points: points})
}

func (h *Handler) handleLowStockReport(w http.ResponseWriter, r *http.Request) {
	if err := auth.Require(operatorFrom(r).Role, auth.ActionReportRead); err != nil {
		writeDomainError(w, err)
		return
	}

	products, err := h.catalogService.LowStock(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productToResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

type revenueResponse struct {
	TotalRevenue string `json:"total_revenue"`
	SaleCount    int    `json:"sale_count"`
	BestSeller   string `json:"best_seller,omitempty"`
	BestQtySold  int    `json:"best_qty_sold,omitempty"`
}

func (h *Handler) handleRevenueReport(w http.ResponseWriter, r *http.Request) {
	if err := auth.Require(operatorFrom(r).Role, auth.ActionReportRead); err != nil {
		writeDomainError(w, err)
		return
	}
	if h.revenue == nil {
		writeError(w, http.StatusNotImplemented, errors.New("sales archive disabled"))
		return
	}

	summary, err := h.revenue.RevenueToday(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, revenueResponse{
		TotalRevenue: summary.TotalRevenue.String(),
		SaleCount:    summary.SaleCount,
		BestSeller:   summary.BestSeller.Name,
		BestQtySold:  summary.BestSeller.QtySold,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// withAccessLog writes a single access log after the handler completes.
// It relies on the request-scoped logger already injected by ObservabilityMiddleware.
func (h *Handler) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		logctx.FromOr(r.Context(), h.log).Info("http_access",
			observability.F("method", r.Method),
			observability.F("route", routeFromContext(r.Context())),
			observability.F("path", r.URL.Path),
			observability.F("status", lrw.status),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		)
	})
}

// withTrace creates a server span for the request using OTel and W3C propagation.
func (h *Handler) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tracer := otel.Tracer("swiftmart.http")
		parentCtx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		route := routeFromContext(parentCtx)
		spanName := route
		if spanName == "unknown" {
			spanName = r.Method + " " + r.URL.Path
		}
		template := route
		if idx := strings.Index(template, " "); idx >= 0 {
			template = template[idx+1:]
		}
		if template == "unknown" || template == "" {
			template = r.URL.Path
		}

		ctxWithSpan, span := tracer.Start(parentCtx,
			spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", template),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			),
		)
		defer span.End()

		next.ServeHTTP(w, r.WithContext(ctxWithSpan))
	})
}

// withHTTPMetrics records RED-ish HTTP metrics using injected vectors.
// DO NOT new metrics inside the middleware.
func (h *Handler) withHTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		if h.tel != nil {
			h.tel.Counter(observability.MHTTPRequests).Add(1, observability.L("method", r.Method), observability.L("route", routeFromContext(r.Context())), observability.L("status", strconv.Itoa(lrw.status)))
			h.tel.Histogram(observability.MHTTPRequestDuration).Observe(time.Since(start).Seconds(), observability.L("method", r.Method), observability.L("route", routeFromContext(r.Context())), observability.L("status", strconv.Itoa(lrw.status)))
		}
	})
}

func decodeJSON(ctx context.Context, r *http.Request, dst any) error {
	_ = ctx
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appCheckout.ErrCartNotFound),
		errors.Is(err, domainCatalog.ErrNotFound),
		errors.Is(err, domainCustomer.ErrNotFound),
		errors.Is(err, domainSale.ErrNotFound),
		errors.Is(err, domainSale.ErrLineNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, auth.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, domainSale.ErrInvalidStateTransition):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, domainCatalog.ErrConflict),
		errors.Is(err, domainCustomer.ErrConflict),
		errors.Is(err, domainSale.ErrConflict):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, domainCatalog.ErrInvalidQuantity),
		errors.Is(err, domainCatalog.ErrInvalidPrice),
		errors.Is(err, domainCatalog.ErrInsufficientStock),
		errors.Is(err, domainSale.ErrInvalidQuantity),
		errors.Is(err, domainSale.ErrEmptyCart),
		errors.Is(err, domainSale.ErrNotSettled),
		errors.Is(err, domainPayment.ErrNoTender),
		errors.Is(err, domainPayment.ErrInvalidTender),
		errors.Is(err, domainPayment.ErrUnknownMode),
		errors.Is(err, domainPayment.ErrUnderpaid),
		errors.Is(err, domainPayment.ErrOverpaid):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

type routeKey struct{}

// contextWithRoute stores the stable route template in the context so downstream
// metrics/logging can rely on low-cardinality values.
func contextWithRoute(ctx context.Context, route string) context.Context {
	if route == "" {
		return ctx
	}
	return context.WithValue(ctx, routeKey{}, route)
}

func routeFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if route, ok := ctx.Value(routeKey{}).(string); ok && route != "" {
		return route
	}
	return "unknown"
}
