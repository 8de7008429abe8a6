package report

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domcatalog "github.com/swiftmart/pos/internal/domain/catalog"
	domoutbox "github.com/swiftmart/pos/internal/domain/outbox"
	domsale "github.com/swiftmart/pos/internal/domain/sale"
	"github.com/swiftmart/pos/internal/observability"
	"github.com/swiftmart/pos/internal/observability/logctx"
)

// Emitter renders a finalized sale for the operator (receipt printer, text
// file, whatever sits behind the port).
type Emitter interface {
	Emit(ctx context.Context, s *domsale.Sale) error
}

// Archive records committed sales durably for history and revenue reports.
type Archive interface {
	Record(ctx context.Context, s *domsale.Sale) error
}

const (
	workerService = "report-worker"
	spanPrefix    = "UC."
)

// Worker consumes commit-time events off the bus: every committed sale gets
// a receipt and, when an archive is configured, a durable history row.
// Low-stock signals are counted and logged for the restock report.
type Worker struct {
	subscriber domoutbox.Subscriber
	emitter    Emitter
	archive    Archive // nil when the archive is disabled
	tel        observability.Telemetry

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	lowStock     observability.Counter   // catalog_low_stock_total{product_id}
}

func New(
	subscriber domoutbox.Subscriber,
	emitter Emitter,
	archive Archive,
	tel observability.Telemetry,
	logger observability.Logger,
) *Worker {
	base := logger
	if base == nil && tel != nil {
		base = tel.Logger()
	}
	if base == nil {
		base = observability.NopLogger()
	}
	base = base.With(
		observability.F("service", workerService),
	)

	w := &Worker{
		subscriber: subscriber,
		emitter:    emitter,
		archive:    archive,
		tel:        tel,
		log:        base,
	}
	if tel != nil {
		w.reqCounter = tel.Counter(observability.MUsecaseRequests)
		w.durHistogram = tel.Histogram(observability.MUsecaseDuration)
		w.lowStock = tel.Counter(observability.MLowStock)
	}
	return w
}

func (w *Worker) Start() {
	if w.subscriber == nil {
		return
	}
	w.subscriber.Subscribe(domsale.CommittedEvent{}.EventName(), w.handleSaleCommitted)
	w.subscriber.Subscribe(domcatalog.LowStockEvent{}.EventName(), w.handleLowStock)
}

func (w *Worker) handleSaleCommitted(ctx context.Context, e domoutbox.Event) error {
	const useCase = "report.worker.sale_committed"
	evt, ok := e.(domsale.CommittedEvent)
	if !ok {
		w.count(useCase, "ignored")
		return nil
	}

	var span trace.Span
	if w.tel != nil {
		ctx, span = w.tel.Tracer().Start(ctx, spanPrefix+"SaleCommitted",
			attribute.String("use_case", useCase),
			attribute.String("sale.id", evt.Sale.ID),
		)
	}
	start := time.Now()
	outcome, status := "success", "OK"

	logger := logctx.FromOr(ctx, w.log).With(
		observability.F("use_case", useCase),
		observability.F("sale_id", evt.Sale.ID),
	)
	ctx = logctx.With(ctx, logger)

	defer func() {
		lat := time.Since(start).Seconds()
		w.observe(useCase, outcome, lat)

		logger.Info("use_case_done",
			observability.F("outcome", outcome),
			observability.F("status", status),
			observability.F("latency_seconds", lat),
		)

		if span != nil {
			if outcome == "error" {
				span.SetStatus(codes.Error, status)
			} else {
				span.SetStatus(codes.Ok, status)
			}
			span.End()
		}
	}()

	sale := evt.Sale
	if w.emitter != nil {
		if err := w.emitter.Emit(ctx, &sale); err != nil {
			outcome, status = "error", "RECEIPT_EMIT_FAILED"
			return fmt.Errorf("report worker: emit receipt: %w", err)
		}
	}

	if w.archive != nil {
		if err := w.archive.Record(ctx, &sale); err != nil {
			outcome, status = "error", "ARCHIVE_RECORD_FAILED"
			return fmt.Errorf("report worker: archive sale: %w", err)
		}
	}

	return nil
}

func (w *Worker) handleLowStock(ctx context.Context, e domoutbox.Event) error {
	const useCase = "report.worker.low_stock"
	evt, ok := e.(domcatalog.LowStockEvent)
	if !ok {
		w.count(useCase, "ignored")
		return nil
	}

	if w.lowStock != nil {
		w.lowStock.Add(1, observability.L("product_id", evt.ProductID))
	}
	logctx.FromOr(ctx, w.log).Warn("low_stock",
		observability.F("product_id", evt.ProductID),
		observability.F("name", evt.Name),
		observability.F("remaining", evt.Remaining),
		observability.F("threshold", evt.Threshold),
	)
	w.count(useCase, "success")
	return nil
}

func (w *Worker) count(useCase, outcome string) {
	if w.reqCounter != nil {
		w.reqCounter.Add(1,
			observability.L("use_case", useCase),
			observability.L("outcome", outcome),
		)
	}
}

func (w *Worker) observe(useCase string, outcome string, latencySeconds float64) {
	w.count(useCase, outcome)
	if w.durHistogram != nil {
		w.durHistogram.Observe(latencySeconds,
			observability.L("use_case", useCase),
		)
	}
}
