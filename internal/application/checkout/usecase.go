package checkout

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domcatalog "github.com/swiftmart/pos/internal/domain/catalog"
	dompayment "github.com/swiftmart/pos/internal/domain/payment"
	domsale "github.com/swiftmart/pos/internal/domain/sale"
	"github.com/swiftmart/pos/internal/observability"
	"github.com/swiftmart/pos/internal/observability/logctx"
)

const (
	checkoutService   = "checkout-service"
	useCaseCommitSale = "sale.commit"
	spanPrefix        = "UC."
)

// CommitSaleUseCase wraps the orchestrator's commit with the observability
// hooks the rest of the register reports through: one span, RED metrics, and
// a single use_case_done log line per attempt.
type CommitSaleUseCase struct {
	svc *Service
	tel observability.Telemetry

	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	failCounter  observability.Counter   // checkout_commit_failed_total{reason}
}

func NewCommitSaleUseCase(svc *Service, tel observability.Telemetry) *CommitSaleUseCase {
	baseLog := observability.NopLogger()
	if tel != nil {
		baseLog = tel.Logger()
	}
	baseLog = baseLog.With(
		observability.F("service", checkoutService),
	)

	uc := &CommitSaleUseCase{
		svc: svc,
		tel: tel,
		log: baseLog,
	}
	if tel != nil {
		uc.reqCounter = tel.Counter(observability.MUsecaseRequests)
		uc.durHistogram = tel.Histogram(observability.MUsecaseDuration)
		uc.failCounter = tel.Counter(observability.MCommitFailed)
	}
	return uc
}

type CommitSaleInput struct {
	CartID string
}

type CommitSaleResult struct {
	Sale *domsale.Sale
}

// Execute performs the atomic commit for a settled cart.
func (uc *CommitSaleUseCase) Execute(ctx context.Context, cmd CommitSaleInput) (_ *CommitSaleResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(observability.F("use_case", useCaseCommitSale))

	var span trace.Span
	if uc.tel != nil {
		ctx, span = uc.tel.Tracer().Start(ctx, spanPrefix+"CommitSale",
			attribute.String("use_case", useCaseCommitSale),
			attribute.String("cart.id", cmd.CartID),
		)
	}
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		lat := time.Since(start).Seconds()

		if span != nil {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, statusText)
			} else {
				span.SetStatus(codes.Ok, statusText)
			}
			span.End()
		}

		if uc.reqCounter != nil {
			uc.reqCounter.Add(1,
				observability.L("use_case", useCaseCommitSale),
				observability.L("outcome", outcome),
			)
		}
		if uc.durHistogram != nil {
			uc.durHistogram.Observe(lat,
				observability.L("use_case", useCaseCommitSale),
			)
		}

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
			observability.F("cart_id", cmd.CartID),
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	if cmd.CartID == "" {
		outcome, statusText = "error", "CART_ID_REQUIRED"
		return nil, ErrCartNotFound
	}
	if err := ctx.Err(); err != nil {
		outcome, statusText = "error", "CONTEXT_CANCELED"
		return nil, err
	}

	record, err := uc.svc.Commit(ctx, cmd.CartID)
	if err != nil {
		outcome, statusText = "error", commitStatus(err)
		if uc.failCounter != nil && errors.Is(err, ErrCommitFailed) {
			uc.failCounter.Add(1, observability.L("reason", statusText))
		}
		return nil, err
	}

	if span != nil {
		span.SetAttributes(
			attribute.String("sale.id", record.ID),
			attribute.String("sale.total", record.Total.String()),
			attribute.Int("sale.points_earned", record.PointsEarned),
		)
		span.AddEvent("sale.committed",
			trace.WithAttributes(attribute.String("sale.id", record.ID)),
		)
	}
	return &CommitSaleResult{Sale: record}, nil
}

func commitStatus(err error) string {
	switch {
	case errors.Is(err, domcatalog.ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, dompayment.ErrUnderpaid):
		return "UNDERPAID"
	case errors.Is(err, dompayment.ErrOverpaid):
		return "OVERPAID"
	case errors.Is(err, domsale.ErrNotSettled):
		return "NOT_SETTLED"
	case errors.Is(err, ErrCartNotFound):
		return "CART_NOT_FOUND"
	case errors.Is(err, ErrCommitFailed):
		return "COMMIT_FAILED"
	default:
		return "ERROR"
	}
}
