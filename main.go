package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appCatalog "github.com/swiftmart/pos/internal/application/catalog"
	appCheckout "github.com/swiftmart/pos/internal/application/checkout"
	"github.com/swiftmart/pos/internal/application/report"
	"github.com/swiftmart/pos/internal/infrastructure/config"
	"github.com/swiftmart/pos/internal/infrastructure/id"
	"github.com/swiftmart/pos/internal/infrastructure/memory"
	"github.com/swiftmart/pos/internal/infrastructure/observability/oteltrace"
	"github.com/swiftmart/pos/internal/infrastructure/observability/prometrics"
	"github.com/swiftmart/pos/internal/infrastructure/observability/telemetry"
	"github.com/swiftmart/pos/internal/infrastructure/observability/zaplogger"
	"github.com/swiftmart/pos/internal/infrastructure/outbox"
	"github.com/swiftmart/pos/internal/infrastructure/postgres"
	"github.com/swiftmart/pos/internal/infrastructure/receipt"
	"github.com/swiftmart/pos/internal/observability"
	httppresentation "github.com/swiftmart/pos/internal/presentation/http"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	baseLogger := zaplogger.MustNew(cfg.LogFile,
		observability.F("service", cfg.ServiceName),
		observability.F("env", cfg.Env),
	)

	tracer := oteltrace.New(cfg.ServiceName)
	metrics := prometrics.New("", "")
	tel := telemetry.New(tracer, baseLogger,
		map[string]observability.Counter{
			observability.MUsecaseRequests: metrics.Counter(observability.MUsecaseRequests,
				"Total number of use case invocations.", "use_case", "outcome"),
			observability.MHTTPRequests: metrics.Counter(observability.MHTTPRequests,
				"Total number of HTTP requests.", "method", "route", "status"),
			observability.MCommitFailed: metrics.Counter(observability.MCommitFailed,
				"Count of sale commits that ended in a forced void.", "reason"),
			observability.MLowStock: metrics.Counter(observability.MLowStock,
				"Count of low-stock signals raised after commit.", "product_id"),
		},
		map[string]observability.Histogram{
			observability.MUsecaseDuration: metrics.Histogram(observability.MUsecaseDuration,
				"Duration of use case execution in seconds.", prometheus.DefBuckets, "use_case"),
			observability.MHTTPRequestDuration: metrics.Histogram(observability.MHTTPRequestDuration,
				"Duration of HTTP requests in seconds.", prometheus.DefBuckets, "method", "route", "status"),
		},
	)

	// In-memory event bus (acts as outbox/event publisher)
	bus := outbox.NewBus(baseLogger)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	productRepo := memory.NewProductRepository()
	customerRepo := memory.NewCustomerRepository()
	saleRepo := memory.NewSaleRepository()
	idGenerator := id.NewUUIDGenerator()

	checkoutService := appCheckout.NewService(
		productRepo, customerRepo, saleRepo, idGenerator, bus,
		appCheckout.Config{
			LowStockThreshold:         cfg.LowStockThreshold,
			SpendPerPoint:             int64(cfg.LoyaltySpendPerPoint),
			CashierDiscountCapPercent: cfg.CashierDiscountCapPercent,
		},
		baseLogger,
	)
	commitSale := appCheckout.NewCommitSaleUseCase(checkoutService, tel)
	catalogService := appCatalog.NewService(productRepo, idGenerator, cfg.LowStockThreshold, baseLogger)

	emitter := receipt.NewEmitter(cfg.ReceiptDir, cfg.StoreName)

	var (
		archive  report.Archive
		revenue  httppresentation.RevenueReporter
		pgCloser interface{ Close() error }
	)
	if cfg.PostgresDSN != "" {
		pg, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			baseLogger.Error("sales_archive_open_failed", observability.F("error", err.Error()))
			os.Exit(1)
		}
		archive = pg
		revenue = pg
		pgCloser = pg
		defer func() { _ = pgCloser.Close() }()
	}

	reportWorker := report.New(bus, emitter, archive, tel, baseLogger)
	reportWorker.Start()

	handler := httppresentation.NewHandler(checkoutService, commitSale, catalogService, revenue, baseLogger, tel)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("http_server_start",
			observability.F("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Error("http_server_error",
				observability.F("error", err.Error()),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("http_server_shutdown_error",
			observability.F("error", err.Error()),
		)
	} else {
		baseLogger.Info("http_server_stopped")
	}
}
