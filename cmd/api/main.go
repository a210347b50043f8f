package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/josh-kwaku/dermapay-backend/api"
	"github.com/josh-kwaku/dermapay-backend/internal/auth"
	"github.com/josh-kwaku/dermapay-backend/internal/config"
	"github.com/josh-kwaku/dermapay-backend/internal/deposyt"
	"github.com/josh-kwaku/dermapay-backend/internal/fee"
	"github.com/josh-kwaku/dermapay-backend/internal/handler"
	"github.com/josh-kwaku/dermapay-backend/internal/logging"
	"github.com/josh-kwaku/dermapay-backend/internal/metrics"
	"github.com/josh-kwaku/dermapay-backend/internal/middleware"
	"github.com/josh-kwaku/dermapay-backend/internal/repository"
	"github.com/josh-kwaku/dermapay-backend/internal/service/merchant"
	"github.com/josh-kwaku/dermapay-backend/internal/service/payment"
	"github.com/josh-kwaku/dermapay-backend/internal/store/memory"
	"github.com/josh-kwaku/dermapay-backend/internal/worker"
	"github.com/josh-kwaku/dermapay-backend/migrations"
)

const (
	serviceName       = "dermapay-api"
	version           = "1.0.0"
	dbConnectAttempts = 30
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init(serviceName, cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	}, dbConnectAttempts)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, db, migrations.FS); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	fees, err := fee.NewPolicy(cfg.SurchargeRate)
	if err != nil {
		slog.Error("invalid fee policy", "error", err)
		os.Exit(1)
	}

	merchantRepo := repository.NewMerchantRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	bankRepo := repository.NewBankDestinationRepository(db)
	deliveryRepo := repository.NewWebhookDeliveryRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	processor := deposyt.NewClient(cfg.DeposytBaseURL, cfg.DeposytAPIKey, cfg.WebhookCallbackURL, cfg.DeposytTimeout)
	liveEngine := payment.NewEngine(metrics.EngineLive,
		merchantRepo, paymentRepo, deliveryRepo, processor, fees, cfg.MaxPaymentAmount)
	liveMerchants := merchant.NewService(merchantRepo, bankRepo)

	sandbox, err := memory.NewSandbox(ctx, auth.DemoUserID, cfg.CheckoutBaseURL, time.Now().UTC(), memory.DefaultPaymentCapacity)
	if err != nil {
		slog.Error("failed to seed demo sandbox", "error", err)
		os.Exit(1)
	}
	demoIDs := &payment.SequentialIDs{}
	demoEngine := payment.NewEngine(metrics.EngineDemo,
		sandbox.Merchants, sandbox.Payments, sandbox.Deliveries,
		payment.NewSandboxCheckout(cfg.CheckoutBaseURL, cfg.DemoLatency),
		fees, cfg.MaxPaymentAmount,
		payment.WithIDGenerator(demoIDs.New),
		payment.Ephemeral(),
	)
	demoMerchants := merchant.NewService(sandbox.Merchants, sandbox.Banks, merchant.ReadOnly())

	healthHandler := handler.NewHealthHandler(repository.NewDB(db), version)
	demoHandler := handler.NewDemoSessionHandler(cfg.DemoPasswordHash, cfg.JWTSecret, cfg.DemoTokenTTL)
	paymentHandler := handler.NewPaymentHandler(liveEngine, demoEngine)
	merchantHandler := handler.NewMerchantHandler(liveMerchants, demoMerchants)
	webhookHandler := handler.NewWebhookHandler(liveEngine, cfg.WebhookSecret)

	authed := middleware.Auth(cfg.JWTSecret)
	idempotent := middleware.Idempotency(idempotencyRepo)
	protect := func(h http.HandlerFunc) http.Handler { return authed(h) }
	protectOnce := func(h http.HandlerFunc) http.Handler { return authed(idempotent(h)) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.Handle("GET /metrics", metrics.Handler())
	docs := handler.NewDocsHandler(api.OpenAPI, "DermaPay API")
	mux.HandleFunc("GET /docs", docs.Page)
	mux.HandleFunc("GET /docs/openapi.yaml", docs.Spec)

	mux.HandleFunc("POST /api/v1/demo/session", demoHandler.Create)

	mux.Handle("POST /api/v1/payments", protectOnce(paymentHandler.Create))
	mux.Handle("GET /api/v1/payments", protect(paymentHandler.List))
	mux.Handle("GET /api/v1/payments/{id}", protect(paymentHandler.Get))
	mux.Handle("GET /api/v1/payments/{id}/qr", protect(paymentHandler.QRCode))

	mux.Handle("POST /api/v1/merchants", protectOnce(merchantHandler.Onboard))
	mux.Handle("GET /api/v1/merchants/me", protect(merchantHandler.Me))
	mux.Handle("PATCH /api/v1/merchants/me", protect(merchantHandler.Update))
	mux.Handle("POST /api/v1/merchants/me/bank-destination", protectOnce(merchantHandler.LinkBankDestination))
	mux.Handle("GET /api/v1/merchants/me/bank-destination", protect(merchantHandler.BankDestination))

	mux.HandleFunc("POST /api/v1/webhooks/deposyt", webhookHandler.ReceiveDeposytWebhook)

	var h http.Handler = mux
	h = middleware.Recovery(h)
	h = middleware.Logging(h)
	h = middleware.RequestID(h)
	h = middleware.CORS(cfg.CORSAllowedOrigins)(h)
	h = otelhttp.NewHandler(h, serviceName)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	janitor := worker.NewJanitor(idempotencyRepo, deliveryRepo, cfg.DeliveryRetention, cfg.JanitorInterval, slog.Default())
	go janitor.Start(ctx)

	go func() {
		slog.Info("server started", "addr", addr, "demo_enabled", cfg.DemoEnabled())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
