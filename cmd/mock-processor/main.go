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

	env "github.com/caarlos0/env/v11"

	"github.com/josh-kwaku/dermapay-backend/internal/deposyt"
	"github.com/josh-kwaku/dermapay-backend/internal/logging"
)

type config struct {
	Port             int           `env:"PORT" envDefault:"8081"`
	WebhookSecret    string        `env:"DEPOSYT_WEBHOOK_SECRET,required"`
	CheckoutBaseURL  string        `env:"MOCK_CHECKOUT_BASE_URL" envDefault:"http://localhost:8081/checkout"`
	AutoSucceedAfter time.Duration `env:"MOCK_AUTO_SUCCEED_AFTER" envDefault:"0s"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv           string        `env:"APP_ENV" envDefault:"development"`
}

func main() {
	cfg, err := env.ParseAs[config]()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("mock-processor", cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := newServer(cfg.CheckoutBaseURL, deposyt.NewNotifier(cfg.WebhookSecret, 5*time.Second), cfg.AutoSucceedAfter)

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("mock processor started", "addr", addr, "auto_succeed_after", cfg.AutoSucceedAfter)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	srv.wait()
}
