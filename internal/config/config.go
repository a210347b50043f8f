package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

type Config struct {
	DatabaseURL   string `env:"DATABASE_URL,required"`
	JWTSecret     string `env:"JWT_SECRET,required"`
	WebhookSecret string `env:"DEPOSYT_WEBHOOK_SECRET,required"`

	DeposytBaseURL     string        `env:"DEPOSYT_BASE_URL" envDefault:"http://mock-processor:8081"`
	DeposytAPIKey      string        `env:"DEPOSYT_API_KEY"`
	DeposytTimeout     time.Duration `env:"DEPOSYT_TIMEOUT" envDefault:"5s"`
	WebhookCallbackURL string        `env:"WEBHOOK_CALLBACK_URL" envDefault:"http://app:8080/api/v1/webhooks/deposyt"`
	CheckoutBaseURL    string        `env:"CHECKOUT_BASE_URL" envDefault:"https://pay.dermapay.com"`

	// SurchargeRate is the share added to the customer's total when the
	// customer pays the processing fee.
	SurchargeRate    decimal.Decimal `env:"SURCHARGE_RATE" envDefault:"0.03"`
	MaxPaymentAmount int64           `env:"MAX_PAYMENT_AMOUNT" envDefault:"10000000"`

	DemoPasswordHash string        `env:"DEMO_PASSWORD_HASH"`
	DemoLatency      time.Duration `env:"DEMO_LATENCY" envDefault:"800ms"`
	DemoTokenTTL     time.Duration `env:"DEMO_TOKEN_TTL" envDefault:"12h"`

	// DeliveryRetention bounds how long webhook delivery records are kept.
	// Zero disables pruning.
	DeliveryRetention time.Duration `env:"DELIVERY_RETENTION" envDefault:"720h"`
	JanitorInterval   time.Duration `env:"JANITOR_INTERVAL" envDefault:"1h"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv   string `env:"APP_ENV" envDefault:"production"`

	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if cfg.SurchargeRate.IsNegative() {
		return nil, fmt.Errorf("config.Load: SURCHARGE_RATE must not be negative")
	}
	if cfg.JanitorInterval <= 0 {
		return nil, fmt.Errorf("config.Load: JANITOR_INTERVAL must be positive")
	}
	return &cfg, nil
}

func (c *Config) DemoEnabled() bool {
	return c.DemoPasswordHash != ""
}
