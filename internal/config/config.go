package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/futura.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	Auth    AuthConfig    `envPrefix:"AUTH_"`
	Oracle  OracleConfig  `envPrefix:"ORACLE_"`
	PayPal  PayPalConfig  `envPrefix:"PAYPAL_"`
	Premium PremiumConfig `envPrefix:"PREMIUM_"`

	RevealInterval time.Duration `env:"REVEAL_INTERVAL" envDefault:"800ms"`
}

type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`
	Audience  string `env:"JWT_AUDIENCE" envDefault:"authenticated"`
}

type OracleConfig struct {
	Backend string        `env:"BACKEND" envDefault:"gateway"`
	URL     string        `env:"URL" envDefault:"https://ai.gateway.lovable.dev/v1/chat/completions"`
	APIKey  string        `env:"API_KEY"`
	Model   string        `env:"MODEL" envDefault:"google/gemini-2.5-flash"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"45s"`
}

type PayPalConfig struct {
	BaseURL  string        `env:"BASE_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID string        `env:"CLIENT_ID"`
	Secret   string        `env:"SECRET"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

type PremiumConfig struct {
	Price    decimal.Decimal `env:"PRICE" envDefault:"2.99"`
	Currency string          `env:"CURRENCY" envDefault:"USD"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.Oracle.Backend != "gateway" && cfg.Oracle.Backend != "gemini" {
		return nil, fmt.Errorf("ORACLE_BACKEND must be gateway or gemini, got %q", cfg.Oracle.Backend)
	}
	if !cfg.Premium.Price.IsPositive() {
		return nil, fmt.Errorf("PREMIUM_PRICE must be positive, got %s", cfg.Premium.Price)
	}
	return &cfg, nil
}
