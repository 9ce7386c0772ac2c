package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	PrintifyAPIKey  string `env:"PRINTIFY_API_KEY,required" validate:"required"`
	PrintifyShopID  string `env:"PRINTIFY_SHOP_ID,required" validate:"required"`
	PrintifyBaseURL string `env:"PRINTIFY_BASE_URL" envDefault:"https://api.printify.com/v1" validate:"required,url"`

	DatabaseURL string `env:"DATABASE_URL" validate:"required_if=CartStoreProvider postgres"`

	CacheProvider         string        `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	CartStoreProvider     string        `env:"CART_STORE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory postgres"`
	RedisConnectionString string        `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=CacheProvider redis"`
	ProductCacheTTL       time.Duration `env:"PRODUCT_CACHE_TTL" envDefault:"5m"`

	TaxRate        float64 `env:"TAX_RATE" envDefault:"0" validate:"gte=0,lt=1"`
	GiftWrapCents  int64   `env:"GIFT_WRAP_CENTS" envDefault:"499" validate:"gte=0"`
	RushCents      int64   `env:"RUSH_CENTS" envDefault:"999" validate:"gte=0"`
	ExpressCents   int64   `env:"EXPRESS_CENTS" envDefault:"1499" validate:"gte=0"`
	DictionaryPath string  `env:"OPTION_DICTIONARY_PATH"`

	StripeSecretKey    string `env:"STRIPE_SECRET_KEY"`
	CheckoutSuccessURL string `env:"CHECKOUT_SUCCESS_URL" validate:"omitempty,url"`
	CheckoutCancelURL  string `env:"CHECKOUT_CANCEL_URL" validate:"omitempty,url"`
	BaseURL            string `env:"BASE_URL" validate:"omitempty,url"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	Port      string     `env:"PORT" envDefault:"8080"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	hasStripeKey := strings.TrimSpace(c.StripeSecretKey) != ""
	hasSuccessURL := strings.TrimSpace(c.CheckoutSuccessURL) != ""
	hasCancelURL := strings.TrimSpace(c.CheckoutCancelURL) != ""
	if hasStripeKey != hasSuccessURL || hasStripeKey != hasCancelURL {
		return fmt.Errorf("STRIPE_SECRET_KEY, CHECKOUT_SUCCESS_URL and CHECKOUT_CANCEL_URL must be set together")
	}

	baseURL := strings.TrimSpace(c.BaseURL)
	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil || parsed.Hostname() == "" {
			return fmt.Errorf("BASE_URL must be a valid absolute URL")
		}
		if !isLocalHost(parsed.Hostname()) && !strings.EqualFold(parsed.Scheme, "https") {
			return fmt.Errorf("BASE_URL must use https outside local development")
		}
	}

	return nil
}

// CheckoutEnabled reports whether checkout was configured.
func (c *Config) CheckoutEnabled() bool {
	return strings.TrimSpace(c.StripeSecretKey) != ""
}

// Surcharges returns the configured per-flag amounts in minor units.
func (c *Config) Surcharges() map[string]int64 {
	return map[string]int64{
		"gift_wrap":        c.GiftWrapCents,
		"rush":             c.RushCents,
		"express_shipping": c.ExpressCents,
	}
}

func isLocalHost(host string) bool {
	switch strings.ToLower(strings.TrimSpace(host)) {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}
