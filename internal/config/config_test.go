package config

import (
	"log/slog"
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		PrintifyAPIKey:        "pk_test",
		PrintifyShopID:        "12345",
		PrintifyBaseURL:       "https://api.printify.com/v1",
		CacheProvider:         "memory",
		CartStoreProvider:     "memory",
		RedisConnectionString: "redis://localhost:6379/0",
		LogFormat:             "text",
	}
}

func TestValidateCacheProvider(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.CacheProvider = "invalid"

	err := cfg.validate()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "CacheProvider") || !strings.Contains(err.Error(), "oneof") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateCartStoreProvider(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.CartStoreProvider = "dynamo"

	err := cfg.validate()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "CartStoreProvider") || !strings.Contains(err.Error(), "oneof") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateDatabaseURLRequiredForPostgres(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.CartStoreProvider = "postgres"
	cfg.DatabaseURL = ""

	err := cfg.validate()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "DatabaseURL") || !strings.Contains(err.Error(), "required_if") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateTaxRateBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rate    float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"typical", 0.0875, false},
		{"negative", -0.01, true},
		{"one", 1, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			cfg.TaxRate = tt.rate

			err := cfg.validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateStripeSettingsMustBePaired(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		key        string
		successURL string
		cancelURL  string
		wantErr    bool
	}{
		{"all unset", "", "", "", false},
		{"all set", "sk_test", "https://shop.example.com/success", "https://shop.example.com/cancel", false},
		{"key without urls", "sk_test", "", "", true},
		{"urls without key", "", "https://shop.example.com/success", "https://shop.example.com/cancel", true},
		{"missing cancel url", "sk_test", "https://shop.example.com/success", "", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			cfg.StripeSecretKey = tt.key
			cfg.CheckoutSuccessURL = tt.successURL
			cfg.CheckoutCancelURL = tt.cancelURL

			err := cfg.validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateBaseURLRequiresHTTPSOutsideLocalhost(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.BaseURL = "http://example.com"

	err := cfg.validate()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "BASE_URL must use https") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateBaseURLAllowsLocalhostHTTP(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.BaseURL = "http://localhost:8080"

	if err := cfg.validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestCheckoutEnabled(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if cfg.CheckoutEnabled() {
		t.Fatalf("checkout should be disabled without a Stripe key")
	}

	cfg.StripeSecretKey = "sk_test"
	if !cfg.CheckoutEnabled() {
		t.Fatalf("checkout should be enabled with a Stripe key")
	}
}

func TestSurcharges(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.GiftWrapCents = 499
	cfg.RushCents = 999
	cfg.ExpressCents = 1499

	got := cfg.Surcharges()
	if got["gift_wrap"] != 499 || got["rush"] != 999 || got["express_shipping"] != 1499 {
		t.Fatalf("surcharges = %v", got)
	}
}

func TestLoadParsesUppercaseLogLevel(t *testing.T) {
	t.Setenv("PRINTIFY_API_KEY", "pk_test")
	t.Setenv("PRINTIFY_SHOP_ID", "12345")
	t.Setenv("LOG_LEVEL", "INFO")

	// Ensure unrelated env vars from host don't affect this test.
	t.Setenv("CACHE_PROVIDER", "")
	t.Setenv("CART_STORE_PROVIDER", "")
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("CHECKOUT_SUCCESS_URL", "")
	t.Setenv("CHECKOUT_CANCEL_URL", "")
	t.Setenv("BASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("expected INFO level, got %v", cfg.LogLevel)
	}
	if cfg.ProductCacheTTL.Minutes() != 5 {
		t.Fatalf("expected default 5m cache TTL, got %v", cfg.ProductCacheTTL)
	}
}
