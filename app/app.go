package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/printforgeapp/printforge/internal/cache"
	"github.com/printforgeapp/printforge/internal/cart"
	"github.com/printforgeapp/printforge/internal/catalog"
	"github.com/printforgeapp/printforge/internal/checkout"
	"github.com/printforgeapp/printforge/internal/config"
	"github.com/printforgeapp/printforge/internal/handlers"
	"github.com/printforgeapp/printforge/internal/printify"
	"github.com/printforgeapp/printforge/internal/pricing"
	"github.com/printforgeapp/printforge/internal/services"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	DB            *pgxpool.Pool
	CacheProvider cache.Provider
	CartStore     cart.Store
	Handlers      *handlers.Handlers
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	dict := catalog.NewDictionary()
	if cfg.DictionaryPath != "" {
		dict, err = catalog.LoadDictionary(cfg.DictionaryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load option dictionary: %w", err)
		}
	}

	var pool *pgxpool.Pool
	if cfg.CartStoreProvider == "postgres" {
		pool, err = connectDB(startupCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
	}

	cacheProvider, err := cache.NewProvider(cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		closePool(pool)
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	cartStore, err := cart.NewStore(startupCtx, cart.Config{
		Provider: cfg.CartStoreProvider,
		Pool:     pool,
	})
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		closePool(pool)
		return nil, fmt.Errorf("failed to initialize cart store: %w", err)
	}

	pricer := pricing.NewResolver(pricing.Rates{
		TaxRate:    cfg.TaxRate,
		Surcharges: cfg.Surcharges(),
	})

	catalogClient := printify.NewClient(cfg.PrintifyBaseURL, cfg.PrintifyAPIKey, logger.With("component", "printify_client"))
	productService := services.NewProductService(
		catalogClient,
		cacheProvider,
		dict,
		pricer,
		cfg.PrintifyShopID,
		cfg.ProductCacheTTL,
		logger.With("component", "product_service"),
	)
	cartService := services.NewCartService(
		productService,
		cart.NewBuilder(pricer),
		cartStore,
		pricer,
		logger.With("component", "cart_service"),
	)

	var checkoutService *services.CheckoutService
	if cfg.CheckoutEnabled() {
		checkoutService = services.NewCheckoutService(
			cartService,
			checkout.NewClient(cfg.StripeSecretKey),
			cfg.CheckoutSuccessURL,
			cfg.CheckoutCancelURL,
			logger.With("component", "checkout_service"),
		)
	}

	h, err := handlers.New(handlers.Dependencies{
		Config:   cfg,
		Products: productService,
		Carts:    cartService,
		Checkout: checkoutService,
		Logger:   logger.With("component", "handlers"),
	})
	if err != nil {
		closeCartStore(logger, cartStore)
		closeCacheProvider(logger, cacheProvider)
		closePool(pool)
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		DB:            pool,
		CacheProvider: cacheProvider,
		CartStore:     cartStore,
		Handlers:      h,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.CartStore != nil {
		closeCartStore(a.Logger, a.CartStore)
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func connectDB(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	format := strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	case "text", "":
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level: cfg.LogLevel,
		}))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: cfg.LogLevel}))
}

func closeCartStore(logger *slog.Logger, store cart.Store) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cart store", "error", err)
	}
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}

func closePool(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
}
