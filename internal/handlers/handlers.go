// Package handlers provides the JSON API for the storefront engine.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/printforgeapp/printforge/internal/cart"
	"github.com/printforgeapp/printforge/internal/catalog"
	"github.com/printforgeapp/printforge/internal/config"
	"github.com/printforgeapp/printforge/internal/logging"
	"github.com/printforgeapp/printforge/internal/printify"
	"github.com/printforgeapp/printforge/internal/services"
)

const maxRequestBodyBytes = 64 << 10 // 64 KB

// Handlers provides HTTP request handlers for the storefront API.
type Handlers struct {
	config   *config.Config
	products *services.ProductService
	carts    *services.CartService
	checkout *services.CheckoutService
	logger   *slog.Logger
}

type Dependencies struct {
	Config   *config.Config
	Products *services.ProductService
	Carts    *services.CartService
	Checkout *services.CheckoutService
	Logger   *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.Products == nil {
		return nil, fmt.Errorf("handlers dependencies: product service is required")
	}
	if deps.Carts == nil {
		return nil, fmt.Errorf("handlers dependencies: cart service is required")
	}

	return &Handlers{
		config:   deps.Config,
		products: deps.Products,
		carts:    deps.Carts,
		checkout: deps.Checkout,
		logger:   logger,
	}, nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

func (h *Handlers) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.loggerFromContext(ctx).Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
// Nothing here substitutes a fallback value; a degraded condition always
// reaches the client as an explicit error or warning.
func (h *Handlers) writeEngineError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := h.loggerFromContext(ctx)

	var validationErr *cart.ValidationError
	var upstreamErr *catalog.UpstreamDataError

	switch {
	case errors.As(err, &validationErr):
		h.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{Error: validationErr.Error(), Code: "validation_error"})
	case errors.Is(err, catalog.ErrNoMatch):
		h.writeJSON(ctx, w, http.StatusConflict, errorResponse{Error: err.Error(), Code: "no_match"})
	case errors.As(err, &upstreamErr):
		logger.Error("upstream catalog data invalid", "error", err)
		h.writeJSON(ctx, w, http.StatusBadGateway, errorResponse{Error: upstreamErr.Error(), Code: "upstream_data_error"})
	case errors.Is(err, printify.ErrProductNotFound):
		h.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Error: err.Error(), Code: "product_not_found"})
	case errors.Is(err, cart.ErrItemNotFound):
		h.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Error: err.Error(), Code: "item_not_found"})
	case errors.Is(err, services.ErrCheckoutDisabled):
		h.writeJSON(ctx, w, http.StatusNotImplemented, errorResponse{Error: err.Error(), Code: "checkout_disabled"})
	case errors.Is(err, services.ErrEmptyCart):
		h.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "empty_cart"})
	default:
		logger.Error("request failed", "error", err)
		h.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (h *Handlers) decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return &cart.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}
