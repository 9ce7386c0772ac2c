package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/printforgeapp/printforge/internal/checkout"
)

// ErrCheckoutDisabled is returned when no payment processor is configured.
var ErrCheckoutDisabled = errors.New("checkout is not configured")

// ErrEmptyCart rejects checkout on a cart with no items.
var ErrEmptyCart = errors.New("cart is empty")

// CheckoutService turns a cart into a payment session.
type CheckoutService struct {
	carts      *CartService
	client     *checkout.Client
	successURL string
	cancelURL  string
	logger     *slog.Logger
}

func NewCheckoutService(carts *CartService, client *checkout.Client, successURL, cancelURL string, logger *slog.Logger) *CheckoutService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CheckoutService{
		carts:      carts,
		client:     client,
		successURL: successURL,
		cancelURL:  cancelURL,
		logger:     logger,
	}
}

// CheckoutResult carries what the caller needs to redirect to payment.
type CheckoutResult struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CreateSession computes the cart's totals and opens a payment session over
// them. Amounts are passed to the processor in minor units, unconverted.
func (s *CheckoutService) CreateSession(ctx context.Context, cartID string) (*CheckoutResult, error) {
	if s.client == nil {
		return nil, ErrCheckoutDisabled
	}

	contents, err := s.carts.Contents(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(contents.Items) == 0 {
		return nil, ErrEmptyCart
	}

	session, err := s.client.CreateSession(ctx, checkout.SessionParams{
		CartID:     cartID,
		Items:      contents.Items,
		Totals:     contents.Totals,
		SuccessURL: s.successURL,
		CancelURL:  s.cancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment session: %w", err)
	}

	s.logger.Info("checkout session created", "cart_id", cartID, "session_id", session.ID, "total_minor_units", contents.Totals.TotalMinorUnits)
	return &CheckoutResult{SessionID: session.ID, URL: session.URL}, nil
}
