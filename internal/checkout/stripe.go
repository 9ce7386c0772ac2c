// Package checkout creates Stripe checkout sessions from computed cart totals.
package checkout

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v84"

	"github.com/printforgeapp/printforge/internal/cart"
	"github.com/printforgeapp/printforge/internal/pricing"
)

// Client wraps the Stripe API for one-off payment sessions.
type Client struct {
	client *stripe.Client
}

func NewClient(secretKey string) *Client {
	return &Client{client: stripe.NewClient(secretKey)}
}

// SessionParams holds the inputs for one checkout session. All amounts are
// minor units, taken verbatim from the engine's totals; Stripe never sees a
// display-converted value.
type SessionParams struct {
	CartID     string
	Items      []cart.LineItem
	Totals     pricing.Totals
	SuccessURL string
	CancelURL  string
}

// CreateSession builds a payment-mode session with one Stripe line per cart
// line, plus synthetic lines for surcharges and tax so the session total
// equals the engine's total exactly.
func (c *Client) CreateSession(ctx context.Context, params SessionParams) (*stripe.CheckoutSession, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}
	if len(params.Items) == 0 {
		return nil, fmt.Errorf("cannot create a checkout session for an empty cart")
	}

	lineItems := make([]*stripe.CheckoutSessionCreateLineItemParams, 0, len(params.Items)+2)
	for _, item := range params.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionCreateLineItemParams{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency: stripe.String("usd"),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(item.UnitPriceMinorUnits),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	if params.Totals.SurchargesMinorUnits > 0 {
		lineItems = append(lineItems, syntheticLine("Customization", params.Totals.SurchargesMinorUnits))
	}
	if params.Totals.TaxMinorUnits > 0 {
		lineItems = append(lineItems, syntheticLine("Tax", params.Totals.TaxMinorUnits))
	}

	sessionParams := &stripe.CheckoutSessionCreateParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(params.SuccessURL),
		CancelURL:          stripe.String(params.CancelURL),
		LineItems:          lineItems,
		ShippingAddressCollection: &stripe.CheckoutSessionCreateShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice([]string{"US"}),
		},
		Metadata: map[string]string{
			"cart_id": params.CartID,
		},
	}

	session, err := c.client.V1CheckoutSessions.Create(ctx, sessionParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return session, nil
}

func syntheticLine(name string, amountMinorUnits int64) *stripe.CheckoutSessionCreateLineItemParams {
	return &stripe.CheckoutSessionCreateLineItemParams{
		PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
			Currency: stripe.String("usd"),
			ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
				Name: stripe.String(name),
			},
			UnitAmount: stripe.Int64(amountMinorUnits),
		},
		Quantity: stripe.Int64(1),
	}
}
