package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/printforgeapp/printforge/internal/cart"
	"github.com/printforgeapp/printforge/internal/catalog"
	"github.com/printforgeapp/printforge/internal/pricing"
)

// CartContents is a cart listing with its price breakdown.
type CartContents struct {
	Items  []cart.LineItem `json:"items"`
	Totals pricing.Totals  `json:"totals"`
}

// AddItemInput is one prospective cart entry as received from the caller.
type AddItemInput struct {
	ProductID     string
	Selection     catalog.Selection
	Quantity      int64
	Customization map[string]bool
}

// CartService resolves, validates and persists cart entries. Resolution runs
// against a fresh (or cached) snapshot on every add; the service never prices
// a variant the selector did not resolve.
type CartService struct {
	products *ProductService
	builder  *cart.Builder
	store    cart.Store
	pricer   *pricing.Resolver
	logger   *slog.Logger
}

func NewCartService(products *ProductService, builder *cart.Builder, store cart.Store, pricer *pricing.Resolver, logger *slog.Logger) *CartService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CartService{
		products: products,
		builder:  builder,
		store:    store,
		pricer:   pricer,
		logger:   logger,
	}
}

// AddItem resolves the selection and persists the resulting line item.
// A non-resolved selection is rejected: NoMatch and Incomplete both surface
// as errors here because adding an unpriceable entry would corrupt the cart.
func (s *CartService) AddItem(ctx context.Context, cartID string, input AddItemInput) (cart.LineItem, *catalog.Resolution, error) {
	view, err := s.products.GetView(ctx, input.ProductID)
	if err != nil {
		return cart.LineItem{}, nil, err
	}

	result := s.products.ResolveView(view, input.Selection)
	resolution := result.Resolution

	switch resolution.Status {
	case catalog.StatusResolved:
		// fall through to build
	case catalog.StatusNoMatch:
		return cart.LineItem{}, &resolution, catalog.ErrNoMatch
	case catalog.StatusIncomplete:
		return cart.LineItem{}, &resolution, &cart.ValidationError{
			Field:  "selection",
			Reason: fmt.Sprintf("missing axes: %v", resolution.MissingAxes),
		}
	case catalog.StatusAmbiguous:
		return cart.LineItem{}, &resolution, &cart.ValidationError{
			Field:  "selection",
			Reason: "selection matches more than one variant",
		}
	}

	item, err := s.builder.Build(view.Product, resolution, input.Quantity, input.Customization)
	if err != nil {
		return cart.LineItem{}, &resolution, err
	}

	stored, err := s.store.Add(ctx, cartID, *item)
	if err != nil {
		return cart.LineItem{}, &resolution, fmt.Errorf("failed to store cart item: %w", err)
	}

	s.logger.Info("cart item added",
		"cart_id", cartID,
		"line_id", stored.ID,
		"product_id", stored.ProductID,
		"variant_id", stored.VariantID,
		"quantity", stored.Quantity,
	)
	return stored, &resolution, nil
}

// Contents lists the cart with its computed totals.
func (s *CartService) Contents(ctx context.Context, cartID string) (*CartContents, error) {
	items, err := s.store.List(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}

	lines := make([]pricing.Line, len(items))
	for i, item := range items {
		// Stores persist minor units only; the display form is rederived.
		items[i].UnitPriceDisplay = pricing.Display(item.UnitPriceMinorUnits)
		lines[i] = item.PricingLine()
	}

	return &CartContents{
		Items:  items,
		Totals: s.pricer.ComputeTotals(lines),
	}, nil
}

func (s *CartService) RemoveItem(ctx context.Context, cartID, lineID string) error {
	return s.store.Remove(ctx, cartID, lineID)
}

func (s *CartService) Clear(ctx context.Context, cartID string) error {
	return s.store.Clear(ctx, cartID)
}
