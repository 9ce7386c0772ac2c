// Package services contains the application services behind the HTTP handlers.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/printforgeapp/printforge/internal/cache"
	"github.com/printforgeapp/printforge/internal/catalog"
	"github.com/printforgeapp/printforge/internal/pricing"
)

// CatalogFetcher is the upstream client surface the product service needs.
type CatalogFetcher interface {
	GetProduct(ctx context.Context, shopID, productID string) (*catalog.Product, error)
	ListProducts(ctx context.Context, shopID string, page, limit int) ([]*catalog.Product, error)
}

// ProductView is a product snapshot together with its normalized axes.
type ProductView struct {
	Product  *catalog.Product
	Axes     []catalog.NormalizedAxis
	Warnings []catalog.Warning
}

// ResolveResult pairs a resolution with the resolved variant's price.
type ResolveResult struct {
	Resolution catalog.Resolution
	UnitPrice  *pricing.UnitPrice
}

// ProductService fetches catalog snapshots (through the cache) and runs the
// normalization and resolution pipeline over them. The engine itself is pure;
// all I/O lives here.
type ProductService struct {
	fetcher    CatalogFetcher
	cache      cache.Provider
	normalizer *catalog.Normalizer
	selector   *catalog.Selector
	pricer     *pricing.Resolver
	shopID     string
	cacheTTL   time.Duration
	logger     *slog.Logger
}

func NewProductService(
	fetcher CatalogFetcher,
	cacheProvider cache.Provider,
	dict *catalog.Dictionary,
	pricer *pricing.Resolver,
	shopID string,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *ProductService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ProductService{
		fetcher:    fetcher,
		cache:      cacheProvider,
		normalizer: catalog.NewNormalizer(dict),
		selector:   catalog.NewSelector(dict),
		pricer:     pricer,
		shopID:     shopID,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// GetView returns the normalized view of one product.
func (s *ProductService) GetView(ctx context.Context, productID string) (*ProductView, error) {
	product, err := s.getProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	axes, warnings := s.normalizer.NormalizeProduct(product)
	for _, w := range warnings {
		s.logger.Warn("catalog data quality issue", "product_id", product.ID, "code", string(w.Code), "axis", w.Axis, "detail", w.Detail)
	}

	return &ProductView{Product: product, Axes: axes, Warnings: warnings}, nil
}

// List returns normalized views for one page of the shop's products.
func (s *ProductService) List(ctx context.Context, page, limit int) ([]*ProductView, error) {
	products, err := s.fetcher.ListProducts(ctx, s.shopID, page, limit)
	if err != nil {
		return nil, err
	}

	views := make([]*ProductView, 0, len(products))
	for _, product := range products {
		axes, warnings := s.normalizer.NormalizeProduct(product)
		views = append(views, &ProductView{Product: product, Axes: axes, Warnings: warnings})
	}
	return views, nil
}

// Resolve runs the selection against a product. The unit price is attached
// only when the resolution reached the resolved state; an incomplete or
// failed resolution never carries a price.
func (s *ProductService) Resolve(ctx context.Context, productID string, selection catalog.Selection) (*ResolveResult, error) {
	view, err := s.GetView(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.ResolveView(view, selection), nil
}

// ResolveView is the pure half of Resolve; it operates on an already-fetched
// view.
func (s *ProductService) ResolveView(view *ProductView, selection catalog.Selection) *ResolveResult {
	resolution := s.selector.Resolve(view.Product, view.Axes, selection)

	result := &ResolveResult{Resolution: resolution}
	if resolution.Status == catalog.StatusResolved && resolution.Variant != nil {
		price := s.pricer.UnitPrice(resolution.Variant.PriceMinorUnits)
		result.UnitPrice = &price
	}
	return result
}

func (s *ProductService) getProduct(ctx context.Context, productID string) (*catalog.Product, error) {
	key := cache.ProductKey(s.shopID, productID)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		product, err := catalog.DecodeProduct([]byte(cached))
		if err == nil {
			return product, nil
		}
		s.logger.Warn("discarding undecodable cached snapshot", "product_id", productID, "error", err)
		_ = s.cache.Delete(ctx, key)
	} else if !errors.Is(err, cache.ErrNotFound) {
		s.logger.Warn("product cache read failed", "product_id", productID, "error", err)
	}

	product, err := s.fetcher.GetProduct(ctx, s.shopID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", productID, err)
	}

	if snapshot, err := encodeSnapshot(product); err == nil {
		if err := s.cache.Set(ctx, key, snapshot, s.cacheTTL); err != nil {
			s.logger.Warn("product cache write failed", "product_id", productID, "error", err)
		}
	}

	return product, nil
}

// encodeSnapshot re-encodes a product in the upstream wire shape so a cache
// hit goes through the same decode path as a fresh fetch.
func encodeSnapshot(p *catalog.Product) (string, error) {
	type wireValue struct {
		ID    any     `json:"id"`
		Title *string `json:"title"`
	}
	type wireOption struct {
		Name   string      `json:"name"`
		Values []wireValue `json:"values"`
	}
	type wireImage struct {
		Src        string  `json:"src"`
		VariantIDs []int64 `json:"variant_ids"`
	}
	type wireVariant struct {
		ID         int64            `json:"id"`
		Price      int64            `json:"price"`
		Options    map[string]int64 `json:"options"`
		IsEnabled  bool             `json:"is_enabled"`
		ImageIndex *int             `json:"image_index,omitempty"`
	}

	out := struct {
		ID          string        `json:"id"`
		Title       string        `json:"title"`
		Description string        `json:"description"`
		Images      []wireImage   `json:"images"`
		Options     []wireOption  `json:"options"`
		Variants    []wireVariant `json:"variants"`
	}{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
	}

	for _, img := range p.Images {
		out.Images = append(out.Images, wireImage{Src: img.URL, VariantIDs: img.VariantIDs})
	}
	for _, opt := range p.Options {
		wo := wireOption{Name: opt.Name}
		for _, v := range opt.Values {
			value := wireValue{}
			if v.HasNumber {
				value.ID = v.NumericID
			} else if v.RawID != "" {
				value.ID = v.RawID
			}
			if v.Label != "" {
				label := v.Label
				value.Title = &label
			}
			wo.Values = append(wo.Values, value)
		}
		out.Options = append(out.Options, wo)
	}
	for _, v := range p.Variants {
		out.Variants = append(out.Variants, wireVariant{
			ID:         v.ID,
			Price:      v.PriceMinorUnits,
			Options:    v.Selection,
			IsEnabled:  v.Enabled,
			ImageIndex: v.ImageIndex,
		})
	}

	encoded, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
