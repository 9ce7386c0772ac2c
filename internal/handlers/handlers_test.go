package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/printforgeapp/printforge/internal/cache"
	"github.com/printforgeapp/printforge/internal/cart"
	"github.com/printforgeapp/printforge/internal/catalog"
	"github.com/printforgeapp/printforge/internal/config"
	"github.com/printforgeapp/printforge/internal/pricing"
	"github.com/printforgeapp/printforge/internal/printify"
	"github.com/printforgeapp/printforge/internal/services"
)

type stubFetcher struct {
	products map[string]*catalog.Product
}

func (f *stubFetcher) GetProduct(ctx context.Context, shopID, productID string) (*catalog.Product, error) {
	product, ok := f.products[productID]
	if !ok {
		return nil, printify.ErrProductNotFound
	}
	return product, nil
}

func (f *stubFetcher) ListProducts(ctx context.Context, shopID string, page, limit int) ([]*catalog.Product, error) {
	var list []*catalog.Product
	for _, p := range f.products {
		list = append(list, p)
	}
	return list, nil
}

func stickerProduct() *catalog.Product {
	return &catalog.Product{
		ID:    "sticker-1",
		Title: "Summit Sticker",
		Images: []catalog.Image{
			{URL: "https://cdn.example.com/sticker.png"},
		},
		Options: []catalog.OptionAxis{
			{Name: "Color", Values: []catalog.OptionValue{
				{RawID: "1", NumericID: 1, HasNumber: true, Label: "Red"},
				{RawID: "2", NumericID: 2, HasNumber: true, Label: "Blue"},
			}},
			{Name: "Size", Values: []catalog.OptionValue{
				{RawID: "20", NumericID: 20, HasNumber: true, Label: "Small"},
				{RawID: "21", NumericID: 21, HasNumber: true, Label: "Large"},
			}},
		},
		Variants: []catalog.Variant{
			{ID: 100, PriceMinorUnits: 1999, Enabled: true, Selection: map[string]int64{"Color": 1, "Size": 20}},
			{ID: 101, PriceMinorUnits: 2499, Enabled: true, Selection: map[string]int64{"Color": 1, "Size": 21}},
			{ID: 102, PriceMinorUnits: 1999, Enabled: false, Selection: map[string]int64{"Color": 2, "Size": 20}},
		},
	}
}

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	fetcher := &stubFetcher{products: map[string]*catalog.Product{
		"sticker-1": stickerProduct(),
	}}

	provider, err := cache.NewMemoryProvider()
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	t.Cleanup(func() { _ = provider.Close() })

	pricer := pricing.NewResolver(pricing.Rates{Surcharges: map[string]int64{"gift_wrap": 499}})
	products := services.NewProductService(fetcher, provider, catalog.NewDictionary(), pricer, "shop-1", time.Minute, nil)
	carts := services.NewCartService(products, cart.NewBuilder(pricer), cart.NewMemoryStore(), pricer, nil)

	h, err := New(Dependencies{
		Config:   &config.Config{Port: "8080"},
		Products: products,
		Carts:    carts,
	})
	if err != nil {
		t.Fatalf("handlers: %v", err)
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods("GET")
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", h.ListProducts).Methods("GET")
	api.HandleFunc("/products/{id}", h.GetProduct).Methods("GET")
	api.HandleFunc("/products/{id}/resolve", h.ResolveVariant).Methods("POST")
	api.HandleFunc("/cart", h.GetCart).Methods("GET")
	api.HandleFunc("/cart", h.ClearCart).Methods("DELETE")
	api.HandleFunc("/cart/items", h.AddCartItem).Methods("POST")
	api.HandleFunc("/cart/items/{lineID}", h.RemoveCartItem).Methods("DELETE")
	api.HandleFunc("/checkout", h.CreateCheckout).Methods("POST")
	return r
}

func doJSON(t *testing.T, router *mux.Router, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for key, values := range header {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doJSON(t, router, "GET", "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetProduct(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doJSON(t, router, "GET", "/api/products/sticker-1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID    string                   `json:"id"`
		Title string                   `json:"title"`
		Axes  []catalog.NormalizedAxis `json:"axes"`
	}
	decodeResponse(t, rec, &resp)
	if resp.ID != "sticker-1" || resp.Title != "Summit Sticker" {
		t.Fatalf("resp = %+v", resp)
	}
	if len(resp.Axes) != 2 {
		t.Fatalf("axes = %+v", resp.Axes)
	}
}

func TestGetProductNotFound(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doJSON(t, router, "GET", "/api/products/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Code string `json:"code"`
	}
	decodeResponse(t, rec, &resp)
	if resp.Code != "product_not_found" {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestResolveVariant(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	t.Run("resolved with price", func(t *testing.T) {
		t.Parallel()

		rec := doJSON(t, router, "POST", "/api/products/sticker-1/resolve",
			`{"selection":{"Color":"Red","Size":"Small"}}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Resolution struct {
				Status string `json:"status"`
			} `json:"resolution"`
			UnitPrice *struct {
				MinorUnits int64   `json:"minor_units"`
				Display    float64 `json:"display"`
			} `json:"unit_price"`
		}
		decodeResponse(t, rec, &resp)
		if resp.Resolution.Status != "resolved" {
			t.Fatalf("status = %q", resp.Resolution.Status)
		}
		if resp.UnitPrice == nil || resp.UnitPrice.MinorUnits != 1999 || resp.UnitPrice.Display != 19.99 {
			t.Fatalf("unit price = %+v", resp.UnitPrice)
		}
	})

	t.Run("incomplete without price", func(t *testing.T) {
		t.Parallel()

		rec := doJSON(t, router, "POST", "/api/products/sticker-1/resolve",
			`{"selection":{"Color":"Red"}}`, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}

		var resp struct {
			Resolution struct {
				Status      string   `json:"status"`
				MissingAxes []string `json:"missing_axes"`
			} `json:"resolution"`
			UnitPrice any `json:"unit_price"`
		}
		decodeResponse(t, rec, &resp)
		if resp.Resolution.Status != "incomplete" {
			t.Fatalf("status = %q", resp.Resolution.Status)
		}
		if resp.UnitPrice != nil {
			t.Fatalf("unexpected price on incomplete resolution")
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		rec := doJSON(t, router, "POST", "/api/products/sticker-1/resolve", `{"selection":`, nil)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		t.Parallel()

		rec := doJSON(t, router, "POST", "/api/products/sticker-1/resolve", `{"choices":{}}`, nil)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestCartFlow(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	// First add mints a cart id and echoes it.
	rec := doJSON(t, router, "POST", "/api/cart/items",
		`{"product_id":"sticker-1","selection":{"Color":"Red","Size":"Small"},"quantity":2,"customization":{"gift_wrap":true}}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	cartID := rec.Header().Get("X-Cart-ID")
	if cartID == "" {
		t.Fatalf("expected a minted cart id header")
	}

	var added struct {
		Item cart.LineItem `json:"item"`
	}
	decodeResponse(t, rec, &added)
	if added.Item.ID != "sticker-1::100::gift_wrap" || added.Item.Quantity != 2 {
		t.Fatalf("item = %+v", added.Item)
	}

	header := http.Header{"X-Cart-ID": []string{cartID}}

	// Cart listing carries totals: 2*1999 + 2*499, zero tax.
	rec = doJSON(t, router, "GET", "/api/cart", "", header)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var contents struct {
		Items  []cart.LineItem `json:"items"`
		Totals pricing.Totals  `json:"totals"`
	}
	decodeResponse(t, rec, &contents)
	if len(contents.Items) != 1 {
		t.Fatalf("items = %+v", contents.Items)
	}
	if contents.Totals.SubtotalMinorUnits != 3998 || contents.Totals.SurchargesMinorUnits != 998 {
		t.Fatalf("totals = %+v", contents.Totals)
	}
	if contents.Totals.TotalMinorUnits != 4996 {
		t.Fatalf("totals = %+v", contents.Totals)
	}

	// Remove the line, then removing again is a 404.
	rec = doJSON(t, router, "DELETE", "/api/cart/items/"+added.Item.ID, "", header)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = doJSON(t, router, "DELETE", "/api/cart/items/"+added.Item.ID, "", header)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}

	// Clearing an empty cart still succeeds.
	rec = doJSON(t, router, "DELETE", "/api/cart", "", header)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAddCartItemRejections(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing product id",
			body:       `{"selection":{"Color":"Red"},"quantity":1}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "validation_error",
		},
		{
			name:       "incomplete selection",
			body:       `{"product_id":"sticker-1","selection":{"Color":"Red"},"quantity":1}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "validation_error",
		},
		{
			name:       "disabled combination",
			body:       `{"product_id":"sticker-1","selection":{"Color":"Blue","Size":"Small"},"quantity":1}`,
			wantStatus: http.StatusConflict,
			wantCode:   "no_match",
		},
		{
			name:       "quantity over cap",
			body:       `{"product_id":"sticker-1","selection":{"Color":"Red","Size":"Small"},"quantity":11}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "validation_error",
		},
		{
			name:       "unknown product",
			body:       `{"product_id":"nope","selection":{"Color":"Red"},"quantity":1}`,
			wantStatus: http.StatusNotFound,
			wantCode:   "product_not_found",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := doJSON(t, router, "POST", "/api/cart/items", tt.body, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}

			var resp struct {
				Code string `json:"code"`
			}
			decodeResponse(t, rec, &resp)
			if resp.Code != tt.wantCode {
				t.Fatalf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestCheckoutDisabled(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doJSON(t, router, "POST", "/api/checkout", "", nil)
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d", rec.Code)
	}
}
