package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/printforgeapp/printforge/internal/catalog"
	"github.com/printforgeapp/printforge/internal/pricing"
	"github.com/printforgeapp/printforge/internal/services"
)

type productResponse struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description,omitempty"`
	Images      []string                 `json:"images,omitempty"`
	Axes        []catalog.NormalizedAxis `json:"axes"`
	Warnings    []catalog.Warning        `json:"warnings,omitempty"`
}

type resolveRequest struct {
	Selection map[string]string `json:"selection"`
}

type resolveResponse struct {
	Resolution catalog.Resolution `json:"resolution"`
	UnitPrice  *pricing.UnitPrice `json:"unit_price,omitempty"`
}

// ListProducts returns one page of normalized product views.
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)

	views, err := h.products.List(ctx, page, limit)
	if err != nil {
		h.writeEngineError(ctx, w, err)
		return
	}

	payload := make([]productResponse, 0, len(views))
	for _, view := range views {
		payload = append(payload, toProductResponse(view))
	}
	h.writeJSON(ctx, w, http.StatusOK, map[string]any{"products": payload})
}

// GetProduct returns a single product with its normalized option axes.
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := mux.Vars(r)["id"]

	view, err := h.products.GetView(ctx, productID)
	if err != nil {
		h.writeEngineError(ctx, w, err)
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, toProductResponse(view))
}

// ResolveVariant matches a (possibly partial) selection against a product's
// variants. The response always carries the resolution status; a price is
// present only for a resolved variant.
func (h *Handlers) ResolveVariant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := mux.Vars(r)["id"]

	var req resolveRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.writeEngineError(ctx, w, err)
		return
	}

	result, err := h.products.Resolve(ctx, productID, catalog.Selection(req.Selection))
	if err != nil {
		h.writeEngineError(ctx, w, err)
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, resolveResponse{
		Resolution: result.Resolution,
		UnitPrice:  result.UnitPrice,
	})
}

func toProductResponse(view *services.ProductView) productResponse {
	resp := productResponse{
		ID:          view.Product.ID,
		Title:       view.Product.Title,
		Description: view.Product.Description,
		Axes:        view.Axes,
		Warnings:    view.Warnings,
	}
	for _, img := range view.Product.Images {
		resp.Images = append(resp.Images, img.URL)
	}
	return resp
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
