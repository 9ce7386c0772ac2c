package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/printforgeapp/printforge/internal/cart"
	"github.com/printforgeapp/printforge/internal/catalog"
	"github.com/printforgeapp/printforge/internal/services"
)

// cartIDHeader identifies the caller's cart. Session mechanics live outside
// this service; the header value is an opaque id minted by the caller (or by
// us on first use).
const cartIDHeader = "X-Cart-ID"

type addItemRequest struct {
	ProductID     string            `json:"product_id"`
	Selection     map[string]string `json:"selection"`
	Quantity      int64             `json:"quantity"`
	Customization map[string]bool   `json:"customization,omitempty"`
}

type addItemResponse struct {
	Item       cart.LineItem       `json:"item"`
	Resolution *catalog.Resolution `json:"resolution,omitempty"`
}

// AddCartItem resolves the selection and adds the line item to the cart.
func (h *Handlers) AddCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cartID := h.cartID(w, r)

	var req addItemRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.writeEngineError(ctx, w, err)
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		h.writeEngineError(ctx, w, &cart.ValidationError{Field: "product_id", Reason: "missing"})
		return
	}

	item, resolution, err := h.carts.AddItem(ctx, cartID, services.AddItemInput{
		ProductID:     req.ProductID,
		Selection:     catalog.Selection(req.Selection),
		Quantity:      req.Quantity,
		Customization: req.Customization,
	})
	if err != nil {
		h.writeEngineError(ctx, w, err)
		return
	}

	h.writeJSON(ctx, w, http.StatusCreated, addItemResponse{Item: item, Resolution: resolution})
}

// GetCart lists the cart with its computed totals.
func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cartID := h.cartID(w, r)

	contents, err := h.carts.Contents(ctx, cartID)
	if err != nil {
		h.writeEngineError(ctx, w, err)
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, contents)
}

// RemoveCartItem deletes one line from the cart.
func (h *Handlers) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cartID := h.cartID(w, r)
	lineID := mux.Vars(r)["lineID"]

	if err := h.carts.RemoveItem(ctx, cartID, lineID); err != nil {
		h.writeEngineError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearCart removes every line from the cart.
func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cartID := h.cartID(w, r)

	if err := h.carts.Clear(ctx, cartID); err != nil {
		h.writeEngineError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateCheckout opens a payment session over the cart's totals.
func (h *Handlers) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cartID := h.cartID(w, r)

	if h.checkout == nil {
		h.writeEngineError(ctx, w, services.ErrCheckoutDisabled)
		return
	}

	result, err := h.checkout.CreateSession(ctx, cartID)
	if err != nil {
		h.writeEngineError(ctx, w, err)
		return
	}

	h.writeJSON(ctx, w, http.StatusCreated, result)
}

// cartID reads the caller's cart id header, minting a fresh id when absent.
// The minted id is echoed back so the caller can persist it.
func (h *Handlers) cartID(w http.ResponseWriter, r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(cartIDHeader)); id != "" {
		w.Header().Set(cartIDHeader, id)
		return id
	}
	id := uuid.NewString()
	w.Header().Set(cartIDHeader, id)
	return id
}
