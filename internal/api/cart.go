package api

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/velora/storefront-api/internal/domain/auth"
	"github.com/velora/storefront-api/internal/domain/cart"
	"github.com/velora/storefront-api/internal/domain/product"
)

type cartLineResponse struct {
	ProductID   string `json:"product_id"`
	VariantID   string `json:"variant_id,omitempty"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	LineTotal   int64  `json:"line_total"`
	Available   int    `json:"available"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	lines, err := h.carts.Lines(r.Context(), id.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	var subtotal int64
	items := make([]cartLineResponse, len(lines))
	for i, l := range lines {
		items[i] = cartLineResponse{
			ProductID:   l.ProductID,
			VariantID:   l.VariantID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.EffectiveUnitPrice(),
			LineTotal:   l.Subtotal(),
			Available:   l.Available,
		}
		subtotal += l.Subtotal()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":    items,
		"subtotal": subtotal,
	})
}

type cartLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req cartLineRequest
	if !h.decode(w, r, &req) {
		return
	}

	name, ok := h.checkTarget(w, r, req)
	if !ok {
		return
	}

	if err := h.carts.Upsert(r.Context(), id.UserID, req.ProductID, req.VariantID, req.Quantity); err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Added " + name + " to cart"})
}

func (h *Handler) updateCartLine(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req cartLineRequest
	if !h.decode(w, r, &req) {
		return
	}

	if _, ok := h.checkTarget(w, r, req); !ok {
		return
	}

	err := h.carts.SetQuantity(r.Context(), id.UserID, req.ProductID, req.VariantID, req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			writeError(w, http.StatusNotFound, "item not in cart")
			return
		}
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cart updated"})
}

func (h *Handler) removeCartLine(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	productID := r.URL.Query().Get("product_id")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}
	variantID := r.URL.Query().Get("variant_id")

	err := h.carts.Remove(r.Context(), id.UserID, productID, variantID)
	if err != nil {
		if errors.Is(err, cart.ErrLineNotFound) {
			writeError(w, http.StatusNotFound, "item not in cart")
			return
		}
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Removed from cart"})
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	if err := h.carts.Clear(r.Context(), id.UserID); err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}

// checkTarget verifies the product (and variant, when given) exists and has
// enough stock for the requested quantity. Checkout re-verifies inside the
// transaction; this is the early, user-friendly rejection.
func (h *Handler) checkTarget(w http.ResponseWriter, r *http.Request, req cartLineRequest) (string, bool) {
	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return "", false
		}
		internalError(w, r, err)
		return "", false
	}

	available := p.Stock
	if req.VariantID != "" {
		v, err := h.products.GetVariant(r.Context(), req.VariantID)
		if err != nil {
			if errors.Is(err, product.ErrVariantNotFound) {
				writeError(w, http.StatusNotFound, "product variant not found")
				return "", false
			}
			internalError(w, r, err)
			return "", false
		}
		if v.ProductID != req.ProductID || !v.IsAvailable {
			writeError(w, http.StatusNotFound, "product variant not found")
			return "", false
		}
		available = v.StockQuantity
	}

	if available < req.Quantity {
		writeError(w, http.StatusBadRequest, "insufficient stock")
		return "", false
	}
	return p.Name, true
}
