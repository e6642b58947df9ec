package api

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/velora/storefront-api/internal/domain/product"
)

type productResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
}

func toProductResponse(p product.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
	}
}

type variantResponse struct {
	ID              string `json:"id"`
	VariantType     string `json:"variant_type"`
	VariantValue    string `json:"variant_value"`
	SKU             string `json:"sku,omitempty"`
	PriceAdjustment int64  `json:"price_adjustment"`
	StockQuantity   int    `json:"stock_quantity"`
	IsAvailable     bool   `json:"is_available"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": resp})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), r.PathValue("productID"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*p))
}

func (h *Handler) listVariants(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productID")
	if _, err := h.products.GetByID(r.Context(), productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		internalError(w, r, err)
		return
	}

	variants, err := h.products.VariantsByProduct(r.Context(), productID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	resp := make([]variantResponse, len(variants))
	for i, v := range variants {
		resp[i] = variantResponse{
			ID:              v.ID,
			VariantType:     v.VariantType,
			VariantValue:    v.VariantValue,
			SKU:             v.SKU,
			PriceAdjustment: v.PriceAdjustment,
			StockQuantity:   v.StockQuantity,
			IsAvailable:     v.IsAvailable,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"variants": resp})
}
