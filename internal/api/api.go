// Package api exposes the storefront over HTTP. Handlers decode and validate
// requests, delegate business logic to the domain layer, and map domain
// errors to status codes.
package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/velora/storefront-api/internal/domain/address"
	"github.com/velora/storefront-api/internal/domain/auth"
	"github.com/velora/storefront-api/internal/domain/cart"
	"github.com/velora/storefront-api/internal/domain/discount"
	"github.com/velora/storefront-api/internal/domain/order"
	"github.com/velora/storefront-api/internal/domain/product"
)

// Handler holds the domain dependencies of every route.
type Handler struct {
	products  product.Repository
	carts     cart.Repository
	orders    *order.Service
	discounts discount.Repository
	addresses address.Repository
	verifier  *auth.Verifier
	validate  *validator.Validate
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products product.Repository,
	carts cart.Repository,
	orders *order.Service,
	discounts discount.Repository,
	addresses address.Repository,
	verifier *auth.Verifier,
) *Handler {
	return &Handler{
		products:  products,
		carts:     carts,
		orders:    orders,
		discounts: discounts,
		addresses: addresses,
		verifier:  verifier,
		validate:  validator.New(),
	}
}

// Routes returns the API route table. Product reads are public; everything
// else requires a bearer token, and admin routes additionally require the
// admin role.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/product", h.listProducts)
	mux.HandleFunc("GET /api/product/{productID}", h.getProduct)
	mux.HandleFunc("GET /api/product/{productID}/variants", h.listVariants)

	mux.HandleFunc("GET /api/cart", h.user(h.getCart))
	mux.HandleFunc("POST /api/cart", h.user(h.addToCart))
	mux.HandleFunc("PUT /api/cart", h.user(h.updateCartLine))
	mux.HandleFunc("DELETE /api/cart", h.user(h.removeCartLine))
	mux.HandleFunc("DELETE /api/cart/all", h.user(h.clearCart))

	mux.HandleFunc("GET /api/orders", h.user(h.listOrders))
	mux.HandleFunc("GET /api/orders/{orderID}", h.user(h.getOrder))
	mux.HandleFunc("POST /api/orders/checkout", h.user(h.checkout))
	mux.HandleFunc("PUT /api/orders/{orderID}/cancel", h.user(h.cancelOrder))
	mux.HandleFunc("PUT /api/orders/{orderID}/status", h.admin(h.updateOrderStatus))
	mux.HandleFunc("POST /api/orders/{orderID}/reorder", h.user(h.reorder))
	mux.HandleFunc("GET /api/orders/{orderID}/tracking", h.user(h.getTracking))

	mux.HandleFunc("POST /api/discount/validate", h.user(h.validateDiscount))
	mux.HandleFunc("POST /api/discount", h.admin(h.createDiscount))
	mux.HandleFunc("GET /api/discount", h.admin(h.listDiscounts))

	mux.HandleFunc("GET /api/addresses", h.user(h.listAddresses))
	mux.HandleFunc("POST /api/addresses", h.user(h.createAddress))
	mux.HandleFunc("DELETE /api/addresses/{addressID}", h.user(h.deleteAddress))

	return mux
}
