package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/velora/storefront-api/internal/domain/auth"
	"github.com/velora/storefront-api/internal/domain/discount"
	"github.com/velora/storefront-api/internal/domain/order"
)

type shippingAddressRequest struct {
	FullName     string `json:"full_name" validate:"required"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1" validate:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code" validate:"required"`
	Country      string `json:"country" validate:"required"`
}

func (a *shippingAddressRequest) domain() *order.ShippingAddress {
	return &order.ShippingAddress{
		FullName:     a.FullName,
		Phone:        a.Phone,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
	}
}

type checkoutRequest struct {
	ShippingAddress   *shippingAddressRequest `json:"shipping_address"`
	ShippingAddressID int64                   `json:"shipping_address_id"`
	PaymentMethod     string                  `json:"payment_method"`
	DiscountCode      string                  `json:"discount_code"`
}

type checkoutResponse struct {
	OrderID        string    `json:"order_id"`
	Subtotal       int64     `json:"subtotal"`
	DiscountAmount int64     `json:"discount_amount"`
	Total          int64     `json:"total"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req checkoutRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.ShippingAddress == nil && req.ShippingAddressID == 0 {
		writeError(w, http.StatusBadRequest, "valid shipping address is required")
		return
	}

	domainReq := order.CheckoutRequest{
		ShippingAddressID: req.ShippingAddressID,
		PaymentMethod:     req.PaymentMethod,
		DiscountCode:      req.DiscountCode,
	}
	if req.ShippingAddress != nil {
		domainReq.ShippingAddress = req.ShippingAddress.domain()
	}

	receipt, err := h.orders.Checkout(r.Context(), id.UserID, domainReq)
	if err != nil {
		h.orderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, checkoutResponse{
		OrderID:        receipt.OrderID,
		Subtotal:       receipt.Subtotal,
		DiscountAmount: receipt.DiscountAmount,
		Total:          receipt.Total,
		Message:        "Order placed successfully",
		CreatedAt:      receipt.CreatedAt,
	})
}

type orderSummary struct {
	ID             string                `json:"id"`
	Subtotal       int64                 `json:"subtotal"`
	Total          int64                 `json:"total"`
	Status         string                `json:"status"`
	PaymentMethod  string                `json:"payment_method"`
	PaymentStatus  string                `json:"payment_status"`
	DiscountCode   string                `json:"discount_code,omitempty"`
	DiscountAmount int64                 `json:"discount_amount"`
	Address        order.ShippingAddress `json:"shipping_address"`
	ItemCount      int                   `json:"item_count"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

func toOrderSummary(o order.Order) orderSummary {
	return orderSummary{
		ID:             o.ID,
		Subtotal:       o.Subtotal,
		Total:          o.Total,
		Status:         string(o.Status),
		PaymentMethod:  o.PaymentMethod,
		PaymentStatus:  o.PaymentStatus,
		DiscountCode:   o.DiscountCode,
		DiscountAmount: o.DiscountAmount,
		Address:        o.ShippingAddress,
		ItemCount:      o.ItemCount,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	list, err := h.orders.List(r.Context(), id.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	summaries := make([]orderSummary, len(list))
	for i, o := range list {
		summaries[i] = toOrderSummary(o)
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": summaries})
}

type orderItemResponse struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

type orderDetails struct {
	orderSummary

	Items []orderItemResponse `json:"items"`
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	o, items, err := h.orders.Get(r.Context(), r.PathValue("orderID"), id.UserID)
	if err != nil {
		h.orderError(w, r, err)
		return
	}

	details := orderDetails{
		orderSummary: toOrderSummary(*o),
		Items:        make([]orderItemResponse, len(items)),
	}
	details.ItemCount = len(items)
	for i, it := range items {
		details.Items[i] = orderItemResponse{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		}
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	if err := h.orders.Cancel(r.Context(), r.PathValue("orderID"), id.UserID); err != nil {
		h.orderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Order cancelled successfully"})
}

type updateStatusRequest struct {
	Status         string `json:"status" validate:"required"`
	Message        string `json:"message"`
	TrackingNumber string `json:"tracking_number"`
	Carrier        string `json:"carrier"`
	Location       string `json:"location"`
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	var req updateStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	next := order.Status(strings.ToUpper(req.Status))
	err := h.orders.AdvanceStatus(r.Context(), r.PathValue("orderID"), next, order.TrackingDetails{
		Message:        req.Message,
		TrackingNumber: req.TrackingNumber,
		Carrier:        req.Carrier,
		Location:       req.Location,
	})
	if err != nil {
		h.orderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Order status updated to " + string(next),
	})
}

type unavailableItemResponse struct {
	ProductID string `json:"product_id"`
	Available int    `json:"available"`
}

type reorderResponse struct {
	Message     string                    `json:"message"`
	AddedCount  int                       `json:"added_count"`
	Unavailable []unavailableItemResponse `json:"unavailable,omitempty"`
}

func (h *Handler) reorder(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	result, err := h.orders.Reorder(r.Context(), r.PathValue("orderID"), id.UserID)
	if err != nil {
		h.orderError(w, r, err)
		return
	}

	resp := reorderResponse{
		Message:    "Items added to cart",
		AddedCount: result.AddedCount,
	}
	for _, u := range result.Unavailable {
		resp.Unavailable = append(resp.Unavailable, unavailableItemResponse{
			ProductID: u.ProductID,
			Available: u.Available,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type trackingEventResponse struct {
	Status         string    `json:"status"`
	Message        string    `json:"message"`
	TrackingNumber string    `json:"tracking_number,omitempty"`
	Carrier        string    `json:"carrier,omitempty"`
	Location       string    `json:"location,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (h *Handler) getTracking(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	orderID := r.PathValue("orderID")
	events, err := h.orders.Tracking(r.Context(), orderID, id.UserID)
	if err != nil {
		h.orderError(w, r, err)
		return
	}

	resp := make([]trackingEventResponse, len(events))
	for i, ev := range events {
		resp[i] = trackingEventResponse{
			Status:         ev.Status,
			Message:        ev.Message,
			TrackingNumber: ev.TrackingNumber,
			Carrier:        ev.Carrier,
			Location:       ev.Location,
			CreatedAt:      ev.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order_id": orderID,
		"timeline": resp,
	})
}

// orderError maps domain errors from the order service to HTTP responses.
func (h *Handler) orderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, order.ErrAddressNotFound):
		writeError(w, http.StatusNotFound, "shipping address not found")
	case errors.Is(err, order.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid order status")
	default:
		var stockErr *order.InsufficientStockError
		if errors.As(err, &stockErr) {
			writeError(w, http.StatusBadRequest, stockErr.Error())
			return
		}
		var transitionErr *order.InvalidTransitionError
		if errors.As(err, &transitionErr) {
			writeError(w, http.StatusBadRequest, transitionErr.Error())
			return
		}
		if msg, ok := discountRejection(err); ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		internalError(w, r, err)
	}
}

// discountRejection reports whether err is one of the discount rejection
// reasons and returns its client-facing message.
func discountRejection(err error) (string, bool) {
	switch {
	case errors.Is(err, discount.ErrNotFound),
		errors.Is(err, discount.ErrExpired),
		errors.Is(err, discount.ErrNotYetActive),
		errors.Is(err, discount.ErrUsageLimitReached):
		return err.Error(), true
	}
	var minErr *discount.BelowMinimumError
	if errors.As(err, &minErr) {
		return minErr.Error(), true
	}
	return "", false
}
