package api

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/velora/storefront-api/internal/domain/auth"
	"github.com/velora/storefront-api/internal/domain/discount"
)

type validateDiscountRequest struct {
	Code       string `json:"code" validate:"required"`
	OrderTotal int64  `json:"order_total" validate:"gte=0"`
}

type discountApplication struct {
	Code           string `json:"code"`
	Description    string `json:"description,omitempty"`
	Type           string `json:"type"`
	Value          int64  `json:"value"`
	DiscountAmount int64  `json:"discount_amount"`
}

// validateDiscount dry-runs a code against an order total. It never consumes
// a use; only checkout advances the usage counter.
func (h *Handler) validateDiscount(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	var req validateDiscountRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.discounts.FindByCode(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, discount.ErrNotFound) {
			writeError(w, http.StatusNotFound, "invalid discount code")
			return
		}
		internalError(w, r, err)
		return
	}

	amount, err := discount.Evaluate(c, req.OrderTotal, time.Now())
	if err != nil {
		if msg, ok := discountRejection(err); ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid":   true,
		"message": "Discount code applied successfully",
		"discount": discountApplication{
			Code:           c.Code,
			Description:    c.Description,
			Type:           string(c.Type),
			Value:          c.Value,
			DiscountAmount: amount,
		},
	})
}

type createDiscountRequest struct {
	Code              string     `json:"code" validate:"required"`
	Description       string     `json:"description"`
	Type              string     `json:"type" validate:"required,oneof=percentage fixed"`
	Value             int64      `json:"value" validate:"required,gt=0"`
	MinOrderAmount    int64      `json:"min_order_amount" validate:"gte=0"`
	MaxDiscountAmount *int64     `json:"max_discount_amount"`
	UsageLimit        *int       `json:"usage_limit"`
	ValidFrom         *time.Time `json:"valid_from"`
	ValidUntil        *time.Time `json:"valid_until"`
}

type discountResponse struct {
	Code              string     `json:"code"`
	Description       string     `json:"description,omitempty"`
	Type              string     `json:"type"`
	Value             int64      `json:"value"`
	MinOrderAmount    int64      `json:"min_order_amount"`
	MaxDiscountAmount *int64     `json:"max_discount_amount,omitempty"`
	UsageLimit        *int       `json:"usage_limit,omitempty"`
	UsedCount         int        `json:"used_count"`
	ValidFrom         *time.Time `json:"valid_from,omitempty"`
	ValidUntil        *time.Time `json:"valid_until,omitempty"`
	IsActive          bool       `json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
}

func toDiscountResponse(c discount.Code) discountResponse {
	return discountResponse{
		Code:              c.Code,
		Description:       c.Description,
		Type:              string(c.Type),
		Value:             c.Value,
		MinOrderAmount:    c.MinOrderAmount,
		MaxDiscountAmount: c.MaxDiscountAmount,
		UsageLimit:        c.UsageLimit,
		UsedCount:         c.UsedCount,
		ValidFrom:         c.ValidFrom,
		ValidUntil:        c.ValidUntil,
		IsActive:          c.IsActive,
		CreatedAt:         c.CreatedAt,
	}
}

func (h *Handler) createDiscount(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	var req createDiscountRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Type == string(discount.TypePercentage) && req.Value > 100 {
		writeError(w, http.StatusBadRequest, "percentage value cannot exceed 100")
		return
	}

	c := &discount.Code{
		Code:              req.Code,
		Description:       req.Description,
		Type:              discount.Type(req.Type),
		Value:             req.Value,
		MinOrderAmount:    req.MinOrderAmount,
		MaxDiscountAmount: req.MaxDiscountAmount,
		UsageLimit:        req.UsageLimit,
		ValidFrom:         req.ValidFrom,
		ValidUntil:        req.ValidUntil,
		IsActive:          true,
	}
	if err := h.discounts.Create(r.Context(), c); err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDiscountResponse(*c))
}

func (h *Handler) listDiscounts(w http.ResponseWriter, r *http.Request, _ auth.Identity) {
	codes, err := h.discounts.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	resp := make([]discountResponse, len(codes))
	for i, c := range codes {
		resp[i] = toDiscountResponse(c)
	}
	writeJSON(w, http.StatusOK, map[string]any{"discounts": resp})
}
