package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"

	"github.com/velora/storefront-api/internal/domain/address"
	"github.com/velora/storefront-api/internal/domain/auth"
)

type addressResponse struct {
	ID           int64     `json:"id"`
	Label        string    `json:"label"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone,omitempty"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 string    `json:"address_line2,omitempty"`
	City         string    `json:"city"`
	State        string    `json:"state,omitempty"`
	PostalCode   string    `json:"postal_code"`
	Country      string    `json:"country"`
	IsDefault    bool      `json:"is_default"`
	CreatedAt    time.Time `json:"created_at"`
}

func toAddressResponse(a address.Address) addressResponse {
	return addressResponse{
		ID:           a.ID,
		Label:        a.Label,
		FullName:     a.FullName,
		Phone:        a.Phone,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
		IsDefault:    a.IsDefault,
		CreatedAt:    a.CreatedAt,
	}
}

func (h *Handler) listAddresses(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	list, err := h.addresses.List(r.Context(), id.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	resp := make([]addressResponse, len(list))
	for i, a := range list {
		resp[i] = toAddressResponse(a)
	}
	writeJSON(w, http.StatusOK, map[string]any{"addresses": resp})
}

type createAddressRequest struct {
	Label        string `json:"label"`
	FullName     string `json:"full_name" validate:"required"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1" validate:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code" validate:"required"`
	Country      string `json:"country" validate:"required"`
	IsDefault    bool   `json:"is_default"`
}

func (h *Handler) createAddress(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req createAddressRequest
	if !h.decode(w, r, &req) {
		return
	}

	a := &address.Address{
		UserID:       id.UserID,
		Label:        req.Label,
		FullName:     req.FullName,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		IsDefault:    req.IsDefault,
	}
	if err := h.addresses.Create(r.Context(), a); err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAddressResponse(*a))
}

func (h *Handler) deleteAddress(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	addressID, err := strconv.ParseInt(r.PathValue("addressID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid address id")
		return
	}

	if err := h.addresses.Delete(r.Context(), addressID, id.UserID); err != nil {
		if errors.Is(err, address.ErrNotFound) {
			writeError(w, http.StatusNotFound, "shipping address not found")
			return
		}
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Address removed"})
}
