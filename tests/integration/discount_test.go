//go:build integration

package integration

import (
	"net/http"
	"testing"
)

type validateDiscountResponse struct {
	Valid    bool   `json:"valid"`
	Message  string `json:"message"`
	Discount struct {
		Code           string `json:"code"`
		Type           string `json:"type"`
		Value          int64  `json:"value"`
		DiscountAmount int64  `json:"discount_amount"`
	} `json:"discount"`
}

func TestValidateDiscount(t *testing.T) {
	token := customerToken(t, "it-validate")

	resp := doReq(t, http.MethodPost, "/api/discount/validate", token, map[string]any{
		"code": "WELCOME10", "order_total": 20000,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeJSON[validateDiscountResponse](t, resp)
	if !body.Valid {
		t.Error("expected valid=true")
	}
	if body.Discount.DiscountAmount != 2000 {
		t.Errorf("discount_amount: got %d, want 2000", body.Discount.DiscountAmount)
	}
}

func TestValidateDiscount_CaseInsensitive(t *testing.T) {
	token := customerToken(t, "it-validate-ci")

	resp := doReq(t, http.MethodPost, "/api/discount/validate", token, map[string]any{
		"code": "welcome10", "order_total": 10000,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestValidateDiscount_Unknown(t *testing.T) {
	token := customerToken(t, "it-validate-unknown")

	resp := doReq(t, http.MethodPost, "/api/discount/validate", token, map[string]any{
		"code": "NOSUCHCODE", "order_total": 10000,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestValidateDiscount_BelowMinimum(t *testing.T) {
	token := customerToken(t, "it-validate-min")

	// FREESHIP500 requires a 5000 order total.
	resp := doReq(t, http.MethodPost, "/api/discount/validate", token, map[string]any{
		"code": "FREESHIP500", "order_total": 4000,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateDiscount_AdminOnly(t *testing.T) {
	body := map[string]any{
		"code": "ITONLY20", "type": "percentage", "value": 20,
	}

	customerResp := doReq(t, http.MethodPost, "/api/discount", customerToken(t, "it-not-admin"), body)
	if customerResp.StatusCode != http.StatusForbidden {
		t.Fatalf("customer create: expected 403, got %d", customerResp.StatusCode)
	}
	customerResp.Body.Close()

	adminResp := doReq(t, http.MethodPost, "/api/discount", adminToken(t), body)
	defer adminResp.Body.Close()

	if adminResp.StatusCode != http.StatusCreated {
		t.Fatalf("admin create: expected 201, got %d", adminResp.StatusCode)
	}

	// The new code works immediately.
	validateResp := doReq(t, http.MethodPost, "/api/discount/validate", customerToken(t, "it-new-code"), map[string]any{
		"code": "ITONLY20", "order_total": 10000,
	})
	defer validateResp.Body.Close()

	if validateResp.StatusCode != http.StatusOK {
		t.Fatalf("validate new code: expected 200, got %d", validateResp.StatusCode)
	}

	result := decodeJSON[validateDiscountResponse](t, validateResp)
	if result.Discount.DiscountAmount != 2000 {
		t.Errorf("discount_amount: got %d, want 2000", result.Discount.DiscountAmount)
	}
}
