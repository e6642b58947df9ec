//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/product")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	list := decodeJSON[productListResponse](t, resp)
	if len(list.Products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(list.Products))
	}
}

func TestListProducts_Fields(t *testing.T) {
	resp := doGet(t, "/api/product")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	list := decodeJSON[productListResponse](t, resp)

	var desk *productResponse
	for i := range list.Products {
		if list.Products[i].ID == "prod-walnut-desk" {
			desk = &list.Products[i]
			break
		}
	}

	if desk == nil {
		t.Fatal("product prod-walnut-desk not found")
	}
	if desk.Name != "Walnut Standing Desk" {
		t.Errorf("name: got %q, want %q", desk.Name, "Walnut Standing Desk")
	}
	if desk.Price != 45000 {
		t.Errorf("price: got %d, want 45000", desk.Price)
	}
	if desk.Category != "furniture" {
		t.Errorf("category: got %q, want %q", desk.Category, "furniture")
	}
	if desk.Stock != 12 {
		t.Errorf("stock: got %d, want 12", desk.Stock)
	}
	if desk.Description == "" {
		t.Error("description is empty")
	}
}

func TestGetProduct(t *testing.T) {
	resp := doGet(t, "/api/product/prod-brass-lamp")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	product := decodeJSON[productResponse](t, resp)
	if product.ID != "prod-brass-lamp" {
		t.Errorf("id: got %q, want %q", product.ID, "prod-brass-lamp")
	}
	if product.Name != "Brass Desk Lamp" {
		t.Errorf("name: got %q, want %q", product.Name, "Brass Desk Lamp")
	}
	if product.Price != 12000 {
		t.Errorf("price: got %d, want 12000", product.Price)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/product/prod-nonexistent")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Error != "product not found" {
		t.Errorf("error: got %q, want %q", errResp.Error, "product not found")
	}
}

func TestListVariants(t *testing.T) {
	resp := doGet(t, "/api/product/prod-walnut-desk/variants")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	list := decodeJSON[variantListResponse](t, resp)
	if len(list.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(list.Variants))
	}

	var wide *variantResponse
	for i := range list.Variants {
		if list.Variants[i].ID == "var-desk-160" {
			wide = &list.Variants[i]
			break
		}
	}

	if wide == nil {
		t.Fatal("variant var-desk-160 not found")
	}
	if wide.PriceAdjustment != 8000 {
		t.Errorf("price_adjustment: got %d, want 8000", wide.PriceAdjustment)
	}
	if wide.VariantType != "width" || wide.VariantValue != "160cm" {
		t.Errorf("variant: got %s=%s, want width=160cm", wide.VariantType, wide.VariantValue)
	}
	if !wide.IsAvailable {
		t.Error("variant should be available")
	}
}

func TestListVariants_ProductNotFound(t *testing.T) {
	resp := doGet(t, "/api/product/prod-nonexistent/variants")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

// The merino tee has zero product-level stock but in-stock variants; the
// product itself still lists, and its variants report their own stock.
func TestVariantStock_IndependentOfProduct(t *testing.T) {
	resp := doGet(t, "/api/product/prod-merino-tee")
	defer resp.Body.Close()

	product := decodeJSON[productResponse](t, resp)
	if product.Stock != 0 {
		t.Errorf("product stock: got %d, want 0", product.Stock)
	}

	vresp := doGet(t, "/api/product/prod-merino-tee/variants")
	defer vresp.Body.Close()

	list := decodeJSON[variantListResponse](t, vresp)
	for _, v := range list.Variants {
		if v.StockQuantity == 0 {
			t.Errorf("variant %s has zero stock", v.ID)
		}
	}
}
