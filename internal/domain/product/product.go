package product

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// ErrVariantNotFound is returned when a requested variant does not exist.
var ErrVariantNotFound = errors.New("product variant not found")

// Product represents a catalog item available for purchase. Price is in minor
// currency units (cents). Stock is mutated only through the guarded stock
// operations of the order store, never by read-modify-write.
type Product struct {
	ID          string
	Name        string
	Description string
	Category    string
	Price       int64
	Stock       int
}

// Variant is a purchasable configuration of a product (size, color, ...) with
// its own stock counter and a signed price delta relative to the product.
type Variant struct {
	ID              string
	ProductID       string
	VariantType     string
	VariantValue    string
	SKU             string
	PriceAdjustment int64
	StockQuantity   int
	IsAvailable     bool
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	VariantsByProduct(ctx context.Context, productID string) ([]Variant, error)
	GetVariant(ctx context.Context, id string) (*Variant, error)
}
