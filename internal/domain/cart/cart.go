// Package cart holds the mutable pre-checkout state: one line per
// (user, product, variant) tuple, merged on repeated adds and destroyed by a
// successful checkout.
package cart

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrLineNotFound is returned when the targeted cart line does not exist.
var ErrLineNotFound = errors.New("item not in cart")

// Line is a cart row joined with the live product and variant state it
// references. VariantID is empty for lines without a variant. Available is
// the live stock of the reservation target: the variant's counter when the
// line has a variant, the product's otherwise.
type Line struct {
	ProductID       string
	VariantID       string
	ProductName     string
	Quantity        int
	BasePrice       int64
	PriceAdjustment int64
	Available       int
}

// HasVariant reports whether the line targets a product variant.
func (l Line) HasVariant() bool { return l.VariantID != "" }

// EffectiveUnitPrice resolves the line's unit price: base price plus the
// variant's signed adjustment, in minor currency units. The adjustment is
// zero for lines without a variant.
func (l Line) EffectiveUnitPrice() int64 { return l.BasePrice + l.PriceAdjustment }

// Subtotal returns the line price times quantity.
func (l Line) Subtotal() int64 { return l.EffectiveUnitPrice() * int64(l.Quantity) }

// Repository defines persistence operations for cart lines. An empty
// variantID addresses the variant-less line of a product.
type Repository interface {
	Lines(ctx context.Context, userID string) ([]Line, error)
	Upsert(ctx context.Context, userID, productID, variantID string, quantity int) error
	SetQuantity(ctx context.Context, userID, productID, variantID string, quantity int) error
	Remove(ctx context.Context, userID, productID, variantID string) error
	Clear(ctx context.Context, userID string) error
}
