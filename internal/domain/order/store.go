package order

import (
	"context"
	"time"

	"github.com/velora/storefront-api/internal/domain/cart"
	"github.com/velora/storefront-api/internal/domain/discount"
)

// Store is the persistence boundary for order operations. InTx runs fn inside
// one database transaction; fn returning an error rolls everything back. The
// remaining methods execute against the pool directly and exist for the
// read paths and the deliberately non-transactional reorder flow.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	GetOrder(ctx context.Context, orderID, userID string) (*Order, error)
	ListOrders(ctx context.Context, userID string) ([]Order, error)
	ItemsByOrder(ctx context.Context, orderID string) ([]Item, error)
	TrackingByOrder(ctx context.Context, orderID string) ([]TrackingEvent, error)
	// AvailableStock reads the live counter of a reservation target: the
	// variant's when variantID is set, the product's otherwise.
	AvailableStock(ctx context.Context, productID, variantID string) (int, error)
}

// Tx is the transaction-scoped view of the store. Stock mutations are the
// guarded single-statement kind: ReserveStock reports false instead of
// decrementing past zero, and RedeemDiscount reports false instead of
// exceeding the code's usage limit.
type Tx interface {
	CartLines(ctx context.Context, userID string) ([]cart.Line, error)
	AddressByID(ctx context.Context, id int64, userID string) (*ShippingAddress, error)
	DiscountByCode(ctx context.Context, code string) (*discount.Code, error)

	InsertOrder(ctx context.Context, o *Order) (time.Time, error)
	InsertItem(ctx context.Context, it *Item) error
	InsertTracking(ctx context.Context, ev *TrackingEvent) error

	ReserveStock(ctx context.Context, productID, variantID string, quantity int) (bool, error)
	ReleaseStock(ctx context.Context, productID, variantID string, quantity int) error
	RedeemDiscount(ctx context.Context, code string) (bool, error)
	ClearCart(ctx context.Context, userID string) error

	// OrderForUpdate loads an order row-locked for the rest of the
	// transaction. userID scopes the lookup to the owner; the empty string
	// skips the ownership check (administrative paths).
	OrderForUpdate(ctx context.Context, orderID, userID string) (*Order, error)
	ItemsByOrder(ctx context.Context, orderID string) ([]Item, error)
	SetStatus(ctx context.Context, orderID string, status Status) error
}
