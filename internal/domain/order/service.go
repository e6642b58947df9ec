package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/velora/storefront-api/internal/domain/cart"
	"github.com/velora/storefront-api/internal/domain/discount"
)

// CheckoutRequest holds the input for placing an order. Exactly one of
// ShippingAddress and ShippingAddressID must be set; the latter references a
// saved address that is snapshotted into the order.
type CheckoutRequest struct {
	ShippingAddress   *ShippingAddress
	ShippingAddressID int64
	PaymentMethod     string
	DiscountCode      string
}

// Receipt is the result of a committed checkout.
type Receipt struct {
	OrderID        string
	Subtotal       int64
	DiscountAmount int64
	Total          int64
	CreatedAt      time.Time
}

// TrackingDetails carries the optional fields of an administrative status
// update's tracking event.
type TrackingDetails struct {
	Message        string
	TrackingNumber string
	Carrier        string
	Location       string
}

// UnavailableItem names a reorder line that could not be re-added, with the
// quantity currently available.
type UnavailableItem struct {
	ProductID string
	Available int
}

// ReorderResult reports the partial outcome of a reorder.
type ReorderResult struct {
	AddedCount  int
	Unavailable []UnavailableItem
}

// Service orchestrates checkout, lifecycle transitions, and reordering over
// a Store and the cart repository.
type Service struct {
	store Store
	carts cart.Repository
	now   func() time.Time
}

// NewService creates an order Service.
func NewService(store Store, carts cart.Repository) *Service {
	return &Service{store: store, carts: carts, now: time.Now}
}

// Checkout converts the user's cart into an order inside one transaction:
// load lines, pre-check stock, price, evaluate the discount, insert the order
// with its items and initial tracking event, reserve stock per line, redeem
// the discount, and clear the cart. Any failure rolls the whole transaction
// back; no partial order is ever visible.
func (s *Service) Checkout(ctx context.Context, userID string, req CheckoutRequest) (*Receipt, error) {
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "COD"
	}

	var receipt *Receipt
	err := s.store.InTx(ctx, func(tx Tx) error {
		lines, err := tx.CartLines(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "load cart")
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		addr := req.ShippingAddress
		if addr == nil {
			addr, err = tx.AddressByID(ctx, req.ShippingAddressID, userID)
			if err != nil {
				return err
			}
		}

		// Pre-check against the live counters before any mutation. The
		// guarded decrement below remains the authoritative check; this pass
		// exists to surface the exact available quantity to the caller.
		var subtotal int64
		for _, line := range lines {
			if line.Available < line.Quantity {
				return &InsufficientStockError{
					ProductID:   line.ProductID,
					ProductName: line.ProductName,
					Available:   line.Available,
					Requested:   line.Quantity,
				}
			}
			subtotal += line.Subtotal()
		}

		var (
			discountAmount int64
			discountCode   string
		)
		if req.DiscountCode != "" {
			code, err := tx.DiscountByCode(ctx, req.DiscountCode)
			if err != nil {
				return err
			}
			discountAmount, err = discount.Evaluate(code, subtotal, s.now())
			if err != nil {
				return err
			}
			discountCode = code.Code
		}

		o := &Order{
			ID:              uuid.New().String(),
			UserID:          userID,
			Subtotal:        subtotal,
			Total:           subtotal - discountAmount,
			Status:          StatusPlaced,
			ShippingAddress: *addr,
			PaymentMethod:   paymentMethod,
			PaymentStatus:   "PENDING",
			DiscountCode:    discountCode,
			DiscountAmount:  discountAmount,
		}
		createdAt, err := tx.InsertOrder(ctx, o)
		if err != nil {
			return errors.Wrap(err, "insert order")
		}

		if err := tx.InsertTracking(ctx, &TrackingEvent{
			OrderID: o.ID,
			Status:  "ordered",
			Message: "Order placed",
		}); err != nil {
			return errors.Wrap(err, "insert tracking")
		}

		for _, line := range lines {
			if err := tx.InsertItem(ctx, &Item{
				OrderID:   o.ID,
				ProductID: line.ProductID,
				VariantID: line.VariantID,
				Quantity:  line.Quantity,
				Price:     line.EffectiveUnitPrice(),
			}); err != nil {
				return errors.Wrap(err, "insert order item")
			}

			// The decrement carries its own stock >= qty guard, so a race
			// that slipped past the pre-check surfaces here and aborts.
			ok, err := tx.ReserveStock(ctx, line.ProductID, line.VariantID, line.Quantity)
			if err != nil {
				return errors.Wrap(err, "reserve stock")
			}
			if !ok {
				return &InsufficientStockError{
					ProductID:   line.ProductID,
					ProductName: line.ProductName,
					Available:   line.Available,
					Requested:   line.Quantity,
				}
			}
		}

		if discountCode != "" {
			// Conditional increment mirrors the stock guard: two concurrent
			// redemptions of the last allowed use cannot both commit.
			ok, err := tx.RedeemDiscount(ctx, discountCode)
			if err != nil {
				return errors.Wrap(err, "redeem discount")
			}
			if !ok {
				return discount.ErrUsageLimitReached
			}
		}

		if err := tx.ClearCart(ctx, userID); err != nil {
			return errors.Wrap(err, "clear cart")
		}

		receipt = &Receipt{
			OrderID:        o.ID,
			Subtotal:       subtotal,
			DiscountAmount: discountAmount,
			Total:          o.Total,
			CreatedAt:      createdAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// Cancel cancels the caller's order. Only orders still in PLACED can be
// cancelled; the transaction restores stock for every item and appends a
// tracking event. A concurrent status change wins by committing first, in
// which case the row lock makes this call observe it and fail closed.
func (s *Service) Cancel(ctx context.Context, orderID, userID string) error {
	return s.store.InTx(ctx, func(tx Tx) error {
		o, err := tx.OrderForUpdate(ctx, orderID, userID)
		if err != nil {
			return err
		}
		if o.Status != StatusPlaced {
			return &InvalidTransitionError{Current: o.Status, Next: StatusCancelled}
		}

		items, err := tx.ItemsByOrder(ctx, orderID)
		if err != nil {
			return errors.Wrap(err, "load order items")
		}
		for _, it := range items {
			if err := tx.ReleaseStock(ctx, it.ProductID, it.VariantID, it.Quantity); err != nil {
				return errors.Wrap(err, "release stock")
			}
		}

		if err := tx.SetStatus(ctx, orderID, StatusCancelled); err != nil {
			return errors.Wrap(err, "set status")
		}
		return tx.InsertTracking(ctx, &TrackingEvent{
			OrderID: orderID,
			Status:  "cancelled",
			Message: "Order cancelled by customer",
		})
	})
}

// AdvanceStatus is the administrative transition: it validates the move
// against the lifecycle graph, sets the status, and appends a tracking event
// with the supplied details. It never moves stock.
func (s *Service) AdvanceStatus(ctx context.Context, orderID string, next Status, details TrackingDetails) error {
	if !next.Valid() {
		return ErrInvalidStatus
	}
	return s.store.InTx(ctx, func(tx Tx) error {
		o, err := tx.OrderForUpdate(ctx, orderID, "")
		if err != nil {
			return err
		}
		if !o.Status.CanTransitionTo(next) {
			return &InvalidTransitionError{Current: o.Status, Next: next}
		}

		if err := tx.SetStatus(ctx, orderID, next); err != nil {
			return errors.Wrap(err, "set status")
		}

		message := details.Message
		if message == "" {
			message = "Order status updated to " + string(next)
		}
		return tx.InsertTracking(ctx, &TrackingEvent{
			OrderID:        orderID,
			Status:         strings.ToLower(string(next)),
			Message:        message,
			TrackingNumber: details.TrackingNumber,
			Carrier:        details.Carrier,
			Location:       details.Location,
		})
	})
}

// Reorder rebuilds cart lines from a past order's items. Each line is checked
// against live stock independently: lines that fit are upsert-merged into the
// cart, lines that do not are reported with the quantity currently available.
// Partial success is the intended semantics; there is no rollback.
func (s *Service) Reorder(ctx context.Context, orderID, userID string) (*ReorderResult, error) {
	if _, err := s.store.GetOrder(ctx, orderID, userID); err != nil {
		return nil, err
	}
	items, err := s.store.ItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "load order items")
	}

	result := &ReorderResult{}
	for _, it := range items {
		available, err := s.store.AvailableStock(ctx, it.ProductID, it.VariantID)
		if err != nil {
			return nil, errors.Wrapf(err, "check stock for product %s", it.ProductID)
		}
		if available < it.Quantity {
			result.Unavailable = append(result.Unavailable, UnavailableItem{
				ProductID: it.ProductID,
				Available: available,
			})
			continue
		}
		if err := s.carts.Upsert(ctx, userID, it.ProductID, it.VariantID, it.Quantity); err != nil {
			return nil, errors.Wrapf(err, "add product %s to cart", it.ProductID)
		}
		result.AddedCount++
	}
	return result, nil
}

// Get returns the caller's order with its items.
func (s *Service) Get(ctx context.Context, orderID, userID string) (*Order, []Item, error) {
	o, err := s.store.GetOrder(ctx, orderID, userID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.store.ItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load order items")
	}
	return o, items, nil
}

// List returns the caller's orders, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Order, error) {
	return s.store.ListOrders(ctx, userID)
}

// Tracking returns the append-only timeline of the caller's order.
func (s *Service) Tracking(ctx context.Context, orderID, userID string) ([]TrackingEvent, error) {
	if _, err := s.store.GetOrder(ctx, orderID, userID); err != nil {
		return nil, err
	}
	return s.store.TrackingByOrder(ctx, orderID)
}
