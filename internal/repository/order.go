package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velora/storefront-api/internal/domain/cart"
	"github.com/velora/storefront-api/internal/domain/discount"
	"github.com/velora/storefront-api/internal/domain/order"
)

const (
	orderColumns = `id, user_id, subtotal, total, status, shipping_address,
		payment_method, payment_status, COALESCE(discount_code, ''), discount_amount,
		created_at, updated_at`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2`

	// The empty user skips the ownership check for administrative callers.
	getOrderForUpdateSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE id = $1 AND ($2 = '' OR user_id = $2) FOR UPDATE`

	listOrdersSQL = `SELECT o.id, o.user_id, o.subtotal, o.total, o.status, o.shipping_address,
		o.payment_method, o.payment_status, COALESCE(o.discount_code, ''), o.discount_amount,
		o.created_at, o.updated_at, COUNT(oi.id)::int
		FROM orders o LEFT JOIN order_items oi ON oi.order_id = o.id
		WHERE o.user_id = $1
		GROUP BY o.id
		ORDER BY o.created_at DESC`

	insertOrderSQL = `INSERT INTO orders (id, user_id, subtotal, total, status,
		shipping_address, payment_method, payment_status, discount_code, discount_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10)
		RETURNING created_at`

	setOrderStatusSQL = `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`

	listOrderItemsSQL = `SELECT order_id, product_id, COALESCE(variant_id, ''), quantity, price
		FROM order_items WHERE order_id = $1 ORDER BY id`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, product_id, variant_id, quantity, price)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)`

	listTrackingSQL = `SELECT order_id, status, message, COALESCE(tracking_number, ''),
		COALESCE(carrier, ''), COALESCE(location, ''), created_at
		FROM order_tracking WHERE order_id = $1 ORDER BY created_at, id`

	insertTrackingSQL = `INSERT INTO order_tracking (order_id, status, message,
		tracking_number, carrier, location)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))`

	// Guarded decrements. The WHERE clause makes overselling impossible: a
	// transaction that would push the counter negative matches zero rows and
	// the caller sees a false reservation instead.
	reserveProductStockSQL = `UPDATE products SET stock = stock - $2
		WHERE id = $1 AND stock >= $2`
	reserveVariantStockSQL = `UPDATE product_variants SET stock_quantity = stock_quantity - $2
		WHERE id = $1 AND stock_quantity >= $2`

	releaseProductStockSQL = `UPDATE products SET stock = stock + $2 WHERE id = $1`
	releaseVariantStockSQL = `UPDATE product_variants SET stock_quantity = stock_quantity + $2
		WHERE id = $1`

	productStockSQL = `SELECT stock FROM products WHERE id = $1`
	variantStockSQL = `SELECT stock_quantity FROM product_variants WHERE id = $1`

	// Conditional redeem, same shape as the stock guard.
	redeemDiscountSQL = `UPDATE discount_codes SET used_count = used_count + 1
		WHERE UPPER(code) = UPPER($1)
		AND (usage_limit IS NULL OR used_count < usage_limit)`
)

// querier is the subset of pgx shared by pgxpool.Pool and pgx.Tx, letting the
// read helpers serve both the pool-backed store and the transaction view.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ order.Store = (*OrderStore)(nil)
	_ order.Tx    = (*orderTx)(nil)
)

// OrderStore implements order.Store backed by PostgreSQL.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore returns an OrderStore that uses the given pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// InTx runs fn inside a single database transaction. Any error from fn rolls
// the transaction back and is returned unchanged.
func (s *OrderStore) InTx(ctx context.Context, fn func(tx order.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&orderTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetOrder returns an order scoped to its owner.
func (s *OrderStore) GetOrder(ctx context.Context, orderID, userID string) (*order.Order, error) {
	return getOrderRow(ctx, s.pool, getOrderSQL, orderID, userID)
}

// ListOrders returns the user's orders, newest first, with item counts.
func (s *OrderStore) ListOrders(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := s.pool.Query(ctx, listOrdersSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrderWithCount)
}

// ItemsByOrder returns the order's line items.
func (s *OrderStore) ItemsByOrder(ctx context.Context, orderID string) ([]order.Item, error) {
	return listOrderItems(ctx, s.pool, orderID)
}

// TrackingByOrder returns the order's tracking timeline in event order.
func (s *OrderStore) TrackingByOrder(ctx context.Context, orderID string) ([]order.TrackingEvent, error) {
	rows, err := s.pool.Query(ctx, listTrackingSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing tracking for order %q: %w", orderID, err)
	}
	return pgx.CollectRows(rows, scanTrackingEvent)
}

// AvailableStock reads the live counter of the reservation target. A missing
// row reads as zero so callers treat retired products as sold out.
func (s *OrderStore) AvailableStock(ctx context.Context, productID, variantID string) (int, error) {
	query, id := productStockSQL, productID
	if variantID != "" {
		query, id = variantStockSQL, variantID
	}

	var stock int
	err := s.pool.QueryRow(ctx, query, id).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading stock for %q: %w", id, err)
	}
	return stock, nil
}

// orderTx is the transaction-scoped view handed to order.Service.
type orderTx struct {
	tx pgx.Tx
}

func (t *orderTx) CartLines(ctx context.Context, userID string) ([]cart.Line, error) {
	rows, err := t.tx.Query(ctx, listCartLinesSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cart lines for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanCartLine)
}

func (t *orderTx) AddressByID(ctx context.Context, id int64, userID string) (*order.ShippingAddress, error) {
	rows, err := t.tx.Query(ctx, getAddressByIDSQL, id, userID)
	if err != nil {
		return nil, fmt.Errorf("getting address %d: %w", id, err)
	}

	a, err := pgx.CollectExactlyOneRow(rows, scanAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrAddressNotFound
		}
		return nil, fmt.Errorf("getting address %d: %w", id, err)
	}

	return &order.ShippingAddress{
		FullName:     a.FullName,
		Phone:        a.Phone,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
	}, nil
}

func (t *orderTx) DiscountByCode(ctx context.Context, code string) (*discount.Code, error) {
	rows, err := t.tx.Query(ctx, findDiscountByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding discount code %q: %w", code, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanDiscountCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrNotFound
		}
		return nil, fmt.Errorf("finding discount code %q: %w", code, err)
	}
	return &c, nil
}

func (t *orderTx) InsertOrder(ctx context.Context, o *order.Order) (time.Time, error) {
	addrJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return time.Time{}, fmt.Errorf("marshaling shipping address: %w", err)
	}

	var createdAt time.Time
	err = t.tx.QueryRow(ctx, insertOrderSQL,
		o.ID, o.UserID, o.Subtotal, o.Total, string(o.Status),
		addrJSON, o.PaymentMethod, o.PaymentStatus, o.DiscountCode, o.DiscountAmount,
	).Scan(&createdAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return createdAt, nil
}

func (t *orderTx) InsertItem(ctx context.Context, it *order.Item) error {
	_, err := t.tx.Exec(ctx, insertOrderItemSQL,
		it.OrderID, it.ProductID, it.VariantID, it.Quantity, it.Price,
	)
	if err != nil {
		return fmt.Errorf("creating order item for product %q: %w", it.ProductID, err)
	}
	return nil
}

func (t *orderTx) InsertTracking(ctx context.Context, ev *order.TrackingEvent) error {
	_, err := t.tx.Exec(ctx, insertTrackingSQL,
		ev.OrderID, ev.Status, ev.Message,
		ev.TrackingNumber, ev.Carrier, ev.Location,
	)
	if err != nil {
		return fmt.Errorf("creating tracking event for order %q: %w", ev.OrderID, err)
	}
	return nil
}

func (t *orderTx) ReserveStock(ctx context.Context, productID, variantID string, quantity int) (bool, error) {
	query, id := reserveProductStockSQL, productID
	if variantID != "" {
		query, id = reserveVariantStockSQL, variantID
	}

	tag, err := t.tx.Exec(ctx, query, id, quantity)
	if err != nil {
		return false, fmt.Errorf("reserving %d of %q: %w", quantity, id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *orderTx) ReleaseStock(ctx context.Context, productID, variantID string, quantity int) error {
	query, id := releaseProductStockSQL, productID
	if variantID != "" {
		query, id = releaseVariantStockSQL, variantID
	}

	if _, err := t.tx.Exec(ctx, query, id, quantity); err != nil {
		return fmt.Errorf("releasing %d of %q: %w", quantity, id, err)
	}
	return nil
}

func (t *orderTx) RedeemDiscount(ctx context.Context, code string) (bool, error) {
	tag, err := t.tx.Exec(ctx, redeemDiscountSQL, code)
	if err != nil {
		return false, fmt.Errorf("redeeming discount code %q: %w", code, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *orderTx) ClearCart(ctx context.Context, userID string) error {
	if _, err := t.tx.Exec(ctx, clearCartSQL, userID); err != nil {
		return fmt.Errorf("clearing cart for user %q: %w", userID, err)
	}
	return nil
}

func (t *orderTx) OrderForUpdate(ctx context.Context, orderID, userID string) (*order.Order, error) {
	return getOrderRow(ctx, t.tx, getOrderForUpdateSQL, orderID, userID)
}

func (t *orderTx) ItemsByOrder(ctx context.Context, orderID string) ([]order.Item, error) {
	return listOrderItems(ctx, t.tx, orderID)
}

func (t *orderTx) SetStatus(ctx context.Context, orderID string, status order.Status) error {
	tag, err := t.tx.Exec(ctx, setOrderStatusSQL, orderID, string(status))
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func getOrderRow(ctx context.Context, q querier, query, orderID, userID string) (*order.Order, error) {
	rows, err := q.Query(ctx, query, orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", orderID, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", orderID, err)
	}
	return &o, nil
}

func listOrderItems(ctx context.Context, q querier, orderID string) ([]order.Item, error) {
	rows, err := q.Query(ctx, listOrderItemsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing items of order %q: %w", orderID, err)
	}
	return pgx.CollectRows(rows, scanOrderItem)
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o        order.Order
		status   string
		addrJSON []byte
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.Subtotal, &o.Total, &status, &addrJSON,
		&o.PaymentMethod, &o.PaymentStatus, &o.DiscountCode, &o.DiscountAmount,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}
	o.Status = order.Status(status)
	if err := json.Unmarshal(addrJSON, &o.ShippingAddress); err != nil {
		return o, fmt.Errorf("unmarshaling shipping address of order %q: %w", o.ID, err)
	}
	return o, nil
}

func scanOrderWithCount(row pgx.CollectableRow) (order.Order, error) {
	var (
		o        order.Order
		status   string
		addrJSON []byte
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.Subtotal, &o.Total, &status, &addrJSON,
		&o.PaymentMethod, &o.PaymentStatus, &o.DiscountCode, &o.DiscountAmount,
		&o.CreatedAt, &o.UpdatedAt, &o.ItemCount,
	)
	if err != nil {
		return o, err
	}
	o.Status = order.Status(status)
	if err := json.Unmarshal(addrJSON, &o.ShippingAddress); err != nil {
		return o, fmt.Errorf("unmarshaling shipping address of order %q: %w", o.ID, err)
	}
	return o, nil
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var it order.Item
	err := row.Scan(&it.OrderID, &it.ProductID, &it.VariantID, &it.Quantity, &it.Price)
	return it, err
}

func scanTrackingEvent(row pgx.CollectableRow) (order.TrackingEvent, error) {
	var ev order.TrackingEvent
	err := row.Scan(
		&ev.OrderID, &ev.Status, &ev.Message,
		&ev.TrackingNumber, &ev.Carrier, &ev.Location, &ev.CreatedAt,
	)
	return ev, err
}
