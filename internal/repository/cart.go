package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velora/storefront-api/internal/domain/cart"
)

const (
	// Lines are joined with the live catalog so callers see current prices
	// and stock, not values captured when the line was added.
	listCartLinesSQL = `SELECT ci.product_id, COALESCE(ci.variant_id, ''), p.name, ci.quantity,
		p.price, COALESCE(v.price_adjustment, 0), COALESCE(v.stock_quantity, p.stock)
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		LEFT JOIN product_variants v ON v.id = ci.variant_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at, ci.id`

	// The conflict target matches the unique line index, so adding the same
	// (product, variant) again merges quantities instead of duplicating.
	upsertCartLineSQL = `INSERT INTO cart_items (user_id, product_id, variant_id, quantity)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		ON CONFLICT (user_id, product_id, COALESCE(variant_id, ''))
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()`

	setCartQuantitySQL = `UPDATE cart_items SET quantity = $4, updated_at = now()
		WHERE user_id = $1 AND product_id = $2 AND COALESCE(variant_id, '') = $3`

	removeCartLineSQL = `DELETE FROM cart_items
		WHERE user_id = $1 AND product_id = $2 AND COALESCE(variant_id, '') = $3`

	clearCartSQL = `DELETE FROM cart_items WHERE user_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Lines returns the user's cart lines in insertion order.
func (r *CartRepository) Lines(ctx context.Context, userID string) ([]cart.Line, error) {
	rows, err := r.pool.Query(ctx, listCartLinesSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cart lines for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanCartLine)
}

// Upsert adds quantity to the (product, variant) line, creating it if absent.
func (r *CartRepository) Upsert(ctx context.Context, userID, productID, variantID string, quantity int) error {
	_, err := r.pool.Exec(ctx, upsertCartLineSQL, userID, productID, variantID, quantity)
	if err != nil {
		return fmt.Errorf("upserting cart line for product %q: %w", productID, err)
	}
	return nil
}

// SetQuantity replaces the quantity of an existing line.
func (r *CartRepository) SetQuantity(ctx context.Context, userID, productID, variantID string, quantity int) error {
	tag, err := r.pool.Exec(ctx, setCartQuantitySQL, userID, productID, variantID, quantity)
	if err != nil {
		return fmt.Errorf("updating cart line for product %q: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

// Remove deletes a single line from the cart.
func (r *CartRepository) Remove(ctx context.Context, userID, productID, variantID string) error {
	tag, err := r.pool.Exec(ctx, removeCartLineSQL, userID, productID, variantID)
	if err != nil {
		return fmt.Errorf("removing cart line for product %q: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

// Clear deletes all of the user's cart lines.
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, clearCartSQL, userID)
	if err != nil {
		return fmt.Errorf("clearing cart for user %q: %w", userID, err)
	}
	return nil
}

func scanCartLine(row pgx.CollectableRow) (cart.Line, error) {
	var l cart.Line
	err := row.Scan(
		&l.ProductID, &l.VariantID, &l.ProductName, &l.Quantity,
		&l.BasePrice, &l.PriceAdjustment, &l.Available,
	)
	return l, err
}
