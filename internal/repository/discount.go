package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velora/storefront-api/internal/domain/discount"
)

const (
	findDiscountByCodeSQL = `SELECT code, description, discount_type, discount_value,
		min_order_amount, max_discount_amount, usage_limit, used_count,
		valid_from, valid_until, is_active, created_at
		FROM discount_codes WHERE UPPER(code) = UPPER($1) AND is_active = TRUE`

	createDiscountSQL = `INSERT INTO discount_codes (code, description, discount_type,
		discount_value, min_order_amount, max_discount_amount, usage_limit,
		valid_from, valid_until, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	listDiscountsSQL = `SELECT code, description, discount_type, discount_value,
		min_order_amount, max_discount_amount, usage_limit, used_count,
		valid_from, valid_until, is_active, created_at
		FROM discount_codes ORDER BY created_at DESC, code`
)

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// FindByCode looks up an active code case-insensitively. Returns
// discount.ErrNotFound when no matching active code exists.
func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (*discount.Code, error) {
	rows, err := r.pool.Query(ctx, findDiscountByCodeSQL, code)
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

// Create stores a new code, upper-casing it for case-insensitive matching.
func (r *DiscountRepository) Create(ctx context.Context, c *discount.Code) error {
	c.Code = strings.ToUpper(c.Code)
	err := r.pool.QueryRow(ctx, createDiscountSQL,
		c.Code, c.Description, string(c.Type), c.Value,
		c.MinOrderAmount, c.MaxDiscountAmount, c.UsageLimit,
		c.ValidFrom, c.ValidUntil, c.IsActive,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating discount code %q: %w", c.Code, err)
	}
	return nil
}

// List returns all codes, newest first.
func (r *DiscountRepository) List(ctx context.Context) ([]discount.Code, error) {
	rows, err := r.pool.Query(ctx, listDiscountsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing discount codes: %w", err)
	}
	return pgx.CollectRows(rows, scanDiscountCode)
}

func scanDiscountCode(row pgx.CollectableRow) (discount.Code, error) {
	var (
		c            discount.Code
		discountType string
	)
	err := row.Scan(
		&c.Code, &c.Description, &discountType, &c.Value,
		&c.MinOrderAmount, &c.MaxDiscountAmount, &c.UsageLimit, &c.UsedCount,
		&c.ValidFrom, &c.ValidUntil, &c.IsActive, &c.CreatedAt,
	)
	c.Type = discount.Type(discountType)
	return c, err
}
