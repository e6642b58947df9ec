package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velora/storefront-api/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, name, description, category, price, stock
		FROM products ORDER BY id`

	getProductByIDSQL = `SELECT id, name, description, category, price, stock
		FROM products WHERE id = $1`

	listVariantsByProductSQL = `SELECT id, product_id, variant_type, variant_value,
		COALESCE(sku, ''), price_adjustment, stock_quantity, is_available
		FROM product_variants WHERE product_id = $1 ORDER BY id`

	getVariantByIDSQL = `SELECT id, product_id, variant_type, variant_value,
		COALESCE(sku, ''), price_adjustment, stock_quantity, is_available
		FROM product_variants WHERE id = $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products from the catalog ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// VariantsByProduct returns the variants of a product ordered by ID.
func (r *ProductRepository) VariantsByProduct(ctx context.Context, productID string) ([]product.Variant, error) {
	rows, err := r.pool.Query(ctx, listVariantsByProductSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing variants of product %q: %w", productID, err)
	}
	return pgx.CollectRows(rows, scanVariant)
}

// GetVariant returns a single variant by its identifier.
func (r *ProductRepository) GetVariant(ctx context.Context, id string) (*product.Variant, error) {
	rows, err := r.pool.Query(ctx, getVariantByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting variant %q: %w", id, err)
	}

	v, err := pgx.CollectExactlyOneRow(rows, scanVariant)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrVariantNotFound
		}
		return nil, fmt.Errorf("getting variant %q: %w", id, err)
	}
	return &v, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Stock)
	return p, err
}

func scanVariant(row pgx.CollectableRow) (product.Variant, error) {
	var v product.Variant
	err := row.Scan(
		&v.ID, &v.ProductID, &v.VariantType, &v.VariantValue,
		&v.SKU, &v.PriceAdjustment, &v.StockQuantity, &v.IsAvailable,
	)
	return v, err
}
