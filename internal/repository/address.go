package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velora/storefront-api/internal/domain/address"
)

const (
	listAddressesSQL = `SELECT id, user_id, label, full_name, phone, address_line1, address_line2,
		city, state, postal_code, country, is_default, created_at
		FROM shipping_addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC`

	getAddressByIDSQL = `SELECT id, user_id, label, full_name, phone, address_line1, address_line2,
		city, state, postal_code, country, is_default, created_at
		FROM shipping_addresses WHERE id = $1 AND user_id = $2`

	demoteDefaultAddressSQL = `UPDATE shipping_addresses SET is_default = FALSE
		WHERE user_id = $1 AND is_default`

	createAddressSQL = `INSERT INTO shipping_addresses (user_id, label, full_name, phone,
		address_line1, address_line2, city, state, postal_code, country, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	deleteAddressSQL = `DELETE FROM shipping_addresses WHERE id = $1 AND user_id = $2`
)

var _ address.Repository = (*AddressRepository)(nil)

// AddressRepository implements address.Repository backed by PostgreSQL.
type AddressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository returns an AddressRepository that uses the given pool.
func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

// List returns the user's saved addresses, default first.
func (r *AddressRepository) List(ctx context.Context, userID string) ([]address.Address, error) {
	rows, err := r.pool.Query(ctx, listAddressesSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing addresses for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanAddress)
}

// GetByID returns a saved address scoped to its owner.
func (r *AddressRepository) GetByID(ctx context.Context, id int64, userID string) (*address.Address, error) {
	rows, err := r.pool.Query(ctx, getAddressByIDSQL, id, userID)
	if err != nil {
		return nil, fmt.Errorf("getting address %d: %w", id, err)
	}

	a, err := pgx.CollectExactlyOneRow(rows, scanAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, address.ErrNotFound
		}
		return nil, fmt.Errorf("getting address %d: %w", id, err)
	}
	return &a, nil
}

// Create stores a new address. Marking it default demotes the previous
// default in the same transaction.
func (r *AddressRepository) Create(ctx context.Context, a *address.Address) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if a.IsDefault {
		if _, err := tx.Exec(ctx, demoteDefaultAddressSQL, a.UserID); err != nil {
			return fmt.Errorf("demoting default address for user %q: %w", a.UserID, err)
		}
	}

	err = tx.QueryRow(ctx, createAddressSQL,
		a.UserID, a.Label, a.FullName, a.Phone,
		a.AddressLine1, a.AddressLine2, a.City, a.State,
		a.PostalCode, a.Country, a.IsDefault,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating address for user %q: %w", a.UserID, err)
	}

	return tx.Commit(ctx)
}

// Delete removes a saved address scoped to its owner.
func (r *AddressRepository) Delete(ctx context.Context, id int64, userID string) error {
	tag, err := r.pool.Exec(ctx, deleteAddressSQL, id, userID)
	if err != nil {
		return fmt.Errorf("deleting address %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return address.ErrNotFound
	}
	return nil
}

func scanAddress(row pgx.CollectableRow) (address.Address, error) {
	var a address.Address
	err := row.Scan(
		&a.ID, &a.UserID, &a.Label, &a.FullName, &a.Phone,
		&a.AddressLine1, &a.AddressLine2, &a.City, &a.State,
		&a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt,
	)
	return a, err
}
