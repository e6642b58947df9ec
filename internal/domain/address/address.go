// Package address manages a user's saved shipping addresses. Checkout copies
// the chosen address into the order as an immutable snapshot, so edits here
// never rewrite order history.
package address

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when the address does not exist or belongs to a
// different user.
var ErrNotFound = errors.New("shipping address not found")

// Address is a saved shipping destination.
type Address struct {
	ID           int64
	UserID       string
	Label        string
	FullName     string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string
	IsDefault    bool
	CreatedAt    time.Time
}

// Repository defines persistence for saved addresses. All lookups are scoped
// to the owning user. Create assigns ID and CreatedAt, and demotes the
// previous default when the new address is marked default.
type Repository interface {
	List(ctx context.Context, userID string) ([]Address, error)
	GetByID(ctx context.Context, id int64, userID string) (*Address, error)
	Create(ctx context.Context, a *Address) error
	Delete(ctx context.Context, id int64, userID string) error
}
