package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrEmptyCart is returned when checkout finds no cart lines for the user.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotFound is returned when an order does not exist or is not owned by
	// the caller. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("order not found")
	// ErrAddressNotFound is returned when a referenced shipping address does
	// not exist or is not owned by the caller.
	ErrAddressNotFound = errors.New("shipping address not found")
	// ErrInvalidStatus is returned when an unknown status value is supplied.
	ErrInvalidStatus = errors.New("invalid order status")
)

// InsufficientStockError reports a line whose reservation target cannot cover
// the requested quantity.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s. Available: %d, Requested: %d",
		e.ProductName, e.Available, e.Requested)
}

// InvalidTransitionError reports an attempted lifecycle transition that the
// state machine forbids.
type InvalidTransitionError struct {
	Current Status
	Next    Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.Current, e.Next)
}
