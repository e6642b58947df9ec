// Package discount implements discount code rules and their evaluation.
// Evaluation is pure: the usage counter is only advanced inside the checkout
// transaction, through the order store's conditional redeem.
package discount

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
)

// Type enumerates the supported discount strategies.
type Type string

const (
	// TypePercentage applies a percentage of the subtotal.
	TypePercentage Type = "percentage"
	// TypeFixed applies a fixed amount, capped at the subtotal.
	TypeFixed Type = "fixed"
)

// Rejection reasons, in the order they are checked.
var (
	// ErrNotFound is returned when no active code matches.
	ErrNotFound = errors.New("invalid discount code")
	// ErrExpired is returned when the code's valid_until has passed.
	ErrExpired = errors.New("discount code has expired")
	// ErrNotYetActive is returned when the code's valid_from is in the future.
	ErrNotYetActive = errors.New("discount code is not yet active")
	// ErrUsageLimitReached is returned when the code has exhausted its uses.
	ErrUsageLimitReached = errors.New("discount code has reached its usage limit")
)

// BelowMinimumError rejects a code whose minimum order amount is not met.
type BelowMinimumError struct {
	MinOrderAmount int64
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("minimum order amount of %d required for this discount", e.MinOrderAmount)
}

// Code is a discount code rule. Codes are stored upper-cased and matched
// case-insensitively. Monetary fields are minor currency units.
type Code struct {
	Code              string
	Description       string
	Type              Type
	Value             int64
	MinOrderAmount    int64
	MaxDiscountAmount *int64
	UsageLimit        *int
	UsedCount         int
	ValidFrom         *time.Time
	ValidUntil        *time.Time
	IsActive          bool
	CreatedAt         time.Time
}

// Repository provides lookup and administration of discount codes. FindByCode
// matches case-insensitively against active codes and returns ErrNotFound
// when nothing matches.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Code, error)
	Create(ctx context.Context, c *Code) error
	List(ctx context.Context) ([]Code, error)
}
