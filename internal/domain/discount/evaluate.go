package discount

import (
	"time"

	"github.com/go-faster/errors"
)

// Evaluate validates c against the order subtotal at the given instant and
// returns the discount amount in minor currency units. Checks short-circuit
// in a fixed order: expiry, activation window, usage limit, minimum order
// amount. Evaluate never mutates the code; it is safe to call any number of
// times with identical results.
func Evaluate(c *Code, subtotal int64, now time.Time) (int64, error) {
	if c.ValidUntil != nil && !now.Before(*c.ValidUntil) {
		return 0, ErrExpired
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return 0, ErrNotYetActive
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return 0, ErrUsageLimitReached
	}
	if c.MinOrderAmount > 0 && subtotal < c.MinOrderAmount {
		return 0, &BelowMinimumError{MinOrderAmount: c.MinOrderAmount}
	}

	var amount int64
	switch c.Type {
	case TypePercentage:
		amount = subtotal * c.Value / 100
	case TypeFixed:
		amount = c.Value
	default:
		return 0, errors.Errorf("unsupported discount type: %q", c.Type)
	}

	if c.MaxDiscountAmount != nil && amount > *c.MaxDiscountAmount {
		amount = *c.MaxDiscountAmount
	}
	// A discount never drives the total negative.
	if amount > subtotal {
		amount = subtotal
	}
	if amount < 0 {
		amount = 0
	}
	return amount, nil
}
