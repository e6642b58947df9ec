// Package order implements order placement, lifecycle transitions, and
// reordering. Checkout and cancellation run as single database transactions;
// all stock movement goes through the store's guarded operations.
package order

import (
	"time"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPlaced     Status = "PLACED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// transitions is the full lifecycle graph. DELIVERED and CANCELLED are
// terminal; backward transitions are never permitted.
var transitions = map[Status][]Status{
	StatusPlaced:     {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle
// transition.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible from s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// ShippingAddress is an immutable snapshot stored with the order, decoupled
// from the user's address book.
type ShippingAddress struct {
	FullName     string `json:"full_name"`
	Phone        string `json:"phone,omitempty"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
}

// Order is a priced, stock-decremented record of a completed checkout.
// Everything except Status, PaymentStatus and UpdatedAt is immutable after
// creation.
type Order struct {
	ID              string
	UserID          string
	Subtotal        int64
	Total           int64
	Status          Status
	ShippingAddress ShippingAddress
	PaymentMethod   string
	PaymentStatus   string
	DiscountCode    string
	DiscountAmount  int64
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// ItemCount is populated by list queries only.
	ItemCount int
}

// Item is the write-once audit record of one purchased line: quantity and the
// unit price actually charged, variant adjustment included.
type Item struct {
	OrderID   string
	ProductID string
	VariantID string
	Quantity  int
	Price     int64
}

// TrackingEvent is one row of an order's append-only status timeline.
type TrackingEvent struct {
	OrderID        string
	Status         string
	Message        string
	TrackingNumber string
	Carrier        string
	Location       string
	CreatedAt      time.Time
}
