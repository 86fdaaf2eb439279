package domain

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusDelivering Status = "DELIVERING"
	StatusDelivered  Status = "DELIVERED"
	StatusConfirmed  Status = "CONFIRMED"
	StatusCancelled  Status = "CANCELLED"
)

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "ONLINE"
	PaymentCOD    PaymentMethod = "COD"
)

type PaymentStatus string

const (
	PaymentNotPaid PaymentStatus = "NOT_PAID"
	PaymentPaid    PaymentStatus = "PAID"
)

// transitions is the authoritative forward-edge table. CONFIRMED is reachable
// from DELIVERED only through the dedicated receive-confirmation operation,
// never through a generic status update.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusDelivering, StatusCancelled},
	StatusDelivering: {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusConfirmed:  {},
	StatusCancelled:  {},
}

// CanTransitionTo reports whether a generic status update from s to next is legal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no generic outgoing edge exists from s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusPending, StatusProcessing, StatusDelivering, StatusDelivered, StatusConfirmed, StatusCancelled:
		return s, nil
	default:
		return "", fmt.Errorf("unknown order status %q", raw)
	}
}

func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch m := PaymentMethod(raw); m {
	case PaymentOnline, PaymentCOD:
		return m, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", raw)
	}
}

type Order struct {
	ID            string
	UserID        string
	ItemIDs       []string // insertion-ordered, no duplicates
	AddressID     string
	Status        Status
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	OrderDate     time.Time
	PaymentDate   time.Time // zero until the first successful payment
}

// Paid reports whether the order has been paid at least once.
func (o *Order) Paid() bool { return o.PaymentStatus == PaymentPaid }

// OrderItem is an immutable snapshot of a purchased book and quantity, owned
// by exactly one order. Quantity is fixed at conversion time and never
// re-derived from live cart or book state.
type OrderItem struct {
	ID       string
	OrderID  string
	BookID   string
	Quantity int
}
