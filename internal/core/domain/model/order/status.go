package order

import (
	"fmt"
	"strings"

	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
)

// Status is the lifecycle state of an order. It is a closed enumeration;
// which transitions are allowed between statuses is not encoded here but in
// the per-merchant workflow rules.
//
// Normal progression:
//
//	Pending ──> PaymentProcessing ──> PaymentConfirmed ──> Preparing
//	   │                                      ▲                │
//	   └──────── (auto-confirmed) ────────────┘                ▼
//	                       Delivered <── OutForDelivery <── ReadyForPickup
//
// Cancelled is reachable from the statuses a cancellation policy allows and
// Refunded from Delivered (and, for some policies, Cancelled).
type Status int

const (
	// Unknown (0) catches uninitialised Status values.
	Unknown Status = iota

	// Pending is the initial status of a newly placed order.
	Pending

	// PaymentProcessing means the payment gateway has not answered yet.
	PaymentProcessing

	// PaymentConfirmed means the payment is captured or guaranteed
	// (cash on delivery) and the merchant can accept the order.
	PaymentConfirmed

	// Preparing means the merchant is preparing the order.
	Preparing

	// ReadyForPickup means the order waits for a courier at the merchant.
	ReadyForPickup

	// OutForDelivery means a courier carries the order to the customer.
	OutForDelivery

	// Delivered means the hand-off was confirmed. Only a refund may follow.
	Delivered

	// Cancelled ends the lifecycle unless the policy allows a refund.
	Cancelled

	// Refunded is final.
	Refunded
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:           "UNKNOWN",
		Pending:           "PENDING",
		PaymentProcessing: "PAYMENT_PROCESSING",
		PaymentConfirmed:  "PAYMENT_CONFIRMED",
		Preparing:         "PREPARING",
		ReadyForPickup:    "READY_FOR_PICKUP",
		OutForDelivery:    "OUT_FOR_DELIVERY",
		Delivered:         "DELIVERED",
		Cancelled:         "CANCELLED",
		Refunded:          "REFUNDED",
	}
}

// AllStatuses returns every valid status in progression order.
func AllStatuses() []Status {
	return []Status{
		Pending,
		PaymentProcessing,
		PaymentConfirmed,
		Preparing,
		ReadyForPickup,
		OutForDelivery,
		Delivered,
		Cancelled,
		Refunded,
	}
}

// ParseStatus converts the persisted or wire name of a status back into a
// Status. Matching is case-insensitive.
func ParseStatus(s string) (Status, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for status, str := range getStatusStrings() {
		if status != Unknown && str == name {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if s <= Unknown || s > Refunded {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsFinal reports whether no further status change can ever follow.
func (s Status) IsFinal() bool {
	return s == Refunded
}

// IsActive reports whether the order is still moving towards delivery.
func (s Status) IsActive() bool {
	return s >= Pending && s <= OutForDelivery
}

// CanBeEdited reports whether line items or the address may still change
// from the customer's point of view. Item edits themselves are not exposed.
func (s Status) CanBeEdited() bool {
	return s == Pending || s == PaymentProcessing
}

func (s Status) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
