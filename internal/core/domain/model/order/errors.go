package order

import (
	"errors"
	"fmt"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
)

// ErrInvalidStatusTransition is the sentinel behind every refused status
// change, cancellation or refund.
var ErrInvalidStatusTransition = errors.New("invalid order state transition")

// InvalidStatusTransitionError is a policy violation: the requested change is
// not allowed from the order's current status under its workflow rules.
type InvalidStatusTransitionError struct {
	Operation string
	OrderID   kernel.UUID
	From      Status
	To        Status
	Reason    string
}

func NewInvalidStatusTransitionError(operation string, orderID kernel.UUID, from, to Status, reason string) *InvalidStatusTransitionError {
	return &InvalidStatusTransitionError{
		Operation: operation,
		OrderID:   orderID,
		From:      from,
		To:        to,
		Reason:    reason,
	}
}

func (e *InvalidStatusTransitionError) Error() string {
	msg := fmt.Sprintf("%s: cannot %s order %s from %s to %s",
		ErrInvalidStatusTransition, e.Operation, e.OrderID, e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvalidStatusTransitionError) Unwrap() error {
	return ErrInvalidStatusTransition
}
