package courier

import (
	"errors"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
)

// ValidationAttempt is one code submission by a courier, on any order.
type ValidationAttempt struct {
	CourierID     kernel.UUID
	OrderID       kernel.UUID
	SubmittedCode string
	AttemptedAt   time.Time
	Successful    bool
}

// NewValidationAttempt checks that both identifiers are present.
func NewValidationAttempt(
	courierID, orderID kernel.UUID,
	submittedCode string,
	successful bool,
	at time.Time,
) (ValidationAttempt, error) {
	var errCourier, errOrder error
	if err := courierID.Validate(); err != nil {
		errCourier = errs.NewValueIsRequiredErrorWithCause("courierId", err)
	}
	if err := orderID.Validate(); err != nil {
		errOrder = errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	if err := errors.Join(errCourier, errOrder); err != nil {
		return ValidationAttempt{}, err
	}

	return ValidationAttempt{
		CourierID:     courierID,
		OrderID:       orderID,
		SubmittedCode: submittedCode,
		AttemptedAt:   at.UTC(),
		Successful:    successful,
	}, nil
}

// Since keeps the attempts made strictly after since.
func Since(attempts []ValidationAttempt, since time.Time) []ValidationAttempt {
	out := make([]ValidationAttempt, 0, len(attempts))
	for _, a := range attempts {
		if a.AttemptedAt.After(since) {
			out = append(out, a)
		}
	}
	return out
}

// CountFailures counts unsuccessful attempts.
func CountFailures(attempts []ValidationAttempt) int {
	failures := 0
	for _, a := range attempts {
		if !a.Successful {
			failures++
		}
	}
	return failures
}
