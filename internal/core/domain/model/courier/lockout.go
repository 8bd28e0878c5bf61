package courier

import (
	"errors"
	"strings"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"
)

var ErrLockoutIsNotConstructed = errors.New("Lockout must be created via NewLockout constructor")

// Lockout bars a courier from submitting delivery codes until expiresAt.
type Lockout struct {
	courierID    kernel.UUID
	orderID      kernel.UUID
	attemptCount int
	lockedAt     time.Time
	expiresAt    time.Time
	reason       string
	guard        guard.ConstructorGuard
}

// NewLockout locks courierID for duration starting at now. orderID is the
// order whose code triggered the lockout.
func NewLockout(
	courierID, orderID kernel.UUID,
	attemptCount int,
	reason string,
	now time.Time,
	duration time.Duration,
) (Lockout, error) {
	l := Lockout{
		attemptCount: attemptCount,
		lockedAt:     now.UTC(),
		expiresAt:    now.Add(duration).UTC(),
		reason:       strings.TrimSpace(reason),
		guard:        guard.NewConstructorGuard(),
	}

	var errCourier, errOrder, errDuration, errReason error
	if err := courierID.Validate(); err != nil {
		errCourier = errs.NewValueIsRequiredErrorWithCause("courierId", err)
	}
	if err := orderID.Validate(); err != nil {
		errOrder = errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	if duration <= 0 {
		errDuration = errs.NewValueIsInvalidError("lockout duration")
	}
	if l.reason == "" {
		errReason = errs.NewValueIsRequiredError("reason")
	}
	if err := errors.Join(errCourier, errOrder, errDuration, errReason); err != nil {
		return Lockout{}, err
	}

	l.courierID = courierID
	l.orderID = orderID
	return l, nil
}

// RestoreLockout rebuilds a persisted lockout.
func RestoreLockout(
	courierID, orderID kernel.UUID,
	attemptCount int,
	reason string,
	lockedAt, expiresAt time.Time,
) (Lockout, error) {
	return NewLockout(courierID, orderID, attemptCount, reason, lockedAt, expiresAt.Sub(lockedAt))
}

func (l Lockout) Validate() error {
	return l.guard.Validate(ErrLockoutIsNotConstructed)
}

func (l Lockout) CourierID() kernel.UUID {
	return l.courierID
}

func (l Lockout) OrderID() kernel.UUID {
	return l.orderID
}

func (l Lockout) AttemptCount() int {
	return l.attemptCount
}

func (l Lockout) LockedAt() time.Time {
	return l.lockedAt
}

func (l Lockout) ExpiresAt() time.Time {
	return l.expiresAt
}

func (l Lockout) Reason() string {
	return l.reason
}

// IsActive reports whether the lockout still applies at now.
func (l Lockout) IsActive(now time.Time) bool {
	return now.Before(l.expiresAt)
}

// Remaining is the time left at now, never negative.
func (l Lockout) Remaining(now time.Time) time.Duration {
	return max(l.expiresAt.Sub(now), 0)
}
