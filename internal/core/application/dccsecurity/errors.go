package dccsecurity

import (
	"errors"
	"fmt"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
)

var (
	ErrCourierLockedOut  = errors.New("courier is locked out of delivery code validation")
	ErrRateLimitExceeded = errors.New("courier exceeded the delivery code validation rate limit")
	ErrLockoutNotFound   = errors.New("courier has no active lockout")
)

// LockoutError reports an active lockout and how long it still lasts.
type LockoutError struct {
	CourierID kernel.UUID
	Remaining time.Duration
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("%s: courier %s, %s remaining", ErrCourierLockedOut, e.CourierID, e.Remaining.Round(time.Second))
}

func (e *LockoutError) Unwrap() error {
	return ErrCourierLockedOut
}
