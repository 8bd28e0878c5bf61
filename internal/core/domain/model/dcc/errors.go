package dcc

import (
	"errors"
	"fmt"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
)

var (
	ErrCodeAlreadyUsed     = errors.New("delivery code already used")
	ErrCodeExpired         = errors.New("delivery code expired")
	ErrMaxAttemptsExceeded = errors.New("delivery code attempts exhausted")
	ErrInvalidCode         = errors.New("delivery code is invalid")
)

// AlreadyUsedError is returned when a code that already confirmed a
// delivery is submitted again.
type AlreadyUsedError struct {
	OrderID kernel.UUID
}

func (e *AlreadyUsedError) Error() string {
	return fmt.Sprintf("%s: order %s", ErrCodeAlreadyUsed, e.OrderID)
}

func (e *AlreadyUsedError) Unwrap() error {
	return ErrCodeAlreadyUsed
}

// ExpiredError means the code can no longer be used; the customer needs a
// new one.
type ExpiredError struct {
	OrderID   kernel.UUID
	ExpiresAt time.Time
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("%s: order %s, expiry %s", ErrCodeExpired, e.OrderID, e.ExpiresAt.Format(time.RFC3339))
}

func (e *ExpiredError) Unwrap() error {
	return ErrCodeExpired
}

// MaxAttemptsExceededError means the attempt budget is spent. It is security
// relevant and drives courier lockout.
type MaxAttemptsExceededError struct {
	OrderID     kernel.UUID
	MaxAttempts int
}

func (e *MaxAttemptsExceededError) Error() string {
	return fmt.Sprintf("%s: order %s, %d attempts allowed", ErrMaxAttemptsExceeded, e.OrderID, e.MaxAttempts)
}

func (e *MaxAttemptsExceededError) Unwrap() error {
	return ErrMaxAttemptsExceeded
}

// InvalidCodeError is a wrong submission with budget left.
type InvalidCodeError struct {
	OrderID           kernel.UUID
	RemainingAttempts int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("%s: order %s, %d attempts remaining", ErrInvalidCode, e.OrderID, e.RemainingAttempts)
}

func (e *InvalidCodeError) Unwrap() error {
	return ErrInvalidCode
}
