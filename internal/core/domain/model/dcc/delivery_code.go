package dcc

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"
)

const (
	// CodeLength is the number of ASCII digits in a code.
	CodeLength = 4

	MinMaxAttempts     = 1
	MaxMaxAttempts     = 10
	DefaultMaxAttempts = 3

	MinExpiration     = time.Minute
	MaxExpiration     = 7 * 24 * time.Hour
	DefaultExpiration = 24 * time.Hour
)

var ErrDeliveryCodeIsNotConstructed = errors.New("DeliveryCode must be created via NewDeliveryCode constructor")

// DeliveryCode is the delivery confirmation code of one order: a short
// numeric secret held by the customer that the courier must submit to
// confirm the hand-off.
//
// DeliveryCode follows these invariants:
//   - the code is exactly CodeLength ASCII digits
//   - expiresAt is strictly after generatedAt
//   - maxAttempts is within [MinMaxAttempts, MaxMaxAttempts]
//   - the number of recorded attempts never exceeds maxAttempts
//   - once Used or Expired, no submission changes the code again
//
// The aggregate is single-writer: callers must serialise load, mutate and
// save per order, which the repositories do with an optimistic version.
type DeliveryCode struct {
	orderID     kernel.UUID
	code        string
	status      Status
	generatedAt time.Time
	expiresAt   time.Time
	maxAttempts int
	attempts    []Attempt

	usedAt    *time.Time
	expiredAt *time.Time
	expiredBy string
	reason    string

	version int64
	guard   guard.ConstructorGuard
}

// NewDeliveryCode issues an Active code at now, the current instant. Codes
// are only issued by services.DCCGenerationService, which reads now from its
// clock; stored codes are rebuilt with RestoreDeliveryCode instead.
//
// Returns the code and its GeneratedEvent, or a construction error when the
// code is not CodeLength digits, the budget is out of range or expiresAt is
// not after now. A code built with a past now is still subject to
// expiresAt: IsActive and ValidateCode check it on every call.
func NewDeliveryCode(
	orderID kernel.UUID,
	code string,
	maxAttempts int,
	now, expiresAt time.Time,
) (*DeliveryCode, GeneratedEvent, error) {
	c := &DeliveryCode{
		status:      Active,
		generatedAt: now.UTC(),
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setOrderID(orderID),
		c.setCode(code),
		c.setMaxAttempts(maxAttempts),
		c.setExpiresAt(expiresAt),
	); err != nil {
		return nil, GeneratedEvent{}, err
	}

	return c, GeneratedEvent{
		BaseEvent:   kernel.NewBaseEvent(EventTypeGenerated, c.orderID, now),
		OrderID:     c.orderID,
		Code:        c.code,
		ExpiresAt:   c.expiresAt,
		MaxAttempts: c.maxAttempts,
	}, nil
}

// RestoreParams carries the persisted state of a code.
type RestoreParams struct {
	OrderID     kernel.UUID
	Code        string
	Status      Status
	GeneratedAt time.Time
	ExpiresAt   time.Time
	MaxAttempts int
	Attempts    []Attempt
	UsedAt      *time.Time
	ExpiredAt   *time.Time
	ExpiredBy   string
	Reason      string
	Version     int64
}

// RestoreDeliveryCode rebuilds a code from storage without emitting events.
func RestoreDeliveryCode(p RestoreParams) (*DeliveryCode, error) {
	c := &DeliveryCode{
		generatedAt: p.GeneratedAt.UTC(),
		usedAt:      p.UsedAt,
		expiredAt:   p.ExpiredAt,
		expiredBy:   p.ExpiredBy,
		reason:      p.Reason,
		version:     p.Version,
		guard:       guard.NewConstructorGuard(),
	}

	var errAttempts error
	if len(p.Attempts) > p.MaxAttempts {
		errAttempts = errs.NewValueIsOutOfRangeError("attempts", len(p.Attempts), 0, p.MaxAttempts)
	}
	if err := errors.Join(
		c.setOrderID(p.OrderID),
		c.setCode(p.Code),
		c.setMaxAttempts(p.MaxAttempts),
		c.setExpiresAt(p.ExpiresAt),
		p.Status.Validate(),
		errAttempts,
	); err != nil {
		return nil, err
	}
	c.status = p.Status
	c.attempts = append([]Attempt(nil), p.Attempts...)

	return c, nil
}

// Validate ensures the code was built through NewDeliveryCode or RestoreDeliveryCode.
func (c *DeliveryCode) Validate() error {
	if c == nil {
		return ErrDeliveryCodeIsNotConstructed
	}
	return c.guard.Validate(ErrDeliveryCodeIsNotConstructed)
}

func (c *DeliveryCode) OrderID() kernel.UUID {
	return c.orderID
}

// Code returns the secret digits.
func (c *DeliveryCode) Code() string {
	return c.code
}

func (c *DeliveryCode) Status() Status {
	return c.status
}

func (c *DeliveryCode) GeneratedAt() time.Time {
	return c.generatedAt
}

func (c *DeliveryCode) ExpiresAt() time.Time {
	return c.expiresAt
}

func (c *DeliveryCode) MaxAttempts() int {
	return c.maxAttempts
}

func (c *DeliveryCode) AttemptCount() int {
	return len(c.attempts)
}

// Attempts returns a copy of the submission history, oldest first.
func (c *DeliveryCode) Attempts() []Attempt {
	return append([]Attempt(nil), c.attempts...)
}

func (c *DeliveryCode) RemainingAttempts() int {
	return max(c.maxAttempts-len(c.attempts), 0)
}

func (c *DeliveryCode) UsedAt() *time.Time {
	return c.usedAt
}

func (c *DeliveryCode) ExpiredAt() *time.Time {
	return c.expiredAt
}

// ExpiredBy is the admin who forced the expiry, empty otherwise.
func (c *DeliveryCode) ExpiredBy() string {
	return c.expiredBy
}

// ExpiryReason is the admin's reason for a forced expiry.
func (c *DeliveryCode) ExpiryReason() string {
	return c.reason
}

func (c *DeliveryCode) Version() int64 {
	return c.version
}

// SyncVersion records the version written by a repository.
func (c *DeliveryCode) SyncVersion(version int64) {
	c.version = version
}

func (c *DeliveryCode) IsUsed() bool {
	return c.status == Used
}

// IsExpired reports whether the code is Expired or past its expiry at now.
func (c *DeliveryCode) IsExpired(now time.Time) bool {
	return c.status == Expired || now.After(c.expiresAt)
}

// IsActive reports whether the code still accepts submissions at now.
func (c *DeliveryCode) IsActive(now time.Time) bool {
	return c.status == Active && !now.After(c.expiresAt)
}

// ValidateCode checks a courier's submission at now.
//
// Checks run in this order:
//  1. Used codes fail with AlreadyUsedError.
//  2. Expired codes, or codes past expiresAt, fail with ExpiredError; a
//     time-based expiry is applied first.
//  3. Codes whose budget is spent expire and fail with MaxAttemptsExceededError.
//  4. The attempt is recorded.
//  5. A match marks the code Used and emits ValidatedEvent.
//  6. A mismatch emits ValidationFailedEvent, then either expires the code
//     (budget spent, MaxAttemptsExceededError) or fails with InvalidCodeError.
//
// The returned events must be published even when an error is returned,
// in slice order.
func (c *DeliveryCode) ValidateCode(submitted string, courierID kernel.UUID, now time.Time) ([]kernel.DomainEvent, error) {
	if err := courierID.Validate(); err != nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("courierId", err)
	}

	switch {
	case c.status == Used:
		return nil, &AlreadyUsedError{OrderID: c.orderID}
	case c.status == Expired:
		return nil, &ExpiredError{OrderID: c.orderID, ExpiresAt: c.expiresAt}
	case now.After(c.expiresAt):
		return c.Expire(now), &ExpiredError{OrderID: c.orderID, ExpiresAt: c.expiresAt}
	case len(c.attempts) >= c.maxAttempts:
		return c.Expire(now), &MaxAttemptsExceededError{OrderID: c.orderID, MaxAttempts: c.maxAttempts}
	}

	matched := subtle.ConstantTimeCompare([]byte(submitted), []byte(c.code)) == 1
	c.attempts = append(c.attempts, Attempt{
		CourierID:     courierID,
		SubmittedCode: submitted,
		AttemptedAt:   now.UTC(),
		Successful:    matched,
	})
	attemptNumber := len(c.attempts)

	if matched {
		usedAt := now.UTC()
		c.status = Used
		c.usedAt = &usedAt
		return []kernel.DomainEvent{ValidatedEvent{
			BaseEvent:     kernel.NewBaseEvent(EventTypeValidated, c.orderID, now),
			OrderID:       c.orderID,
			CourierID:     courierID,
			AttemptNumber: attemptNumber,
		}}, nil
	}

	events := []kernel.DomainEvent{ValidationFailedEvent{
		BaseEvent:         kernel.NewBaseEvent(EventTypeValidationFailed, c.orderID, now),
		OrderID:           c.orderID,
		CourierID:         courierID,
		SubmittedCode:     submitted,
		AttemptNumber:     attemptNumber,
		RemainingAttempts: c.RemainingAttempts(),
	}}

	if c.RemainingAttempts() == 0 {
		events = append(events, c.Expire(now)...)
		return events, &MaxAttemptsExceededError{OrderID: c.orderID, MaxAttempts: c.maxAttempts}
	}

	return events, &InvalidCodeError{OrderID: c.orderID, RemainingAttempts: c.RemainingAttempts()}
}

// Expire applies a natural expiry. It emits ExpiredEvent only when the code
// was Active, so repeated calls are no-ops.
func (c *DeliveryCode) Expire(now time.Time) []kernel.DomainEvent {
	if c.status != Active {
		return nil
	}
	c.markExpired(now)
	return []kernel.DomainEvent{c.expiredEvent(now, false)}
}

// ForceExpire is the admin override. It expires the code whatever its
// status and emits an ExpiredEvent tagged with the admin and reason.
func (c *DeliveryCode) ForceExpire(adminID, reason string, now time.Time) ([]kernel.DomainEvent, error) {
	adminID = strings.TrimSpace(adminID)
	reason = strings.TrimSpace(reason)

	var errAdmin, errReason error
	if adminID == "" {
		errAdmin = errs.NewValueIsRequiredError("adminId")
	}
	if reason == "" {
		errReason = errs.NewValueIsRequiredError("reason")
	}
	if err := errors.Join(errAdmin, errReason); err != nil {
		return nil, err
	}

	c.markExpired(now)
	c.expiredBy = adminID
	c.reason = reason
	return []kernel.DomainEvent{c.expiredEvent(now, true)}, nil
}

func (c *DeliveryCode) markExpired(now time.Time) {
	expiredAt := now.UTC()
	c.status = Expired
	c.expiredAt = &expiredAt
}

func (c *DeliveryCode) expiredEvent(now time.Time, forced bool) ExpiredEvent {
	return ExpiredEvent{
		BaseEvent:    kernel.NewBaseEvent(EventTypeExpired, c.orderID, now),
		OrderID:      c.orderID,
		Forced:       forced,
		AdminID:      c.expiredBy,
		Reason:       c.reason,
		AttemptCount: len(c.attempts),
	}
}

func (c *DeliveryCode) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	c.orderID = id
	return nil
}

func (c *DeliveryCode) setCode(code string) error {
	if !IsWellFormed(code) {
		return errs.NewValueIsInvalidErrorWithCause("code",
			fmt.Errorf("must be exactly %d digits", CodeLength))
	}
	c.code = code
	return nil
}

func (c *DeliveryCode) setMaxAttempts(maxAttempts int) error {
	if maxAttempts < MinMaxAttempts || maxAttempts > MaxMaxAttempts {
		return errs.NewValueIsOutOfRangeError("maxAttempts", maxAttempts, MinMaxAttempts, MaxMaxAttempts)
	}
	c.maxAttempts = maxAttempts
	return nil
}

func (c *DeliveryCode) setExpiresAt(expiresAt time.Time) error {
	if !expiresAt.After(c.generatedAt) {
		return errs.NewValueIsInvalidErrorWithCause("expiresAt",
			fmt.Errorf("%s is not after generation time %s",
				expiresAt.UTC().Format(time.RFC3339), c.generatedAt.Format(time.RFC3339)))
	}
	c.expiresAt = expiresAt.UTC()
	return nil
}

// IsWellFormed reports whether code is exactly CodeLength ASCII digits.
func IsWellFormed(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := range len(code) {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
