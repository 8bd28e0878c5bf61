package dcc_test

import (
	"testing"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/dcc"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generatedAt = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

func newCode(t *testing.T, code string, maxAttempts int) *dcc.DeliveryCode {
	t.Helper()
	c, _, err := dcc.NewDeliveryCode(kernel.NewUUID(), code, maxAttempts, generatedAt, generatedAt.Add(dcc.DefaultExpiration))
	require.NoError(t, err)
	return c
}

func eventTypes(events []kernel.DomainEvent) []string {
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.EventType())
	}
	return types
}

func TestNewDeliveryCode(t *testing.T) {
	orderID := kernel.NewUUID()

	t.Run("creates_active_code_with_generated_event", func(t *testing.T) {
		c, ev, err := dcc.NewDeliveryCode(orderID, "0042", 3, generatedAt, generatedAt.Add(time.Hour))

		require.NoError(t, err)
		require.NoError(t, c.Validate())
		assert.Equal(t, dcc.Active, c.Status())
		assert.Equal(t, 3, c.RemainingAttempts())
		assert.True(t, c.IsActive(generatedAt))
		assert.Equal(t, dcc.EventTypeGenerated, ev.EventType())
		assert.Equal(t, "0042", ev.Code)
		assert.True(t, ev.AggregateID().IsEqual(orderID))
	})

	tests := []struct {
		name        string
		code        string
		maxAttempts int
		expiresAt   time.Time
	}{
		{name: "three_digits", code: "123", maxAttempts: 3, expiresAt: generatedAt.Add(time.Hour)},
		{name: "five_digits", code: "12345", maxAttempts: 3, expiresAt: generatedAt.Add(time.Hour)},
		{name: "non_digits", code: "12a4", maxAttempts: 3, expiresAt: generatedAt.Add(time.Hour)},
		{name: "unicode_digits", code: "١٢٣٤", maxAttempts: 3, expiresAt: generatedAt.Add(time.Hour)},
		{name: "zero_attempts", code: "1234", maxAttempts: 0, expiresAt: generatedAt.Add(time.Hour)},
		{name: "eleven_attempts", code: "1234", maxAttempts: 11, expiresAt: generatedAt.Add(time.Hour)},
		{name: "expiry_in_the_past", code: "1234", maxAttempts: 3, expiresAt: generatedAt.Add(-time.Second)},
		{name: "expiry_equal_to_generation", code: "1234", maxAttempts: 3, expiresAt: generatedAt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, err := dcc.NewDeliveryCode(orderID, tt.code, tt.maxAttempts, generatedAt, tt.expiresAt)

			require.Error(t, err)
			assert.Nil(t, c)
		})
	}

	t.Run("missing_order_id", func(t *testing.T) {
		_, _, err := dcc.NewDeliveryCode(kernel.UUID{}, "1234", 3, generatedAt, generatedAt.Add(time.Hour))
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestNewDeliveryCode_IssuedInThePastIsNotUsable(t *testing.T) {
	c, _, err := dcc.NewDeliveryCode(kernel.NewUUID(), "1234", 3, generatedAt, generatedAt.Add(time.Hour))
	require.NoError(t, err)
	later := generatedAt.Add(2 * time.Hour)

	assert.False(t, c.IsActive(later))
	assert.True(t, c.IsExpired(later))

	_, err = c.ValidateCode("1234", kernel.NewUUID(), later)

	require.ErrorIs(t, err, dcc.ErrCodeExpired)
	assert.Equal(t, dcc.Expired, c.Status())
	assert.Zero(t, c.AttemptCount())
}

func TestDeliveryCode_WrongThenRightCode(t *testing.T) {
	c := newCode(t, "1234", 3)
	courier := kernel.NewUUID()
	now := generatedAt.Add(10 * time.Minute)

	events, err := c.ValidateCode("5678", courier, now)

	var invalid *dcc.InvalidCodeError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 2, invalid.RemainingAttempts)
	assert.Equal(t, 1, c.AttemptCount())
	assert.Equal(t, 2, c.RemainingAttempts())
	require.Len(t, events, 1)
	failed, ok := events[0].(dcc.ValidationFailedEvent)
	require.True(t, ok)
	assert.Equal(t, 1, failed.AttemptNumber)
	assert.Equal(t, 2, failed.RemainingAttempts)
	assert.Equal(t, "5678", failed.SubmittedCode)

	events, err = c.ValidateCode("1234", courier, now.Add(time.Minute))

	require.NoError(t, err)
	assert.Equal(t, dcc.Used, c.Status())
	assert.True(t, c.IsUsed())
	require.NotNil(t, c.UsedAt())
	assert.Equal(t, []string{dcc.EventTypeValidated}, eventTypes(events))
	assert.Equal(t, 2, events[0].(dcc.ValidatedEvent).AttemptNumber)

	attempts := c.Attempts()
	require.Len(t, attempts, 2)
	assert.False(t, attempts[0].Successful)
	assert.True(t, attempts[1].Successful)
}

func TestDeliveryCode_SubmittedCodeIsComparedAsIs(t *testing.T) {
	c := newCode(t, "1234", 3)

	events, err := c.ValidateCode(" 1234 ", kernel.NewUUID(), generatedAt.Add(time.Minute))

	require.ErrorIs(t, err, dcc.ErrInvalidCode)
	assert.Equal(t, dcc.Active, c.Status())
	require.Len(t, c.Attempts(), 1)
	assert.Equal(t, " 1234 ", c.Attempts()[0].SubmittedCode)
	assert.Equal(t, " 1234 ", events[0].(dcc.ValidationFailedEvent).SubmittedCode)
}

func TestDeliveryCode_ExhaustingAttempts(t *testing.T) {
	c := newCode(t, "1234", 2)
	courier := kernel.NewUUID()
	now := generatedAt.Add(time.Minute)

	_, err := c.ValidateCode("0000", courier, now)
	require.ErrorIs(t, err, dcc.ErrInvalidCode)

	events, err := c.ValidateCode("1111", courier, now)

	require.ErrorIs(t, err, dcc.ErrMaxAttemptsExceeded)
	assert.Equal(t, dcc.Expired, c.Status())
	assert.Equal(t, 0, c.RemainingAttempts())
	assert.Equal(t, []string{dcc.EventTypeValidationFailed, dcc.EventTypeExpired}, eventTypes(events))
	assert.False(t, events[1].(dcc.ExpiredEvent).Forced)

	events, err = c.ValidateCode("1234", courier, now)

	require.ErrorIs(t, err, dcc.ErrCodeExpired)
	assert.Empty(t, events)
	assert.Equal(t, 2, c.AttemptCount())
}

func TestDeliveryCode_TimeExpiryDuringValidation(t *testing.T) {
	c := newCode(t, "1234", 3)
	late := c.ExpiresAt().Add(time.Second)

	events, err := c.ValidateCode("1234", kernel.NewUUID(), late)

	var expired *dcc.ExpiredError
	require.ErrorAs(t, err, &expired)
	assert.Equal(t, c.ExpiresAt(), expired.ExpiresAt)
	assert.Equal(t, dcc.Expired, c.Status())
	assert.Equal(t, []string{dcc.EventTypeExpired}, eventTypes(events))
	assert.Equal(t, 0, c.AttemptCount())
}

func TestDeliveryCode_BudgetSpentWithoutExpiry(t *testing.T) {
	orderID := kernel.NewUUID()
	courier := kernel.NewUUID()
	c, err := dcc.RestoreDeliveryCode(dcc.RestoreParams{
		OrderID:     orderID,
		Code:        "1234",
		Status:      dcc.Active,
		GeneratedAt: generatedAt,
		ExpiresAt:   generatedAt.Add(time.Hour),
		MaxAttempts: 1,
		Attempts:    []dcc.Attempt{{CourierID: courier, SubmittedCode: "9999", AttemptedAt: generatedAt}},
	})
	require.NoError(t, err)

	events, err := c.ValidateCode("1234", courier, generatedAt.Add(time.Minute))

	require.ErrorIs(t, err, dcc.ErrMaxAttemptsExceeded)
	assert.Equal(t, dcc.Expired, c.Status())
	assert.Equal(t, []string{dcc.EventTypeExpired}, eventTypes(events))
}

func TestDeliveryCode_AtMostOneSuccess(t *testing.T) {
	c := newCode(t, "4321", 5)
	courier := kernel.NewUUID()

	_, err := c.ValidateCode("4321", courier, generatedAt)
	require.NoError(t, err)

	for range 3 {
		events, err := c.ValidateCode("4321", courier, generatedAt)
		require.ErrorIs(t, err, dcc.ErrCodeAlreadyUsed)
		assert.Empty(t, events)
	}
	assert.Equal(t, 1, c.AttemptCount())
}

func TestDeliveryCode_AttemptAccountingInvariant(t *testing.T) {
	c := newCode(t, "2468", 4)
	courier := kernel.NewUUID()

	previous := 0
	for _, submitted := range []string{"0001", "0002", "0003", "0004", "0005", "2468"} {
		_, _ = c.ValidateCode(submitted, courier, generatedAt)
		assert.GreaterOrEqual(t, c.AttemptCount(), previous)
		assert.LessOrEqual(t, c.AttemptCount(), c.MaxAttempts())
		assert.Equal(t, c.MaxAttempts()-c.AttemptCount(), c.RemainingAttempts())
		previous = c.AttemptCount()
	}
	assert.Equal(t, dcc.Expired, c.Status())
}

func TestDeliveryCode_Expire(t *testing.T) {
	c := newCode(t, "1234", 3)

	first := c.Expire(generatedAt)
	second := c.Expire(generatedAt.Add(time.Minute))

	assert.Equal(t, []string{dcc.EventTypeExpired}, eventTypes(first))
	assert.Empty(t, second)
	assert.True(t, c.IsExpired(generatedAt))
	assert.False(t, c.IsActive(generatedAt))

	used := newCode(t, "1234", 3)
	_, err := used.ValidateCode("1234", kernel.NewUUID(), generatedAt)
	require.NoError(t, err)
	assert.Empty(t, used.Expire(generatedAt))
	assert.Equal(t, dcc.Used, used.Status())
}

func TestDeliveryCode_ForceExpire(t *testing.T) {
	c := newCode(t, "1234", 3)
	c.Expire(generatedAt)

	_, err := c.ForceExpire("", "", generatedAt)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	events, err := c.ForceExpire("admin-7", "customer reported fraud", generatedAt.Add(time.Minute))

	require.NoError(t, err)
	require.Len(t, events, 1)
	expired := events[0].(dcc.ExpiredEvent)
	assert.True(t, expired.Forced)
	assert.Equal(t, "admin-7", expired.AdminID)
	assert.Equal(t, "customer reported fraud", expired.Reason)
	assert.Equal(t, "admin-7", c.ExpiredBy())
	assert.Equal(t, dcc.Expired, c.Status())
}

func TestDeliveryCode_IsExpiredByTime(t *testing.T) {
	c := newCode(t, "1234", 3)

	assert.False(t, c.IsExpired(c.ExpiresAt()))
	assert.True(t, c.IsExpired(c.ExpiresAt().Add(time.Nanosecond)))
	assert.Equal(t, dcc.Active, c.Status())
}

func TestRestoreDeliveryCode_RejectsTooManyAttempts(t *testing.T) {
	courier := kernel.NewUUID()
	attempt := dcc.Attempt{CourierID: courier, SubmittedCode: "0000", AttemptedAt: generatedAt}

	_, err := dcc.RestoreDeliveryCode(dcc.RestoreParams{
		OrderID:     kernel.NewUUID(),
		Code:        "1234",
		Status:      dcc.Expired,
		GeneratedAt: generatedAt,
		ExpiresAt:   generatedAt.Add(time.Hour),
		MaxAttempts: 1,
		Attempts:    []dcc.Attempt{attempt, attempt},
	})

	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestIsWellFormed(t *testing.T) {
	assert.True(t, dcc.IsWellFormed("0000"))
	assert.True(t, dcc.IsWellFormed("9999"))
	assert.False(t, dcc.IsWellFormed(" 123"))
	assert.False(t, dcc.IsWellFormed(""))
}
