package errs_test

import (
	"errors"
	"testing"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errCodeNotIssued = errors.New("delivery code was never issued")

func TestObjectNotFoundError(t *testing.T) {
	t.Run("without_cause", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("delivery code", "5b0c1c1e")

		assert.Equal(t, "delivery code", err.ParamName)
		assert.Equal(t, "5b0c1c1e", err.ID)
		assert.Equal(t, "object not found: delivery code 5b0c1c1e", err.Error())
		assert.Equal(t, []error{errs.ErrObjectNotFound}, err.Unwrap())
	})

	t.Run("with_cause", func(t *testing.T) {
		err := errs.NewObjectNotFoundErrorWithCause("delivery code", "5b0c1c1e", errCodeNotIssued)

		assert.Equal(t,
			"object not found: delivery code 5b0c1c1e (cause: delivery code was never issued)",
			err.Error())
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
		require.ErrorIs(t, err, errCodeNotIssued)
	})
}

func TestValueIsInvalidError(t *testing.T) {
	t.Run("without_cause", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("paymentMethod")

		assert.Equal(t, "value is invalid: paymentMethod", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.NotErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("with_cause", func(t *testing.T) {
		cause := errors.New(`"BITCOIN" is not a payment method`)
		err := errs.NewValueIsInvalidErrorWithCause("paymentMethod", cause)

		assert.Equal(t, `value is invalid: paymentMethod (cause: "BITCOIN" is not a payment method)`, err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		require.ErrorIs(t, err, cause)
	})
}

func TestValueIsOutOfRangeError(t *testing.T) {
	t.Run("without_cause", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("maxAttempts", 12, 1, 10)

		assert.Equal(t, 12, err.Value)
		assert.Equal(t, "value is out of range: maxAttempts is 12, min value is 1, max value is 10", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("with_cause", func(t *testing.T) {
		cause := errors.New("window exceeds retention")
		err := errs.NewValueIsOutOfRangeErrorWithCause("window", 30*24*time.Hour, time.Minute, 7*24*time.Hour, cause)

		assert.Equal(t,
			"value is out of range: window is 720h0m0s, min value is 1m0s, max value is 168h0m0s "+
				"(cause: window exceeds retention)",
			err.Error())
		require.ErrorIs(t, err, cause)
	})

	t.Run("line_breaks_are_flattened", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("reason", "line1\nline2", 0, 0)

		assert.NotContains(t, err.Error(), "\n")
	})
}

func TestValueIsRequiredError(t *testing.T) {
	t.Run("without_cause", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("courierId")

		assert.Equal(t, "value is required: courierId", err.Error())
		assert.Equal(t, []error{errs.ErrValueIsRequired}, err.Unwrap())
	})

	t.Run("with_cause_keeps_both_in_chain", func(t *testing.T) {
		err := errs.NewValueIsRequiredErrorWithCause("orderId", errCodeNotIssued)

		assert.Equal(t, "value is required: orderId (cause: delivery code was never issued)", err.Error())
		assert.Equal(t, []error{errs.ErrValueIsRequired, errCodeNotIssued}, err.Unwrap())
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, errCodeNotIssued)
	})
}

func TestErrorsAsThroughJoin(t *testing.T) {
	joined := errors.Join(
		errs.NewValueIsRequiredError("courierId"),
		errs.NewValueIsInvalidError("code"),
	)

	var invalid *errs.ValueIsInvalidError
	require.ErrorAs(t, joined, &invalid)
	assert.Equal(t, "code", invalid.ParamName)
	require.ErrorIs(t, joined, errs.ErrValueIsRequired)
}
