package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/application/usecases/commands"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/dcc"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/workflow"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/ports"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCourierGuard struct{ mock.Mock }

func (m *MockCourierGuard) CheckCourier(ctx context.Context, courierID kernel.UUID) error {
	args := m.Called(ctx, courierID)
	return args.Error(0)
}

func confirmHandler(t *testing.T, s *store, guard commands.CourierGuard) commands.ConfirmDeliveryCommandHandler {
	t.Helper()
	clock := &testClock{now: placedAt}
	return commands.NewConfirmDeliveryCommandHandler(s.factory(), stateMachine(t, workflow.Restaurant, clock),
		guard, clock.Now)
}

func TestNewConfirmDeliveryCommand(t *testing.T) {
	_, err := commands.NewConfirmDeliveryCommand(kernel.NewUUID(), kernel.UUID{}, " ")
	require.ErrorContains(t, err, "courierId")
	require.ErrorContains(t, err, "code")
}

func TestConfirmDeliveryCommandHandler_Handle(t *testing.T) {
	courierID := kernel.NewUUID()

	t.Run("matching_code_delivers", func(t *testing.T) {
		s := newStore()
		o := seedOrder(t, s, order.CreditCard, order.OutForDelivery)
		code := seedCode(t, s, o.ID(), "1234", 3)

		cmd, err := commands.NewConfirmDeliveryCommand(o.ID(), courierID, "1234")
		require.NoError(t, err)
		require.NoError(t, confirmHandler(t, s, nil).Handle(t.Context(), cmd))

		assert.Equal(t, order.Delivered, o.Status())
		assert.Equal(t, dcc.Used, code.Status())
		assert.Equal(t, int64(2), o.Version())
		assert.Equal(t, int64(2), code.Version())
		assert.Equal(t, []string{dcc.EventTypeValidated, order.EventTypeStatusChanged}, s.eventTypes())
	})

	t.Run("wrong_code_survives_a_publish_failure", func(t *testing.T) {
		s := newStore()
		s.publishErr = errors.New("queue unavailable")
		o := seedOrder(t, s, order.CreditCard, order.OutForDelivery)
		code := seedCode(t, s, o.ID(), "1234", 3)

		cmd, err := commands.NewConfirmDeliveryCommand(o.ID(), courierID, "9999")
		require.NoError(t, err)
		err = confirmHandler(t, s, nil).Handle(t.Context(), cmd)

		var invalid *dcc.InvalidCodeError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, 2, invalid.RemainingAttempts)
		require.ErrorIs(t, err, ports.ErrPublishAfterCommit)
		assert.Equal(t, 1, code.AttemptCount())
		assert.Equal(t, 1, s.commits)
	})

	t.Run("wrong_code_is_recorded", func(t *testing.T) {
		s := newStore()
		o := seedOrder(t, s, order.CreditCard, order.OutForDelivery)
		code := seedCode(t, s, o.ID(), "1234", 3)

		cmd, err := commands.NewConfirmDeliveryCommand(o.ID(), courierID, "9999")
		require.NoError(t, err)
		err = confirmHandler(t, s, nil).Handle(t.Context(), cmd)

		var invalid *dcc.InvalidCodeError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, 2, invalid.RemainingAttempts)
		assert.Equal(t, order.OutForDelivery, o.Status())
		assert.Equal(t, 1, code.AttemptCount())
		assert.Equal(t, 1, s.commits)
		assert.Equal(t, []string{dcc.EventTypeValidationFailed}, s.eventTypes())
	})

	t.Run("last_attempt_expires_code", func(t *testing.T) {
		s := newStore()
		o := seedOrder(t, s, order.CreditCard, order.OutForDelivery)
		code := seedCode(t, s, o.ID(), "1234", 1)

		cmd, err := commands.NewConfirmDeliveryCommand(o.ID(), courierID, "4321")
		require.NoError(t, err)
		err = confirmHandler(t, s, nil).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, dcc.ErrMaxAttemptsExceeded)
		assert.Equal(t, dcc.Expired, code.Status())
		assert.Equal(t, []string{dcc.EventTypeValidationFailed, dcc.EventTypeExpired}, s.eventTypes())
	})

	t.Run("used_code_changes_nothing", func(t *testing.T) {
		s := newStore()
		o := seedOrder(t, s, order.CreditCard, order.OutForDelivery)
		code := seedCode(t, s, o.ID(), "1234", 3)
		_, err := code.ValidateCode("1234", courierID, placedAt)
		require.NoError(t, err)

		cmd, err := commands.NewConfirmDeliveryCommand(o.ID(), courierID, "1234")
		require.NoError(t, err)
		err = confirmHandler(t, s, nil).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, dcc.ErrCodeAlreadyUsed)
		assert.Zero(t, s.commits)
	})

	t.Run("order_not_out_for_delivery", func(t *testing.T) {
		s := newStore()
		o := seedOrder(t, s, order.CreditCard, order.Preparing)
		seedCode(t, s, o.ID(), "1234", 3)

		cmd, err := commands.NewConfirmDeliveryCommand(o.ID(), courierID, "1234")
		require.NoError(t, err)
		err = confirmHandler(t, s, nil).Handle(t.Context(), cmd)

		var transitionErr *order.InvalidStatusTransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, "confirm delivery of", transitionErr.Operation)
	})

	t.Run("missing_code", func(t *testing.T) {
		s := newStore()
		o := seedOrder(t, s, order.CreditCard, order.OutForDelivery)

		cmd, err := commands.NewConfirmDeliveryCommand(o.ID(), courierID, "1234")
		require.NoError(t, err)
		err = confirmHandler(t, s, nil).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("blocked_courier", func(t *testing.T) {
		s := newStore()
		o := seedOrder(t, s, order.CreditCard, order.OutForDelivery)
		code := seedCode(t, s, o.ID(), "1234", 3)

		blocked := errors.New("courier locked out")
		guard := new(MockCourierGuard)
		guard.On("CheckCourier", mock.Anything, courierID).Return(blocked).Once()

		cmd, err := commands.NewConfirmDeliveryCommand(o.ID(), courierID, "1234")
		require.NoError(t, err)
		err = confirmHandler(t, s, guard).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, blocked)
		assert.Zero(t, code.AttemptCount())
		assert.Equal(t, order.OutForDelivery, o.Status())
		guard.AssertExpectations(t)
	})

	t.Run("allowed_courier", func(t *testing.T) {
		s := newStore()
		o := seedOrder(t, s, order.CreditCard, order.OutForDelivery)
		seedCode(t, s, o.ID(), "1234", 3)

		guard := new(MockCourierGuard)
		guard.On("CheckCourier", mock.Anything, courierID).Return(nil).Once()

		cmd, err := commands.NewConfirmDeliveryCommand(o.ID(), courierID, "1234")
		require.NoError(t, err)
		require.NoError(t, confirmHandler(t, s, guard).Handle(t.Context(), cmd))

		assert.Equal(t, order.Delivered, o.Status())
		guard.AssertExpectations(t)
	})
}
