package commands_test

import (
	"testing"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/application/usecases/commands"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/dcc"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regenerateHandler(t *testing.T, s *store) commands.RegenerateDeliveryCodeCommandHandler {
	t.Helper()
	return commands.NewRegenerateDeliveryCodeCommandHandler(s.factory(), codeService(t, 42, &testClock{now: placedAt}))
}

func TestNewRegenerateDeliveryCodeCommand(t *testing.T) {
	_, err := commands.NewRegenerateDeliveryCodeCommand(kernel.NewUUID(), -time.Minute, 0)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	_, err = commands.NewRegenerateDeliveryCodeCommand(kernel.NewUUID(), 0, -1)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	cmd, err := commands.NewRegenerateDeliveryCodeCommand(kernel.NewUUID(), 0, 0)
	require.NoError(t, err)
	assert.Zero(t, cmd.Expiration())
}

func TestRegenerateDeliveryCodeCommandHandler_Handle(t *testing.T) {
	t.Run("replaces_active_code", func(t *testing.T) {
		s := newStore()
		o := seedOrder(t, s, order.CreditCard, order.OutForDelivery)
		previous := seedCode(t, s, o.ID(), "1234", 3)

		cmd, err := commands.NewRegenerateDeliveryCodeCommand(o.ID(), 0, 0)
		require.NoError(t, err)
		require.NoError(t, regenerateHandler(t, s).Handle(t.Context(), cmd))

		assert.Equal(t, dcc.Expired, previous.Status())
		next := s.codes[o.ID()]
		assert.Equal(t, "0042", next.Code())
		assert.Equal(t, int64(2), next.Version())
		assert.Equal(t, placedAt.Add(24*time.Hour), next.ExpiresAt())
		assert.Equal(t, []string{dcc.EventTypeExpired, dcc.EventTypeGenerated}, s.eventTypes())
	})

	t.Run("issues_first_code_with_custom_policy", func(t *testing.T) {
		s := newStore()
		o := seedOrder(t, s, order.CreditCard, order.OutForDelivery)

		cmd, err := commands.NewRegenerateDeliveryCodeCommand(o.ID(), 2*time.Hour, 5)
		require.NoError(t, err)
		require.NoError(t, regenerateHandler(t, s).Handle(t.Context(), cmd))

		code := s.codes[o.ID()]
		require.NotNil(t, code)
		assert.Equal(t, 5, code.MaxAttempts())
		assert.Equal(t, placedAt.Add(2*time.Hour), code.ExpiresAt())
		assert.Equal(t, int64(1), code.Version())
		assert.Equal(t, []string{dcc.EventTypeGenerated}, s.eventTypes())
	})

	t.Run("out_of_range_policy", func(t *testing.T) {
		s := newStore()
		o := seedOrder(t, s, order.CreditCard, order.OutForDelivery)

		cmd, err := commands.NewRegenerateDeliveryCodeCommand(o.ID(), 30*time.Second, 0)
		require.NoError(t, err)

		err = regenerateHandler(t, s).Handle(t.Context(), cmd)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		assert.Empty(t, s.codes)
	})

	t.Run("order_not_out_for_delivery", func(t *testing.T) {
		s := newStore()
		o := seedOrder(t, s, order.CreditCard, order.Preparing)

		cmd, err := commands.NewRegenerateDeliveryCodeCommand(o.ID(), 0, 0)
		require.NoError(t, err)

		err = regenerateHandler(t, s).Handle(t.Context(), cmd)
		require.ErrorIs(t, err, commands.ErrOrderNotOutForDelivery)
	})
}
