package commands_test

import (
	"testing"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/application/usecases/commands"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelOrderCommandHandler_Handle(t *testing.T) {
	tests := []struct {
		name     string
		vertical workflow.Vertical
		status   order.Status
		wantErr  bool
	}{
		{name: "restaurant_before_pickup", vertical: workflow.Restaurant, status: order.Preparing},
		{name: "restaurant_on_the_road", vertical: workflow.Restaurant, status: order.OutForDelivery, wantErr: true},
		{name: "grocery_on_the_road", vertical: workflow.Grocery, status: order.OutForDelivery},
		{name: "delivered", vertical: workflow.Grocery, status: order.Delivered, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore()
			clock := &testClock{now: placedAt}
			o := seedOrder(t, s, order.MPesa, tt.status)
			cmd, err := commands.NewCancelOrderCommand(o.ID(), order.CustomerRequest, "changed my mind")
			require.NoError(t, err)

			handler := commands.NewCancelOrderCommandHandler(s.orderFactory(), stateMachine(t, tt.vertical, clock))
			err = handler.Handle(t.Context(), cmd)

			if tt.wantErr {
				require.ErrorIs(t, err, order.ErrInvalidStatusTransition)
				assert.Equal(t, tt.status, o.Status())
				assert.Zero(t, s.commits)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, order.Cancelled, o.Status())
			assert.Equal(t, order.CustomerRequest, o.CancellationReason())
			assert.Equal(t, "changed my mind", o.CancellationDetails())
			assert.Equal(t, []string{order.EventTypeStatusChanged, order.EventTypeCancelled}, s.eventTypes())
		})
	}
}

func TestRefundOrderCommand_ReasonIsRequired(t *testing.T) {
	_, err := commands.NewRefundOrderCommand(seedOrder(t, newStore(), order.MPesa, order.Delivered).ID(), "  ")
	require.ErrorContains(t, err, "reason")
}

func TestRefundOrderCommandHandler_Handle(t *testing.T) {
	tests := []struct {
		name     string
		vertical workflow.Vertical
		method   order.PaymentMethod
		status   order.Status
		wantErr  bool
	}{
		{name: "delivered_card_order", vertical: workflow.Restaurant, method: order.CreditCard, status: order.Delivered},
		{name: "cancelled_mpesa_order", vertical: workflow.Grocery, method: order.MPesa, status: order.Cancelled},
		{name: "cash_is_never_refunded", vertical: workflow.Restaurant, method: order.CashOnDelivery, status: order.Delivered, wantErr: true},
		{name: "pharmacy_cancelled", vertical: workflow.Pharmacy, method: order.CreditCard, status: order.Cancelled, wantErr: true},
		{name: "still_preparing", vertical: workflow.Restaurant, method: order.CreditCard, status: order.Preparing, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore()
			clock := &testClock{now: placedAt}
			o := seedOrder(t, s, tt.method, tt.status)
			cmd, err := commands.NewRefundOrderCommand(o.ID(), "damaged goods")
			require.NoError(t, err)

			handler := commands.NewRefundOrderCommandHandler(s.orderFactory(), stateMachine(t, tt.vertical, clock))
			err = handler.Handle(t.Context(), cmd)

			if tt.wantErr {
				require.ErrorIs(t, err, order.ErrInvalidStatusTransition)
				assert.Equal(t, tt.status, o.Status())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, order.Refunded, o.Status())
			assert.Equal(t, "damaged goods", o.RefundReason())
			assert.Equal(t, []string{order.EventTypeStatusChanged, order.EventTypeRefundRequested}, s.eventTypes())
		})
	}
}

func TestAutoProgressOrderCommandHandler_Handle(t *testing.T) {
	t.Run("cash_grocery_order", func(t *testing.T) {
		s := newStore()
		clock := &testClock{now: placedAt}
		o := seedOrder(t, s, order.CashOnDelivery, order.Pending)
		cmd, err := commands.NewAutoProgressOrderCommand(o.ID())
		require.NoError(t, err)

		handler := commands.NewAutoProgressOrderCommandHandler(s.orderFactory(), stateMachine(t, workflow.Grocery, clock))
		require.NoError(t, handler.Handle(t.Context(), cmd))

		assert.Equal(t, order.Preparing, o.Status())
		assert.Equal(t, []string{order.EventTypeStatusChanged, order.EventTypeStatusChanged}, s.eventTypes())
		assert.Equal(t, 1, s.updates)
	})

	t.Run("nothing_to_do", func(t *testing.T) {
		s := newStore()
		clock := &testClock{now: placedAt}
		o := seedOrder(t, s, order.CreditCard, order.Pending)
		cmd, err := commands.NewAutoProgressOrderCommand(o.ID())
		require.NoError(t, err)

		handler := commands.NewAutoProgressOrderCommandHandler(s.orderFactory(), stateMachine(t, workflow.Grocery, clock))
		require.NoError(t, handler.Handle(t.Context(), cmd))

		assert.Equal(t, order.Pending, o.Status())
		assert.Zero(t, s.updates)
		assert.Zero(t, s.commits)
	})
}
