package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/application/usecases/commands"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/workflow"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListTimeoutCandidates(ctx context.Context, scan ports.TimeoutScan) ([]*order.Order, error) {
	args := m.Called(ctx, scan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) RecordEvents(events ...kernel.DomainEvent) {
	m.Called(events)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

func recordedTypes(events []kernel.DomainEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.EventType())
	}
	return out
}

func TestCreateOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	clock := &testClock{now: placedAt}
	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), items(),
		address(), order.MPesa, "")
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	var recorded []kernel.DomainEvent

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Add", ctx, mock.MatchedBy(func(o *order.Order) bool {
			return o.ID().IsEqual(cmd.OrderID()) && o.Status() == order.Pending
		})).Return(nil).Once(),
		uow.On("RecordEvents", mock.Anything).Run(func(args mock.Arguments) {
			recorded = args.Get(0).([]kernel.DomainEvent)
		}).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCreateOrderCommandHandler(factory, stateMachine(t, workflow.Restaurant, clock), clock.Now)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, []string{order.EventTypeCreated}, recordedTypes(recorded))
	created := recorded[0].(order.CreatedEvent)
	assert.Equal(t, "405.5", created.Total.String())
	orderRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	factory := new(MockOrderUoWFactory)
	clock := &testClock{now: placedAt}
	handler := commands.NewCreateOrderCommandHandler(factory, stateMachine(t, workflow.Restaurant, clock), clock.Now)

	err := handler.Handle(t.Context(), commands.CreateOrderCommand{})

	require.ErrorIs(t, err, commands.ErrCreateOrderCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func TestCreateOrderCommandHandler_Handle_AddError(t *testing.T) {
	ctx := t.Context()
	clock := &testClock{now: placedAt}
	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), items(),
		address(), order.MPesa, "")
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	orderRepo.On("Add", ctx, mock.AnythingOfType("*order.Order")).Return(errors.New("db down")).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCreateOrderCommandHandler(factory, stateMachine(t, workflow.Restaurant, clock), clock.Now)
	err = handler.Handle(ctx, cmd)

	require.EqualError(t, err, "db down")
	uow.AssertNotCalled(t, "Commit", ctx)
	uow.AssertNotCalled(t, "RecordEvents", mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_CashOrderAutoProgresses(t *testing.T) {
	tests := []struct {
		name     string
		vertical workflow.Vertical
		want     order.Status
		events   []string
	}{
		{
			name:     "restaurant_waits_for_acceptance",
			vertical: workflow.Restaurant,
			want:     order.PaymentConfirmed,
			events:   []string{order.EventTypeCreated, order.EventTypeStatusChanged},
		},
		{
			name:     "grocery_accepts_automatically",
			vertical: workflow.Grocery,
			want:     order.Preparing,
			events:   []string{order.EventTypeCreated, order.EventTypeStatusChanged, order.EventTypeStatusChanged},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore()
			clock := &testClock{now: placedAt}
			cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), items(),
				address(), order.CashOnDelivery, "")
			require.NoError(t, err)

			handler := commands.NewCreateOrderCommandHandler(s.orderFactory(), stateMachine(t, tt.vertical, clock), clock.Now)
			require.NoError(t, handler.Handle(t.Context(), cmd))

			stored := s.orders[cmd.OrderID()]
			require.NotNil(t, stored)
			assert.Equal(t, tt.want, stored.Status())
			assert.Equal(t, tt.events, s.eventTypes())
			assert.Equal(t, int64(1), stored.Version())
		})
	}
}
