package workflowrules_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/adapters/out/workflowrules"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/workflow"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/ports"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockWorkflowRulesRepository struct {
	mock.Mock
}

func (m *MockWorkflowRulesRepository) ListMerchantWorkflows(ctx context.Context) ([]ports.MerchantWorkflow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.MerchantWorkflow), args.Error(1)
}

func TestRegistry_FallsBackToDefaultVertical(t *testing.T) {
	registry, err := workflowrules.NewRegistry(&MockWorkflowRulesRepository{}, zap.NewNop())
	require.NoError(t, err)

	rules := registry.WorkflowRules(kernel.NewUUID())

	assert.Equal(t, workflow.DefaultVertical, rules.Vertical())
	assert.False(t, rules.RequiresDeliveryConfirmation())
	assert.Zero(t, registry.Len())
}

func TestRegistry_Reload(t *testing.T) {
	restaurantID := kernel.NewUUID()
	groceryID := kernel.NewUUID()
	autoAccept := true

	repo := &MockWorkflowRulesRepository{}
	repo.On("ListMerchantWorkflows", mock.Anything).Return([]ports.MerchantWorkflow{
		{MerchantID: restaurantID, Vertical: workflow.Restaurant, Override: workflow.Override{
			AutoAccept:     &autoAccept,
			ManualStatuses: []order.Status{},
		}},
		{MerchantID: groceryID, Vertical: workflow.Grocery},
	}, nil).Once()

	registry, err := workflowrules.NewRegistry(repo, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, registry.Reload(context.Background()))

	assert.Equal(t, 2, registry.Len())
	restaurant := registry.WorkflowRules(restaurantID)
	assert.Equal(t, workflow.Restaurant, restaurant.Vertical())
	assert.True(t, restaurant.AutoAccept())
	assert.False(t, restaurant.RequiresManualAction(order.Preparing))
	assert.True(t, restaurant.MerchantID().IsEqual(restaurantID))

	grocery := registry.WorkflowRules(groceryID)
	assert.True(t, grocery.CanCancelFrom(order.OutForDelivery))
	repo.AssertExpectations(t)
}

func TestRegistry_ReloadKeepsPreviousRulesOnInconsistentOverride(t *testing.T) {
	merchantID := kernel.NewUUID()
	broken := kernel.NewUUID()

	repo := &MockWorkflowRulesRepository{}
	repo.On("ListMerchantWorkflows", mock.Anything).Return([]ports.MerchantWorkflow{
		{MerchantID: merchantID, Vertical: workflow.Pharmacy},
	}, nil).Once()
	repo.On("ListMerchantWorkflows", mock.Anything).Return([]ports.MerchantWorkflow{
		{MerchantID: merchantID, Vertical: workflow.Grocery},
		{MerchantID: broken, Vertical: workflow.Restaurant, Override: workflow.Override{
			Timeouts: map[order.Status]workflow.TimeoutRule{
				order.OutForDelivery: workflow.CancelAfter(time.Hour, order.DeliveryUnavailable, "late"),
			},
		}},
	}, nil).Once()

	registry, err := workflowrules.NewRegistry(repo, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, registry.Reload(context.Background()))

	err = registry.Reload(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), broken.String())
	assert.Equal(t, workflow.Pharmacy, registry.WorkflowRules(merchantID).Vertical())
	assert.Equal(t, workflow.DefaultVertical, registry.WorkflowRules(broken).Vertical())
}

func TestRegistry_ReloadRepositoryError(t *testing.T) {
	repo := &MockWorkflowRulesRepository{}
	repo.On("ListMerchantWorkflows", mock.Anything).Return(nil, errors.New("db down")).Once()
	registry, err := workflowrules.NewRegistry(repo, nil)
	require.NoError(t, err)

	err = registry.Reload(context.Background())

	require.ErrorContains(t, err, "db down")
}

func TestRegistry_Register(t *testing.T) {
	registry, err := workflowrules.NewRegistry(&MockWorkflowRulesRepository{}, zap.NewNop())
	require.NoError(t, err)
	merchantID := kernel.NewUUID()

	require.NoError(t, registry.Register(merchantID, workflow.Restaurant, workflow.Override{}))
	assert.Equal(t, workflow.Restaurant, registry.WorkflowRules(merchantID).Vertical())

	err = registry.Register(kernel.UUID{}, workflow.Restaurant, workflow.Override{})
	require.Error(t, err)
}

func TestNewRegistry_RequiresRepository(t *testing.T) {
	_, err := workflowrules.NewRegistry(nil, zap.NewNop())

	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestRegistry_ShortestTimeouts(t *testing.T) {
	registry, err := workflowrules.NewRegistry(&MockWorkflowRulesRepository{}, zap.NewNop())
	require.NoError(t, err)

	fallback := registry.ShortestTimeouts()
	assert.Equal(t, 24*time.Hour, fallback[order.PaymentConfirmed])
	assert.NotContains(t, fallback, order.Pending)

	require.NoError(t, registry.Register(kernel.NewUUID(), workflow.Grocery, workflow.Override{}))

	shortest := registry.ShortestTimeouts()
	assert.Equal(t, 2*time.Minute, shortest[order.PaymentConfirmed])
	assert.Equal(t, 15*time.Minute, shortest[order.PaymentProcessing])
}
