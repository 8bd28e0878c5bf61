package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/application/usecases/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockOrderTimeoutsHandler struct {
	mock.Mock
}

func (m *MockOrderTimeoutsHandler) Handle(ctx context.Context, cmd commands.HandleOrderTimeoutsCommand) (int, error) {
	args := m.Called(ctx, cmd)
	return args.Int(0), args.Error(1)
}

type MockExpireDeliveryCodesHandler struct {
	mock.Mock
}

func (m *MockExpireDeliveryCodesHandler) Handle(ctx context.Context, cmd commands.ExpireDeliveryCodesCommand) (int, error) {
	args := m.Called(ctx, cmd)
	return args.Int(0), args.Error(1)
}

type MockRulesReloader struct {
	mock.Mock
}

func (m *MockRulesReloader) Reload(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestOrderTimeoutJob_Run(t *testing.T) {
	handler := &MockOrderTimeoutsHandler{}
	handler.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.HandleOrderTimeoutsCommand) bool {
		return cmd.BatchSize() == 25
	})).Return(3, nil).Once()
	log, logs := observed()

	job := NewOrderTimeoutJob(handler, "", 25, log)

	assert.Equal(t, 3, job.Run(context.Background()))
	assert.Equal(t, DefaultOrderTimeoutSchedule, job.schedule)
	assert.Equal(t, 1, logs.FilterMessage("orders timed out").Len())
	handler.AssertExpectations(t)
}

func TestOrderTimeoutJob_RunLogsFailure(t *testing.T) {
	handler := &MockOrderTimeoutsHandler{}
	handler.On("Handle", mock.Anything, mock.Anything).Return(1, errors.New("deadlock detected")).Once()
	log, logs := observed()

	job := NewOrderTimeoutJob(handler, "", 0, log)

	assert.Equal(t, 1, job.Run(context.Background()))
	failures := logs.FilterMessage("order timeout job failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, zapcore.ErrorLevel, failures[0].Level)
	assert.Equal(t, "order_timeout_job", failures[0].ContextMap()["component"])
}

func TestOrderTimeoutJob_QuietWhenNothingTimedOut(t *testing.T) {
	handler := &MockOrderTimeoutsHandler{}
	handler.On("Handle", mock.Anything, mock.Anything).Return(0, nil).Once()
	log, logs := observed()

	NewOrderTimeoutJob(handler, "", 0, log).Run(context.Background())

	assert.Zero(t, logs.Len())
}

func TestDeliveryCodeExpiryJob_UsesDefaultBatchSize(t *testing.T) {
	handler := &MockExpireDeliveryCodesHandler{}
	handler.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ExpireDeliveryCodesCommand) bool {
		return cmd.BatchSize() == commands.DefaultBatchSize
	})).Return(2, nil).Once()
	log, logs := observed()

	job := NewDeliveryCodeExpiryJob(handler, "", 0, log)

	assert.Equal(t, 2, job.Run(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("delivery codes expired").Len())
	handler.AssertExpectations(t)
}

func TestDeliveryCodeExpiryJob_RejectsNegativeBatchSize(t *testing.T) {
	handler := &MockExpireDeliveryCodesHandler{}
	log, logs := observed()

	job := NewDeliveryCodeExpiryJob(handler, "", -1, log)

	assert.Zero(t, job.Run(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("delivery code expiry job misconfigured").Len())
	handler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestWorkflowRulesRefreshJob_Run(t *testing.T) {
	reloader := &MockRulesReloader{}
	reloadErr := errors.New("workflow of merchant 42: unknown vertical")
	reloader.On("Reload", mock.Anything).Return(nil).Once()
	reloader.On("Reload", mock.Anything).Return(reloadErr).Once()
	log, logs := observed()

	job := NewWorkflowRulesRefreshJob(reloader, "", log)

	assert.NoError(t, job.Run(context.Background()))
	assert.ErrorIs(t, job.Run(context.Background()), reloadErr)
	assert.Equal(t, 1, logs.FilterMessage("workflow rules refresh failed, keeping previous rules").Len())
	reloader.AssertExpectations(t)
}

func TestJob_StartRejectsInvalidSchedule(t *testing.T) {
	job := NewWorkflowRulesRefreshJob(&MockRulesReloader{}, "every now and then", zap.NewNop())

	assert.Error(t, job.Start())
}

func TestJob_StartAndStop(t *testing.T) {
	log, logs := observed()
	job := NewOrderTimeoutJob(&MockOrderTimeoutsHandler{}, "0 0 3 * * *", 0, log)

	require.NoError(t, job.Start())
	job.Stop()

	assert.Equal(t, 1, logs.FilterMessage("order timeout job started").Len())
	assert.Equal(t, 1, logs.FilterMessage("order timeout job stopped").Len())
}

type fakeJob struct {
	name     string
	startErr error
	trace    *[]string
}

func (f fakeJob) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	*f.trace = append(*f.trace, "start "+f.name)
	return nil
}

func (f fakeJob) Stop() {
	*f.trace = append(*f.trace, "stop "+f.name)
}

func TestJobManager_StopsInReverseOrder(t *testing.T) {
	var trace []string
	jm := NewJobManager(fakeJob{name: "a", trace: &trace}, fakeJob{name: "b", trace: &trace})

	require.NoError(t, jm.StartAll())
	jm.StopAll()

	assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, trace)
}

func TestJobManager_StartFailureStopsRunningJobs(t *testing.T) {
	var trace []string
	boom := errors.New("bad schedule")
	jm := NewJobManager(
		fakeJob{name: "a", trace: &trace},
		fakeJob{name: "b", trace: &trace, startErr: boom},
		fakeJob{name: "c", trace: &trace},
	)

	err := jm.StartAll()

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"start a", "stop a"}, trace)

	jm.StopAll()
	assert.Equal(t, []string{"start a", "stop a"}, trace)
}
