package jobs

import (
	"context"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/application/usecases/commands"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultOrderTimeoutSchedule = "*/30 * * * * *"

type OrderTimeoutsHandler interface {
	Handle(ctx context.Context, cmd commands.HandleOrderTimeoutsCommand) (int, error)
}

// OrderTimeoutJob applies the workflow timeout actions to orders that stayed
// too long in their status.
type OrderTimeoutJob struct {
	handler   OrderTimeoutsHandler
	schedule  string
	batchSize int
	cron      *cron.Cron
	logger    *zap.Logger
}

// NewOrderTimeoutJob uses DefaultOrderTimeoutSchedule for an empty schedule
// and commands.DefaultBatchSize for a zero batch size.
func NewOrderTimeoutJob(handler OrderTimeoutsHandler, schedule string, batchSize int, log *zap.Logger) *OrderTimeoutJob {
	if schedule == "" {
		schedule = DefaultOrderTimeoutSchedule
	}
	log = logger.Component(log, "order_timeout_job")
	return &OrderTimeoutJob{
		handler:   handler,
		schedule:  schedule,
		batchSize: batchSize,
		cron:      newCron(log),
		logger:    log,
	}
}

func (j *OrderTimeoutJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("order timeout job started", zap.String("schedule", j.schedule))
	return nil
}

// Run processes one batch and returns how many orders timed out.
func (j *OrderTimeoutJob) Run(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	cmd, err := commands.NewHandleOrderTimeoutsCommand(j.batchSize)
	if err != nil {
		j.logger.Error("order timeout job misconfigured", zap.Error(err))
		return 0
	}

	started := time.Now()
	handled, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.Error("order timeout job failed", zap.Int("handled", handled), zap.Error(err))
		return handled
	}
	if handled > 0 {
		j.logger.Info("orders timed out", zap.Int("handled", handled), zap.Duration("took", time.Since(started)))
	}
	return handled
}

func (j *OrderTimeoutJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("order timeout job stopped")
}
