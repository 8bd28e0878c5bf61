package jobs

import (
	"context"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/application/usecases/commands"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultDeliveryCodeExpirySchedule = "0 * * * * *"

type ExpireDeliveryCodesHandler interface {
	Handle(ctx context.Context, cmd commands.ExpireDeliveryCodesCommand) (int, error)
}

// DeliveryCodeExpiryJob moves active delivery codes past their expiry time to
// EXPIRED so their events reach subscribers without waiting for a courier.
type DeliveryCodeExpiryJob struct {
	handler   ExpireDeliveryCodesHandler
	schedule  string
	batchSize int
	cron      *cron.Cron
	logger    *zap.Logger
}

func NewDeliveryCodeExpiryJob(
	handler ExpireDeliveryCodesHandler,
	schedule string,
	batchSize int,
	log *zap.Logger,
) *DeliveryCodeExpiryJob {
	if schedule == "" {
		schedule = DefaultDeliveryCodeExpirySchedule
	}
	log = logger.Component(log, "delivery_code_expiry_job")
	return &DeliveryCodeExpiryJob{
		handler:   handler,
		schedule:  schedule,
		batchSize: batchSize,
		cron:      newCron(log),
		logger:    log,
	}
}

func (j *DeliveryCodeExpiryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("delivery code expiry job started", zap.String("schedule", j.schedule))
	return nil
}

func (j *DeliveryCodeExpiryJob) Run(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	cmd, err := commands.NewExpireDeliveryCodesCommand(j.batchSize)
	if err != nil {
		j.logger.Error("delivery code expiry job misconfigured", zap.Error(err))
		return 0
	}

	expired, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.Error("delivery code expiry job failed", zap.Int("expired", expired), zap.Error(err))
		return expired
	}
	if expired > 0 {
		j.logger.Info("delivery codes expired", zap.Int("expired", expired))
	}
	return expired
}

func (j *DeliveryCodeExpiryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("delivery code expiry job stopped")
}
