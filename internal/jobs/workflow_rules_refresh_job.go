package jobs

import (
	"context"

	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultRulesRefreshSchedule = "0 */5 * * * *"

type RulesReloader interface {
	Reload(ctx context.Context) error
}

// WorkflowRulesRefreshJob picks up merchant workflow changes made in the
// database. A failed reload keeps the rules already in memory.
type WorkflowRulesRefreshJob struct {
	reloader RulesReloader
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewWorkflowRulesRefreshJob(reloader RulesReloader, schedule string, log *zap.Logger) *WorkflowRulesRefreshJob {
	if schedule == "" {
		schedule = DefaultRulesRefreshSchedule
	}
	log = logger.Component(log, "workflow_rules_refresh_job")
	return &WorkflowRulesRefreshJob{
		reloader: reloader,
		schedule: schedule,
		cron:     newCron(log),
		logger:   log,
	}
}

func (j *WorkflowRulesRefreshJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { _ = j.Run(context.Background()) }); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("workflow rules refresh job started", zap.String("schedule", j.schedule))
	return nil
}

func (j *WorkflowRulesRefreshJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	if err := j.reloader.Reload(ctx); err != nil {
		j.logger.Error("workflow rules refresh failed, keeping previous rules", zap.Error(err))
		return err
	}
	return nil
}

func (j *WorkflowRulesRefreshJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("workflow rules refresh job stopped")
}
