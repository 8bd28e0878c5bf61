package jobs

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronLogger routes the scheduler's own messages (skipped runs, recovered
// panics) to zap.
type cronLogger struct {
	logger *zap.SugaredLogger
}

var _ cron.Logger = cronLogger{}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}

// newCron builds a seconds-resolution scheduler that never overlaps runs of
// the same job and survives panics inside a run.
func newCron(log *zap.Logger) *cron.Cron {
	cl := cronLogger{logger: log.Sugar()}
	return cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
}
