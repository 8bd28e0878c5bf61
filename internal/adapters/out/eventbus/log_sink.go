package eventbus

import (
	"context"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/logger"

	"go.uber.org/zap"
)

// LogSink writes one info line per event.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Component(log, "domain_events")}
}

func (s *LogSink) Name() string {
	return "log"
}

func (s *LogSink) Send(_ context.Context, events []kernel.DomainEvent) error {
	for _, e := range events {
		s.logger.Info("domain event",
			zap.String("event_type", e.EventType()),
			zap.Stringer("event_id", e.EventID()),
			zap.Stringer("aggregate_id", e.AggregateID()),
			zap.Time("occurred_at", e.OccurredAt()))
	}
	return nil
}
