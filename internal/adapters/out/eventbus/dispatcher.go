// Package eventbus delivers committed domain events in process. Every event
// goes to the subscribers first, in registration order, and then to the
// sinks that forward it out of the process.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/logger"

	"go.uber.org/zap"
)

// Subscriber reacts to events inside the process.
type Subscriber interface {
	HandleEvent(ctx context.Context, event kernel.DomainEvent) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, event kernel.DomainEvent) error

func (f SubscriberFunc) HandleEvent(ctx context.Context, event kernel.DomainEvent) error {
	return f(ctx, event)
}

// Sink forwards a batch of events, in order, to an external system.
type Sink interface {
	Name() string
	Send(ctx context.Context, events []kernel.DomainEvent) error
}

// Dispatcher implements ports.EventPublisher.
//
// A failing subscriber or sink does not stop delivery to the others; all
// failures are returned joined. Subscribers may publish from HandleEvent,
// those events are dispatched before the call returns.
//
// Example:
//
//	bus := eventbus.NewDispatcher(log)
//	bus.AddSink(eventbus.NewLogSink(log))
//	bus.Subscribe(security)
//	factory := postgres.NewGormUnitOfWorkFactory(db, bus)
type Dispatcher struct {
	logger *zap.Logger

	mu          sync.RWMutex
	subscribers []Subscriber
	sinks       []Sink
}

func NewDispatcher(log *zap.Logger) *Dispatcher {
	return &Dispatcher{logger: logger.Component(log, "event_bus")}
}

func (d *Dispatcher) Subscribe(s Subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, s)
}

func (d *Dispatcher) AddSink(s Sink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks = append(d.sinks, s)
}

func (d *Dispatcher) Publish(ctx context.Context, events ...kernel.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	d.mu.RLock()
	subscribers := slices.Clone(d.subscribers)
	sinks := slices.Clone(d.sinks)
	d.mu.RUnlock()

	var failures []error
	for _, event := range events {
		for _, s := range subscribers {
			if err := s.HandleEvent(ctx, event); err != nil {
				d.logger.Error("event subscriber failed",
					zap.String("event_type", event.EventType()),
					zap.Stringer("event_id", event.EventID()),
					zap.Error(err))
				failures = append(failures, fmt.Errorf("%s: %w", event.EventType(), err))
			}
		}
	}

	for _, s := range sinks {
		if err := s.Send(ctx, events); err != nil {
			d.logger.Error("event sink failed",
				zap.String("sink", s.Name()),
				zap.Int("events", len(events)),
				zap.Error(err))
			failures = append(failures, fmt.Errorf("sink %s: %w", s.Name(), err))
		}
	}

	return errors.Join(failures...)
}
