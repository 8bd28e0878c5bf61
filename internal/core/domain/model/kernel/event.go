package kernel

import "time"

// DomainEvent is a fact emitted by an aggregate mutation. Aggregates return
// events to their caller instead of buffering them, and the slice order is
// the order subscribers must observe.
type DomainEvent interface {
	EventID() UUID
	EventType() string
	AggregateID() UUID
	OccurredAt() time.Time
}

// BaseEvent carries the envelope shared by every domain event and is meant
// to be embedded.
type BaseEvent struct {
	id          UUID
	eventType   string
	aggregateID UUID
	occurredAt  time.Time
}

func NewBaseEvent(eventType string, aggregateID UUID, occurredAt time.Time) BaseEvent {
	return BaseEvent{
		id:          NewUUID(),
		eventType:   eventType,
		aggregateID: aggregateID,
		occurredAt:  occurredAt.UTC(),
	}
}

func (e BaseEvent) EventID() UUID {
	return e.id
}

func (e BaseEvent) EventType() string {
	return e.eventType
}

func (e BaseEvent) AggregateID() UUID {
	return e.aggregateID
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}
