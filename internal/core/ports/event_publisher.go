package ports

import (
	"context"
	"errors"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
)

// ErrPublishAfterCommit marks a Commit whose data was saved but whose events
// could not be published.
var ErrPublishAfterCommit = errors.New("committed, but publishing events failed")

// EventPublisher delivers domain events in the order given. Implementations
// must not reorder events of the same aggregate.
type EventPublisher interface {
	Publish(ctx context.Context, events ...kernel.DomainEvent) error
}
