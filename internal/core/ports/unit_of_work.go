package ports

import (
	"context"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
)

// UnitOfWorkFactory creates a new UnitOfWork for each command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// Client code must explicitly manage transaction lifecycle.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction and then publishes the
	// recorded events. A publishing failure is reported after the data is
	// already committed.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction and drops recorded events.
	Rollback(ctx context.Context) error

	// RecordEvents queues events for publication after a successful Commit.
	RecordEvents(events ...kernel.DomainEvent)

	OrderRepository() OrderRepository
	DeliveryCodeRepository() DeliveryCodeRepository
}
