// Package commands contains business operations that modify system state.
// Every handler follows the same shape: validate the command, open a unit of
// work, load aggregates, let the domain decide, persist, record the emitted
// events and commit. Events reach subscribers only after a successful commit.
package commands

import (
	"context"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// EventRecorder queues domain events for publication after commit.
	EventRecorder interface {
		RecordEvents(events ...kernel.DomainEvent)
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// DeliveryCodeRepoFactory provides access to delivery codes within a transaction.
	DeliveryCodeRepoFactory interface {
		DeliveryCodeRepository() ports.DeliveryCodeRepository
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		EventRecorder
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// DeliveryCodeUoW manages transactions that only touch delivery codes.
	DeliveryCodeUoW interface {
		TxManager
		EventRecorder
		DeliveryCodeRepoFactory
	}

	DeliveryCodeUoWFactory interface {
		Create() DeliveryCodeUoW
	}

	// UoW spans orders and their delivery codes.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   o, err := uow.OrderRepository().Get(ctx, id)
	//   code, err := uow.DeliveryCodeRepository().GetByOrder(ctx, id)
	//   // ... mutate, Update, RecordEvents
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		EventRecorder
		OrderRepoFactory
		DeliveryCodeRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)

// Collaborators outside the unit of work.
type (
	// CourierGuard decides whether a courier may submit a delivery code.
	CourierGuard interface {
		CheckCourier(ctx context.Context, courierID kernel.UUID) error
	}

	// LockoutClearer lifts a courier's lockout.
	LockoutClearer interface {
		ClearLockout(ctx context.Context, courierID kernel.UUID, adminID, reason string) error
	}
)

// Clock returns the current time. Handlers default to time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
