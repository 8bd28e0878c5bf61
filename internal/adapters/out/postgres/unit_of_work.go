// Package postgres provides the GORM implementation of the unit of work.
//
// A unit of work wraps one database transaction. Repositories obtained from
// it run inside the transaction once Begin was called and on the plain
// connection otherwise, which read-only callers rely on. Domain events
// recorded during the transaction are handed to the publisher only after a
// successful commit, in recording order.
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.OrderRepository().Update(ctx, o); err != nil {
//	    return err
//	}
//	uow.RecordEvents(events...)
//
//	return uow.Commit(ctx)
package postgres

import (
	"context"
	"fmt"

	"github.com/fxavier/mozdelivery-api-sub003/internal/adapters/out/postgres/dccrepo"
	"github.com/fxavier/mozdelivery-api-sub003/internal/adapters/out/postgres/orderrepo"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/ports"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection
// pool and one event publisher.
type GormUnitOfWorkFactory struct {
	db        *gorm.DB
	publisher ports.EventPublisher
}

// NewGormUnitOfWorkFactory creates the factory. A nil publisher drops
// recorded events.
func NewGormUnitOfWorkFactory(db *gorm.DB, publisher ports.EventPublisher) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db, publisher: publisher}
}

// Create produces a fresh unit of work. Instances are not safe for
// concurrent use; every operation gets its own.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{db: f.db, publisher: f.publisher}
}

// GormUnitOfWork coordinates one transaction and the events it produced.
type GormUnitOfWork struct {
	db        *gorm.DB
	tx        *gorm.DB
	publisher ports.EventPublisher
	events    []kernel.DomainEvent
}

// Begin starts the transaction. Calling it again while a transaction is
// open is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit commits and then publishes the recorded events. When publishing
// fails the data stays committed and the error says so.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	events := uow.events
	uow.events = nil
	if err != nil {
		return err
	}

	if uow.publisher == nil || len(events) == 0 {
		return nil
	}
	if err = uow.publisher.Publish(ctx, events...); err != nil {
		return fmt.Errorf("%w (%d events): %w", ports.ErrPublishAfterCommit, len(events), err)
	}
	return nil
}

// Rollback discards the transaction and the recorded events. Without an
// open transaction it returns gorm.ErrInvalidTransaction, which deferred
// calls after Commit ignore.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	uow.events = nil
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

// RecordEvents queues events for publication after Commit.
func (uow *GormUnitOfWork) RecordEvents(events ...kernel.DomainEvent) {
	uow.events = append(uow.events, events...)
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn())
}

func (uow *GormUnitOfWork) DeliveryCodeRepository() ports.DeliveryCodeRepository {
	return dccrepo.NewGormDeliveryCodeRepository(uow.conn())
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
