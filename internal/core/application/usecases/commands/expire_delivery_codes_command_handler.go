package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/dcc"
)

// ExpireDeliveryCodesCommandHandler applies natural expiry to stale codes,
// one unit of work per code.
type ExpireDeliveryCodesCommandHandler struct {
	uowFactory DeliveryCodeUoWFactory
	clock      Clock
}

func NewExpireDeliveryCodesCommandHandler(
	uowFactory DeliveryCodeUoWFactory,
	clock Clock,
) ExpireDeliveryCodesCommandHandler {
	return ExpireDeliveryCodesCommandHandler{uowFactory: uowFactory, clock: clock}
}

// Handle returns the number of codes it expired.
func (h ExpireDeliveryCodesCommandHandler) Handle(ctx context.Context, cmd ExpireDeliveryCodesCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	now := h.clock.now()
	stale, err := h.uowFactory.Create().DeliveryCodeRepository().ListActiveExpiredBefore(ctx, now, cmd.BatchSize())
	if err != nil {
		return 0, err
	}

	expired := 0
	var failures []error
	for _, code := range stale {
		if err = h.expire(ctx, code); err != nil {
			failures = append(failures, fmt.Errorf("delivery code of order %s: %w", code.OrderID(), err))
			continue
		}
		expired++
	}

	return expired, errors.Join(failures...)
}

func (h ExpireDeliveryCodesCommandHandler) expire(ctx context.Context, code *dcc.DeliveryCode) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	events := code.Expire(h.clock.now())
	if len(events) == 0 {
		return nil
	}
	if err := uow.DeliveryCodeRepository().Update(ctx, code); err != nil {
		return err
	}

	uow.RecordEvents(events...)
	return uow.Commit(ctx)
}
