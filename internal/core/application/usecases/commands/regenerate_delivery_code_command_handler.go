package commands

import (
	"context"
	"errors"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/services"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
)

// ErrOrderNotOutForDelivery is returned by delivery code operations on
// orders that are not being delivered.
var ErrOrderNotOutForDelivery = errors.New("order is not out for delivery")

// RegenerateDeliveryCodeCommandHandler replaces the order's code. The
// previous code, when still active, expires first.
type RegenerateDeliveryCodeCommandHandler struct {
	uowFactory UoWFactory
	codes      *services.DCCGenerationService
}

func NewRegenerateDeliveryCodeCommandHandler(
	uowFactory UoWFactory,
	codes *services.DCCGenerationService,
) RegenerateDeliveryCodeCommandHandler {
	return RegenerateDeliveryCodeCommandHandler{uowFactory: uowFactory, codes: codes}
}

func (h RegenerateDeliveryCodeCommandHandler) Handle(ctx context.Context, cmd RegenerateDeliveryCodeCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if o.Status() != order.OutForDelivery {
		return ErrOrderNotOutForDelivery
	}

	codeRepo := uow.DeliveryCodeRepository()
	previous, err := codeRepo.GetByOrder(ctx, o.ID())
	if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
		return err
	}

	defaults := h.codes.Defaults()
	expiration, maxAttempts := cmd.Expiration(), cmd.MaxAttempts()
	if expiration == 0 {
		expiration = defaults.Expiration
	}
	if maxAttempts == 0 {
		maxAttempts = defaults.MaxAttempts
	}

	next, events, err := h.codes.RegenerateCode(o.ID(), previous, expiration, maxAttempts)
	if err != nil {
		return err
	}

	if previous == nil {
		err = codeRepo.Add(ctx, next)
	} else {
		err = codeRepo.Replace(ctx, previous, next)
	}
	if err != nil {
		return err
	}

	uow.RecordEvents(events...)
	return uow.Commit(ctx)
}
