package commands

import (
	"context"
)

// ForceExpireDeliveryCodeCommandHandler expires a code whatever its status.
type ForceExpireDeliveryCodeCommandHandler struct {
	uowFactory DeliveryCodeUoWFactory
	clock      Clock
}

func NewForceExpireDeliveryCodeCommandHandler(
	uowFactory DeliveryCodeUoWFactory,
	clock Clock,
) ForceExpireDeliveryCodeCommandHandler {
	return ForceExpireDeliveryCodeCommandHandler{uowFactory: uowFactory, clock: clock}
}

func (h ForceExpireDeliveryCodeCommandHandler) Handle(ctx context.Context, cmd ForceExpireDeliveryCodeCommand) error {
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

	codeRepo := uow.DeliveryCodeRepository()
	code, err := codeRepo.GetByOrder(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	events, err := code.ForceExpire(cmd.AdminID(), cmd.Reason(), h.clock.now())
	if err != nil {
		return err
	}
	if err = codeRepo.Update(ctx, code); err != nil {
		return err
	}

	uow.RecordEvents(events...)
	return uow.Commit(ctx)
}
