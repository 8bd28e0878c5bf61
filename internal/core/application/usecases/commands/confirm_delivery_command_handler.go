package commands

import (
	"context"
	"errors"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/services"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/ports"
)

// ConfirmDeliveryCommandHandler validates the delivery code and, on a match,
// completes the order.
//
// A rejected code still changes state: the attempt is counted and the code
// may expire. Those changes are committed and their events published before
// the validation error is returned, so the attempt budget cannot be reset
// by failing requests. When only the publication fails, the validation
// error is still returned, joined with the publish error.
type ConfirmDeliveryCommandHandler struct {
	uowFactory   UoWFactory
	stateMachine *services.OrderStateMachine
	guard        CourierGuard
	clock        Clock
}

func NewConfirmDeliveryCommandHandler(
	uowFactory UoWFactory,
	stateMachine *services.OrderStateMachine,
	guard CourierGuard,
	clock Clock,
) ConfirmDeliveryCommandHandler {
	return ConfirmDeliveryCommandHandler{
		uowFactory:   uowFactory,
		stateMachine: stateMachine,
		guard:        guard,
		clock:        clock,
	}
}

func (h ConfirmDeliveryCommandHandler) Handle(ctx context.Context, cmd ConfirmDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if h.guard != nil {
		if err := h.guard.CheckCourier(ctx, cmd.CourierID()); err != nil {
			return err
		}
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if !h.stateMachine.CanTransition(o, order.Delivered) {
		return order.NewInvalidStatusTransitionError("confirm delivery of", o.ID(), o.Status(), order.Delivered,
			"order is not out for delivery")
	}

	codeRepo := uow.DeliveryCodeRepository()
	code, err := codeRepo.GetByOrder(ctx, o.ID())
	if err != nil {
		return err
	}

	events, validationErr := code.ValidateCode(cmd.Code(), cmd.CourierID(), h.clock.now())
	if validationErr != nil {
		if len(events) == 0 {
			return validationErr
		}
		if err = codeRepo.Update(ctx, code); err != nil {
			return err
		}
		uow.RecordEvents(events...)
		if err = uow.Commit(ctx); err != nil {
			if errors.Is(err, ports.ErrPublishAfterCommit) {
				return errors.Join(validationErr, err)
			}
			return err
		}
		return validationErr
	}

	delivered, err := h.stateMachine.ExecuteTransition(o, order.Delivered)
	if err != nil {
		return err
	}
	if err = codeRepo.Update(ctx, code); err != nil {
		return err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	uow.RecordEvents(append(events, delivered...)...)
	return uow.Commit(ctx)
}
