package commands

import (
	"context"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/services"
)

// CancelOrderCommandHandler cancels an order when the merchant's
// cancellation policy allows it from the current status.
type CancelOrderCommandHandler struct {
	uowFactory   OrderUoWFactory
	stateMachine *services.OrderStateMachine
}

func NewCancelOrderCommandHandler(uowFactory OrderUoWFactory, stateMachine *services.OrderStateMachine) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{uowFactory: uowFactory, stateMachine: stateMachine}
}

func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
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

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	events, err := h.stateMachine.CancelOrder(o, cmd.Reason(), cmd.Details())
	if err != nil {
		return err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	uow.RecordEvents(events...)
	return uow.Commit(ctx)
}
