package commands

import (
	"context"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/services"
)

// RefundOrderCommandHandler refunds an order when both the refund policy and
// the payment method allow it.
type RefundOrderCommandHandler struct {
	uowFactory   OrderUoWFactory
	stateMachine *services.OrderStateMachine
}

func NewRefundOrderCommandHandler(uowFactory OrderUoWFactory, stateMachine *services.OrderStateMachine) RefundOrderCommandHandler {
	return RefundOrderCommandHandler{uowFactory: uowFactory, stateMachine: stateMachine}
}

func (h RefundOrderCommandHandler) Handle(ctx context.Context, cmd RefundOrderCommand) error {
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

	events, err := h.stateMachine.ProcessRefund(o, cmd.Reason())
	if err != nil {
		return err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	uow.RecordEvents(events...)
	return uow.Commit(ctx)
}
