package commands

import (
	"context"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/services"
)

// AutoProgressOrderCommandHandler applies every automatic step the order is
// eligible for. An ineligible order is left untouched and nothing is written.
type AutoProgressOrderCommandHandler struct {
	uowFactory   OrderUoWFactory
	stateMachine *services.OrderStateMachine
}

func NewAutoProgressOrderCommandHandler(
	uowFactory OrderUoWFactory,
	stateMachine *services.OrderStateMachine,
) AutoProgressOrderCommandHandler {
	return AutoProgressOrderCommandHandler{uowFactory: uowFactory, stateMachine: stateMachine}
}

func (h AutoProgressOrderCommandHandler) Handle(ctx context.Context, cmd AutoProgressOrderCommand) error {
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

	events, err := autoProgress(h.stateMachine, o)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	uow.RecordEvents(events...)
	return uow.Commit(ctx)
}
