package commands

import (
	"context"
	"errors"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/services"
)

// ErrDeliveryConfirmationRequired is returned when a merchant's workflow
// requires a delivery code and Delivered is requested directly.
var ErrDeliveryConfirmationRequired = errors.New("delivery must be confirmed with the delivery code")

// ChangeOrderStatusCommandHandler applies a generic status change.
//
// Two status changes carry extra work: entering OutForDelivery issues a
// delivery code when the workflow requires delivery confirmation, and
// Delivered is refused for those workflows because only
// ConfirmDeliveryCommandHandler may complete them.
type ChangeOrderStatusCommandHandler struct {
	uowFactory   UoWFactory
	stateMachine *services.OrderStateMachine
	codes        *services.DCCGenerationService
}

func NewChangeOrderStatusCommandHandler(
	uowFactory UoWFactory,
	stateMachine *services.OrderStateMachine,
	codes *services.DCCGenerationService,
) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{
		uowFactory:   uowFactory,
		stateMachine: stateMachine,
		codes:        codes,
	}
}

func (h ChangeOrderStatusCommandHandler) Handle(ctx context.Context, cmd ChangeOrderStatusCommand) error {
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

	rules := h.stateMachine.RulesFor(o)
	if cmd.Target() == order.Delivered && rules.RequiresDeliveryConfirmation() {
		return ErrDeliveryConfirmationRequired
	}

	events, err := h.stateMachine.ExecuteTransition(o, cmd.Target())
	if err != nil {
		return err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	if cmd.Target() == order.OutForDelivery && rules.RequiresDeliveryConfirmation() {
		code, generated, genErr := h.codes.GenerateDefaultCode(o.ID())
		if genErr != nil {
			return genErr
		}
		if err = uow.DeliveryCodeRepository().Add(ctx, code); err != nil {
			return err
		}
		events = append(events, generated...)
	}

	uow.RecordEvents(events...)
	return uow.Commit(ctx)
}
