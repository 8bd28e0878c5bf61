package commands

import (
	"context"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/services"
)

// CreateOrderCommandHandler places orders in Pending and immediately applies
// automatic progression, so cash orders of auto-accepting merchants are
// stored already in Preparing.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, stateMachine, time.Now)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
type CreateOrderCommandHandler struct {
	uowFactory   OrderUoWFactory
	stateMachine *services.OrderStateMachine
	clock        Clock
}

func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	stateMachine *services.OrderStateMachine,
	clock Clock,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory:   uowFactory,
		stateMachine: stateMachine,
		clock:        clock,
	}
}

// Handle creates the order. The payment amount is the sum of the line totals
// and the payment starts as PaymentPending.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	total, err := sumItems(cmd.Items())
	if err != nil {
		return err
	}
	payment, err := order.NewPaymentInfo(cmd.PaymentMethod(), "", total, order.PaymentPending)
	if err != nil {
		return err
	}

	o, created, err := order.NewOrder(cmd.OrderID(), cmd.MerchantID(), cmd.CustomerID(),
		cmd.Items(), cmd.Address(), payment, h.clock.now())
	if err != nil {
		return err
	}

	events := []kernel.DomainEvent{created}
	progressed, err := autoProgress(h.stateMachine, o)
	if err != nil {
		return err
	}
	events = append(events, progressed...)

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}
	uow.RecordEvents(events...)

	return uow.Commit(ctx)
}

func sumItems(items []order.Item) (kernel.Money, error) {
	total, err := kernel.ZeroMoney(items[0].Total().Currency())
	if err != nil {
		return kernel.Money{}, err
	}
	for _, item := range items {
		if total, err = total.Add(item.Total()); err != nil {
			return kernel.Money{}, err
		}
	}
	return total, nil
}

// autoProgress applies automatic steps until the order stops being eligible.
func autoProgress(sm *services.OrderStateMachine, o *order.Order) ([]kernel.DomainEvent, error) {
	var events []kernel.DomainEvent
	for sm.CanAutoProgress(o) {
		progressed, err := sm.ExecuteAutoProgression(o)
		if err != nil {
			return nil, err
		}
		events = append(events, progressed...)
	}
	return events, nil
}
