package commands

import (
	"errors"
	"strings"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"
)

var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

type CancelOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	reason  order.CancellationReason
	details string

	guard guard.ConstructorGuard
}

// NewCancelOrderCommand requires a known reason; details are free text.
func NewCancelOrderCommand(orderID kernel.UUID, reason order.CancellationReason, details string) (CancelOrderCommand, error) {
	cmd := CancelOrderCommand{guard: guard.NewConstructorGuard()}
	if err := errors.Join(orderID.Validate(), reason.Validate()); err != nil {
		return CancelOrderCommand{}, err
	}
	cmd.orderID = orderID
	cmd.reason = reason
	cmd.details = strings.TrimSpace(details)
	return cmd, nil
}

func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

func (c CancelOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CancelOrderCommand) Reason() order.CancellationReason {
	return c.reason
}

func (c CancelOrderCommand) Details() string {
	return c.details
}
