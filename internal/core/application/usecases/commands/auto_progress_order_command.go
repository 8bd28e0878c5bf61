package commands

import (
	"errors"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"
)

var ErrAutoProgressOrderCommandIsNotConstructed = errors.New(
	"AutoProgressOrderCommand must be created via NewAutoProgressOrderCommand constructor",
)

type AutoProgressOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewAutoProgressOrderCommand(orderID kernel.UUID) (AutoProgressOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return AutoProgressOrderCommand{}, err
	}
	return AutoProgressOrderCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c AutoProgressOrderCommand) Validate() error {
	return c.guard.Validate(ErrAutoProgressOrderCommandIsNotConstructed)
}

func (c AutoProgressOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}
