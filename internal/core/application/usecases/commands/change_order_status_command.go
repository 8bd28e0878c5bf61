package commands

import (
	"errors"
	"fmt"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"
)

var ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
	"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor",
)

// ErrStatusHasOwnOperation is the cause returned for targets that carry a
// reason and dedicated events: CANCELLED goes through CancelOrderCommand and
// REFUNDED through RefundOrderCommand.
var ErrStatusHasOwnOperation = errors.New("status is only reachable through its own operation")

// ChangeOrderStatusCommand moves an order to a target status along the
// merchant's workflow.
type ChangeOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	target  order.Status

	guard guard.ConstructorGuard
}

func NewChangeOrderStatusCommand(orderID kernel.UUID, target order.Status) (ChangeOrderStatusCommand, error) {
	cmd := ChangeOrderStatusCommand{guard: guard.NewConstructorGuard()}
	if err := errors.Join(orderID.Validate(), target.Validate()); err != nil {
		return ChangeOrderStatusCommand{}, err
	}
	if target == order.Cancelled || target == order.Refunded {
		return ChangeOrderStatusCommand{}, errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s: %w", target, ErrStatusHasOwnOperation))
	}
	cmd.orderID = orderID
	cmd.target = target
	return cmd, nil
}

func (c ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

func (c ChangeOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ChangeOrderStatusCommand) Target() order.Status {
	return c.target
}
