package commands

import (
	"errors"
	"strings"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"
)

var ErrRefundOrderCommandIsNotConstructed = errors.New(
	"RefundOrderCommand must be created via NewRefundOrderCommand constructor",
)

type RefundOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	reason  string

	guard guard.ConstructorGuard
}

func NewRefundOrderCommand(orderID kernel.UUID, reason string) (RefundOrderCommand, error) {
	cmd := RefundOrderCommand{guard: guard.NewConstructorGuard()}

	reason = strings.TrimSpace(reason)
	var errReason error
	if reason == "" {
		errReason = errs.NewValueIsRequiredError("reason")
	}
	if err := errors.Join(orderID.Validate(), errReason); err != nil {
		return RefundOrderCommand{}, err
	}

	cmd.orderID = orderID
	cmd.reason = reason
	return cmd, nil
}

func (c RefundOrderCommand) Validate() error {
	return c.guard.Validate(ErrRefundOrderCommandIsNotConstructed)
}

func (c RefundOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c RefundOrderCommand) Reason() string {
	return c.reason
}
