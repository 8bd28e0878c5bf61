package commands

import (
	"errors"
	"strings"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"
)

var ErrConfirmDeliveryCommandIsNotConstructed = errors.New(
	"ConfirmDeliveryCommand must be created via NewConfirmDeliveryCommand constructor",
)

// ConfirmDeliveryCommand carries the code a courier collected from the
// customer at hand-off, exactly as submitted.
type ConfirmDeliveryCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	courierID kernel.UUID
	code      string

	guard guard.ConstructorGuard
}

func NewConfirmDeliveryCommand(orderID, courierID kernel.UUID, code string) (ConfirmDeliveryCommand, error) {
	var errCourier, errCode error
	if err := courierID.Validate(); err != nil {
		errCourier = errs.NewValueIsRequiredErrorWithCause("courierId", err)
	}
	if strings.TrimSpace(code) == "" {
		errCode = errs.NewValueIsRequiredError("code")
	}
	if err := errors.Join(orderID.Validate(), errCourier, errCode); err != nil {
		return ConfirmDeliveryCommand{}, err
	}

	return ConfirmDeliveryCommand{
		orderID:   orderID,
		courierID: courierID,
		code:      code,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c ConfirmDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrConfirmDeliveryCommandIsNotConstructed)
}

func (c ConfirmDeliveryCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ConfirmDeliveryCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c ConfirmDeliveryCommand) Code() string {
	return c.code
}
