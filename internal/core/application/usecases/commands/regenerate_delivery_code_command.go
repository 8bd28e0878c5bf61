package commands

import (
	"errors"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"
)

var ErrRegenerateDeliveryCodeCommandIsNotConstructed = errors.New(
	"RegenerateDeliveryCodeCommand must be created via NewRegenerateDeliveryCodeCommand constructor",
)

// RegenerateDeliveryCodeCommand issues a fresh code for an order out for
// delivery. Zero expiration or maxAttempts select the service defaults.
type RegenerateDeliveryCodeCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	expiration  time.Duration
	maxAttempts int

	guard guard.ConstructorGuard
}

func NewRegenerateDeliveryCodeCommand(
	orderID kernel.UUID,
	expiration time.Duration,
	maxAttempts int,
) (RegenerateDeliveryCodeCommand, error) {
	var errExpiration, errAttempts error
	if expiration < 0 {
		errExpiration = errs.NewValueIsInvalidError("expiration")
	}
	if maxAttempts < 0 {
		errAttempts = errs.NewValueIsInvalidError("maxAttempts")
	}
	if err := errors.Join(orderID.Validate(), errExpiration, errAttempts); err != nil {
		return RegenerateDeliveryCodeCommand{}, err
	}

	return RegenerateDeliveryCodeCommand{
		orderID:     orderID,
		expiration:  expiration,
		maxAttempts: maxAttempts,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c RegenerateDeliveryCodeCommand) Validate() error {
	return c.guard.Validate(ErrRegenerateDeliveryCodeCommandIsNotConstructed)
}

func (c RegenerateDeliveryCodeCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c RegenerateDeliveryCodeCommand) Expiration() time.Duration {
	return c.expiration
}

func (c RegenerateDeliveryCodeCommand) MaxAttempts() int {
	return c.maxAttempts
}
