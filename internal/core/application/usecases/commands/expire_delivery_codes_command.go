package commands

import (
	"errors"

	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"
)

var ErrExpireDeliveryCodesCommandIsNotConstructed = errors.New(
	"ExpireDeliveryCodesCommand must be created via NewExpireDeliveryCodesCommand constructor",
)

// ExpireDeliveryCodesCommand expires up to batchSize active codes past
// their expiry.
type ExpireDeliveryCodesCommand struct { //nolint:recvcheck //using for validation
	batchSize int

	guard guard.ConstructorGuard
}

// NewExpireDeliveryCodesCommand uses DefaultBatchSize when batchSize is 0.
func NewExpireDeliveryCodesCommand(batchSize int) (ExpireDeliveryCodesCommand, error) {
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	if batchSize < 0 {
		return ExpireDeliveryCodesCommand{}, errs.NewValueIsInvalidError("batchSize")
	}
	return ExpireDeliveryCodesCommand{batchSize: batchSize, guard: guard.NewConstructorGuard()}, nil
}

func (c ExpireDeliveryCodesCommand) Validate() error {
	return c.guard.Validate(ErrExpireDeliveryCodesCommandIsNotConstructed)
}

func (c ExpireDeliveryCodesCommand) BatchSize() int {
	return c.batchSize
}
