package commands

import (
	"errors"

	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"
)

const DefaultBatchSize = 100

var ErrHandleOrderTimeoutsCommandIsNotConstructed = errors.New(
	"HandleOrderTimeoutsCommand must be created via NewHandleOrderTimeoutsCommand constructor",
)

// HandleOrderTimeoutsCommand scans up to batchSize active orders and applies
// the timeout fallback to the overdue ones.
type HandleOrderTimeoutsCommand struct { //nolint:recvcheck //using for validation
	batchSize int

	guard guard.ConstructorGuard
}

// NewHandleOrderTimeoutsCommand uses DefaultBatchSize when batchSize is 0.
func NewHandleOrderTimeoutsCommand(batchSize int) (HandleOrderTimeoutsCommand, error) {
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	if batchSize < 0 {
		return HandleOrderTimeoutsCommand{}, errs.NewValueIsInvalidError("batchSize")
	}
	return HandleOrderTimeoutsCommand{batchSize: batchSize, guard: guard.NewConstructorGuard()}, nil
}

func (c HandleOrderTimeoutsCommand) Validate() error {
	return c.guard.Validate(ErrHandleOrderTimeoutsCommandIsNotConstructed)
}

func (c HandleOrderTimeoutsCommand) BatchSize() int {
	return c.batchSize
}
