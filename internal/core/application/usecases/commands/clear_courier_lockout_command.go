package commands

import (
	"errors"
	"strings"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"
)

var ErrClearCourierLockoutCommandIsNotConstructed = errors.New(
	"ClearCourierLockoutCommand must be created via NewClearCourierLockoutCommand constructor",
)

type ClearCourierLockoutCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	adminID   string
	reason    string

	guard guard.ConstructorGuard
}

func NewClearCourierLockoutCommand(courierID kernel.UUID, adminID, reason string) (ClearCourierLockoutCommand, error) {
	adminID = strings.TrimSpace(adminID)
	reason = strings.TrimSpace(reason)

	var errAdmin, errReason error
	if adminID == "" {
		errAdmin = errs.NewValueIsRequiredError("adminId")
	}
	if reason == "" {
		errReason = errs.NewValueIsRequiredError("reason")
	}
	if err := errors.Join(courierID.Validate(), errAdmin, errReason); err != nil {
		return ClearCourierLockoutCommand{}, err
	}

	return ClearCourierLockoutCommand{
		courierID: courierID,
		adminID:   adminID,
		reason:    reason,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c ClearCourierLockoutCommand) Validate() error {
	return c.guard.Validate(ErrClearCourierLockoutCommandIsNotConstructed)
}

func (c ClearCourierLockoutCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c ClearCourierLockoutCommand) AdminID() string {
	return c.adminID
}

func (c ClearCourierLockoutCommand) Reason() string {
	return c.reason
}
