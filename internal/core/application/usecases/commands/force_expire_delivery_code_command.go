package commands

import (
	"errors"
	"strings"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"
)

var ErrForceExpireDeliveryCodeCommandIsNotConstructed = errors.New(
	"ForceExpireDeliveryCodeCommand must be created via NewForceExpireDeliveryCodeCommand constructor",
)

// ForceExpireDeliveryCodeCommand is the admin override that voids an order's
// code.
type ForceExpireDeliveryCodeCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	adminID string
	reason  string

	guard guard.ConstructorGuard
}

func NewForceExpireDeliveryCodeCommand(orderID kernel.UUID, adminID, reason string) (ForceExpireDeliveryCodeCommand, error) {
	adminID = strings.TrimSpace(adminID)
	reason = strings.TrimSpace(reason)

	var errAdmin, errReason error
	if adminID == "" {
		errAdmin = errs.NewValueIsRequiredError("adminId")
	}
	if reason == "" {
		errReason = errs.NewValueIsRequiredError("reason")
	}
	if err := errors.Join(orderID.Validate(), errAdmin, errReason); err != nil {
		return ForceExpireDeliveryCodeCommand{}, err
	}

	return ForceExpireDeliveryCodeCommand{
		orderID: orderID,
		adminID: adminID,
		reason:  reason,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c ForceExpireDeliveryCodeCommand) Validate() error {
	return c.guard.Validate(ErrForceExpireDeliveryCodeCommandIsNotConstructed)
}

func (c ForceExpireDeliveryCodeCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ForceExpireDeliveryCodeCommand) AdminID() string {
	return c.adminID
}

func (c ForceExpireDeliveryCodeCommand) Reason() string {
	return c.reason
}
