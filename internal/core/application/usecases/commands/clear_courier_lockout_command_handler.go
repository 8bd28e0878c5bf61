package commands

import (
	"context"
)

// ClearCourierLockoutCommandHandler delegates to the security service,
// which owns lockout state.
type ClearCourierLockoutCommandHandler struct {
	clearer LockoutClearer
}

func NewClearCourierLockoutCommandHandler(clearer LockoutClearer) ClearCourierLockoutCommandHandler {
	return ClearCourierLockoutCommandHandler{clearer: clearer}
}

func (h ClearCourierLockoutCommandHandler) Handle(ctx context.Context, cmd ClearCourierLockoutCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.clearer.ClearLockout(ctx, cmd.CourierID(), cmd.AdminID(), cmd.Reason())
}
