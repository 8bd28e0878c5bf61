package ports

import (
	"context"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/courier"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
)

// CourierSecurityRepository keeps the code submission history and lockouts
// of couriers.
type CourierSecurityRepository interface {
	AddAttempt(ctx context.Context, attempt courier.ValidationAttempt) error

	// ListAttemptsSince returns the courier's attempts made after since,
	// oldest first.
	ListAttemptsSince(ctx context.Context, courierID kernel.UUID, since time.Time) ([]courier.ValidationAttempt, error)

	// GetLockout returns errs.ObjectNotFoundError when the courier has no
	// stored lockout. Expired lockouts may still be returned.
	GetLockout(ctx context.Context, courierID kernel.UUID) (*courier.Lockout, error)

	// SaveLockout creates or replaces the courier's lockout.
	SaveLockout(ctx context.Context, lockout courier.Lockout) error

	// DeleteLockout is a no-op when the courier has no lockout.
	DeleteLockout(ctx context.Context, courierID kernel.UUID) error
}
