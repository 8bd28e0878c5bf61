package ports

import (
	"context"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/dcc"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
)

// DeliveryCodeRepository stores the current delivery confirmation code of
// each order. An order has at most one stored code; regeneration replaces it.
type DeliveryCodeRepository interface {
	// Add persists the first code of an order and sets its version to 1.
	Add(ctx context.Context, code *dcc.DeliveryCode) error

	// Update persists status and attempt changes with the same optimistic
	// version check as OrderRepository.Update.
	Update(ctx context.Context, code *dcc.DeliveryCode) error

	// Replace stores next in place of previous. previous must still hold
	// the stored version.
	Replace(ctx context.Context, previous, next *dcc.DeliveryCode) error

	// GetByOrder returns errs.ObjectNotFoundError when the order has no code.
	GetByOrder(ctx context.Context, orderID kernel.UUID) (*dcc.DeliveryCode, error)

	// ListActiveExpiredBefore returns at most limit active codes whose
	// expiry is before now.
	ListActiveExpiredBefore(ctx context.Context, now time.Time, limit int) ([]*dcc.DeliveryCode, error)
}
