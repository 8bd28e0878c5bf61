// Package ports defines the contracts between the order workflow core and
// its infrastructure: repositories, the unit of work and event publishing.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
)

// ErrConcurrentModification is returned by Update when the stored version
// no longer matches the aggregate's version.
var ErrConcurrentModification = errors.New("aggregate was modified concurrently")

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order and sets its version to 1.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists an existing order if its version still matches the
	// stored one, then increments the version. Returns
	// ErrConcurrentModification otherwise.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get returns errs.ObjectNotFoundError when the order does not exist.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ListTimeoutCandidates returns at most scan.Limit orders whose status
	// is in scan.Cutoffs and changed before that status's cutoff, skipping
	// orders whose timeout was already reported. Orders come oldest status
	// change first, ties broken by id, starting after scan.After.
	//
	// Example:
	//   page, err := repo.ListTimeoutCandidates(ctx, ports.TimeoutScan{
	//       Cutoffs: map[order.Status]time.Time{order.Preparing: now.Add(-30 * time.Minute)},
	//       Limit:   100,
	//   })
	ListTimeoutCandidates(ctx context.Context, scan TimeoutScan) ([]*order.Order, error)
}

// TimeoutScan selects one page of orders that may have timed out.
type TimeoutScan struct {
	Cutoffs map[order.Status]time.Time
	After   *TimeoutScanCursor
	Limit   int
}

// TimeoutScanCursor is the position of the last order of a page.
type TimeoutScanCursor struct {
	StatusChangedAt time.Time
	ID              kernel.UUID
}

// CursorAfter returns the cursor that continues a scan past o.
func CursorAfter(o *order.Order) *TimeoutScanCursor {
	return &TimeoutScanCursor{StatusChangedAt: o.StatusChangedAt(), ID: o.ID()}
}
