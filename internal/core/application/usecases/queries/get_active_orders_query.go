package queries

import (
	"errors"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"
)

const (
	DefaultActiveOrdersLimit = 100
	MaxActiveOrdersLimit     = 1000
)

var ErrGetActiveOrdersQueryIsNotConstructed = errors.New(
	"GetActiveOrdersQuery must be created via NewGetActiveOrdersQuery constructor",
)

// GetActiveOrdersQuery lists orders still moving towards delivery, those
// waiting longest in their status first. Operators use it to spot stuck
// orders before the timeout job acts on them.
//
// Example:
//
//	query, _ := NewGetActiveOrdersQuery(nil, 0)
//	orders, err := handler.Handle(ctx, query)
//	for _, o := range orders {
//	    fmt.Printf("%s in %s since %s\n", o.ID, o.Status, o.StatusChangedAt)
//	}
type GetActiveOrdersQuery struct {
	merchantID *kernel.UUID
	limit      int
	guard      guard.ConstructorGuard
}

// NewGetActiveOrdersQuery optionally narrows the list to one merchant. A
// zero limit means DefaultActiveOrdersLimit.
func NewGetActiveOrdersQuery(merchantID *kernel.UUID, limit int) (GetActiveOrdersQuery, error) {
	if merchantID != nil {
		if err := merchantID.Validate(); err != nil {
			return GetActiveOrdersQuery{}, errs.NewValueIsInvalidErrorWithCause("merchantId", err)
		}
	}
	if limit == 0 {
		limit = DefaultActiveOrdersLimit
	}
	if limit < 1 || limit > MaxActiveOrdersLimit {
		return GetActiveOrdersQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxActiveOrdersLimit)
	}
	return GetActiveOrdersQuery{merchantID: merchantID, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q GetActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveOrdersQueryIsNotConstructed)
}

func (q GetActiveOrdersQuery) MerchantID() *kernel.UUID {
	return q.merchantID
}

func (q GetActiveOrdersQuery) Limit() int {
	return q.limit
}

type GetActiveOrdersQueryResponse struct {
	ID              kernel.UUID
	MerchantID      kernel.UUID
	Status          order.Status
	StatusChangedAt time.Time
}
