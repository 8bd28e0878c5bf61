package queries

import (
	"context"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/courier"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
)

// ValidationStatsReader is implemented by the delivery code security service.
type ValidationStatsReader interface {
	ValidationStats(ctx context.Context, courierID kernel.UUID, since time.Time) (courier.ValidationStats, error)
}

type GetCourierValidationStatsQueryHandler struct {
	stats ValidationStatsReader
	clock func() time.Time
}

func NewGetCourierValidationStatsQueryHandler(
	stats ValidationStatsReader,
	clock func() time.Time,
) (*GetCourierValidationStatsQueryHandler, error) {
	if stats == nil {
		return nil, errs.NewValueIsRequiredError("stats")
	}
	if clock == nil {
		clock = time.Now
	}
	return &GetCourierValidationStatsQueryHandler{stats: stats, clock: clock}, nil
}

func (h *GetCourierValidationStatsQueryHandler) Handle(
	ctx context.Context,
	query GetCourierValidationStatsQuery,
) (GetCourierValidationStatsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetCourierValidationStatsQueryResponse{}, err
	}

	since := h.clock().Add(-query.Window())
	stats, err := h.stats.ValidationStats(ctx, query.CourierID(), since)
	if err != nil {
		return GetCourierValidationStatsQueryResponse{}, err
	}

	return GetCourierValidationStatsQueryResponse{
		CourierID:          query.CourierID(),
		Since:              since,
		TotalAttempts:      stats.TotalAttempts,
		SuccessfulAttempts: stats.SuccessfulAttempts,
		FailedAttempts:     stats.FailedAttempts,
		UniqueOrders:       stats.UniqueOrders,
		SuccessRate:        stats.SuccessRate(),
		FirstAttemptAt:     stats.FirstAttemptAt,
		LastAttemptAt:      stats.LastAttemptAt,
		LockedOut:          stats.LockedOut,
		RemainingLockout:   stats.RemainingLockout,
	}, nil
}
