package queries

import (
	"errors"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"
)

const (
	DefaultStatsWindow = 24 * time.Hour
	MaxStatsWindow     = 30 * 24 * time.Hour
)

var ErrGetCourierValidationStatsQueryIsNotConstructed = errors.New(
	"GetCourierValidationStatsQuery must be created via NewGetCourierValidationStatsQuery constructor",
)

// GetCourierValidationStatsQuery summarises a courier's delivery code
// submissions over the trailing window.
type GetCourierValidationStatsQuery struct {
	courierID kernel.UUID
	window    time.Duration
	guard     guard.ConstructorGuard
}

// NewGetCourierValidationStatsQuery uses DefaultStatsWindow for a zero window.
func NewGetCourierValidationStatsQuery(courierID kernel.UUID, window time.Duration) (GetCourierValidationStatsQuery, error) {
	if err := courierID.Validate(); err != nil {
		return GetCourierValidationStatsQuery{}, errs.NewValueIsRequiredErrorWithCause("courierId", err)
	}
	if window == 0 {
		window = DefaultStatsWindow
	}
	if window < time.Minute || window > MaxStatsWindow {
		return GetCourierValidationStatsQuery{}, errs.NewValueIsOutOfRangeError("window", window, time.Minute, MaxStatsWindow)
	}
	return GetCourierValidationStatsQuery{courierID: courierID, window: window, guard: guard.NewConstructorGuard()}, nil
}

func (q GetCourierValidationStatsQuery) Validate() error {
	return q.guard.Validate(ErrGetCourierValidationStatsQueryIsNotConstructed)
}

func (q GetCourierValidationStatsQuery) CourierID() kernel.UUID {
	return q.courierID
}

func (q GetCourierValidationStatsQuery) Window() time.Duration {
	return q.window
}

type GetCourierValidationStatsQueryResponse struct {
	CourierID          kernel.UUID
	Since              time.Time
	TotalAttempts      int
	SuccessfulAttempts int
	FailedAttempts     int
	UniqueOrders       int
	SuccessRate        float64
	FirstAttemptAt     *time.Time
	LastAttemptAt      *time.Time
	LockedOut          bool
	RemainingLockout   time.Duration
}
