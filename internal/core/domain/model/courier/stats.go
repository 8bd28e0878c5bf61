package courier

import "time"

// ValidationStats summarises a courier's submissions over a time window.
type ValidationStats struct {
	TotalAttempts      int
	SuccessfulAttempts int
	FailedAttempts     int
	UniqueOrders       int
	FirstAttemptAt     *time.Time
	LastAttemptAt      *time.Time
	LockedOut          bool
	RemainingLockout   time.Duration
}

// SuccessRate is the share of successful attempts, 0 without attempts.
func (s ValidationStats) SuccessRate() float64 {
	if s.TotalAttempts == 0 {
		return 0
	}
	return float64(s.SuccessfulAttempts) / float64(s.TotalAttempts)
}

// ComputeStats aggregates attempts and the courier's current lockout, if any.
func ComputeStats(attempts []ValidationAttempt, lockout *Lockout, now time.Time) ValidationStats {
	stats := ValidationStats{TotalAttempts: len(attempts)}
	orders := make(map[string]struct{})

	for _, a := range attempts {
		if a.Successful {
			stats.SuccessfulAttempts++
		}
		orders[a.OrderID.String()] = struct{}{}

		at := a.AttemptedAt
		if stats.FirstAttemptAt == nil || at.Before(*stats.FirstAttemptAt) {
			stats.FirstAttemptAt = &at
		}
		if stats.LastAttemptAt == nil || at.After(*stats.LastAttemptAt) {
			stats.LastAttemptAt = &at
		}
	}
	stats.FailedAttempts = stats.TotalAttempts - stats.SuccessfulAttempts
	stats.UniqueOrders = len(orders)

	if lockout != nil && lockout.IsActive(now) {
		stats.LockedOut = true
		stats.RemainingLockout = lockout.Remaining(now)
	}

	return stats
}
