package courier

import "time"

// Policy holds the thresholds of courier security checks.
type Policy struct {
	LockoutDuration          time.Duration
	RateLimitWindow          time.Duration
	MaxAttemptsPerWindow     int
	MaxFailuresBeforeLockout int

	// SuspiciousWindow and SuspiciousThreshold flag bursts of attempts.
	SuspiciousWindow    time.Duration
	SuspiciousThreshold int

	// PatternWindow bounds the sequential and repeated code checks;
	// PatternLength is how many codes form a pattern.
	PatternWindow time.Duration
	PatternLength int
}

// DefaultPolicy returns the production thresholds.
func DefaultPolicy() Policy {
	return Policy{
		LockoutDuration:          30 * time.Minute,
		RateLimitWindow:          time.Hour,
		MaxAttemptsPerWindow:     20,
		MaxFailuresBeforeLockout: 5,
		SuspiciousWindow:         5 * time.Minute,
		SuspiciousThreshold:      10,
		PatternWindow:            time.Minute,
		PatternLength:            3,
	}
}
