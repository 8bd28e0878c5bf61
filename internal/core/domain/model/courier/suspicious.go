package courier

import (
	"slices"
	"strconv"
	"time"
)

// Suspicion names a brute-force pattern found in a courier's submissions.
type Suspicion string

const (
	ExcessiveAttempts Suspicion = "Excessive validation attempts in short time window"
	SequentialCodes   Suspicion = "Sequential code brute force attempt detected"
	RepeatedCode      Suspicion = "Repeated identical code attempts"
)

// DetectSuspicion inspects history (which already includes the latest
// submission) at now. The last matching pattern wins, mirroring their
// order of severity.
func DetectSuspicion(history []ValidationAttempt, latestCode string, now time.Time, p Policy) (Suspicion, bool) {
	var found Suspicion

	if len(Since(history, now.Add(-p.SuspiciousWindow))) >= p.SuspiciousThreshold {
		found = ExcessiveAttempts
	}

	recent := Since(history, now.Add(-p.PatternWindow))
	if isSequential(recent, p.PatternLength) {
		found = SequentialCodes
	}
	if countCode(recent, latestCode) >= p.PatternLength {
		found = RepeatedCode
	}

	return found, found != ""
}

func isSequential(attempts []ValidationAttempt, length int) bool {
	codes := make([]int, 0, len(attempts))
	for _, a := range attempts {
		if n, err := strconv.Atoi(a.SubmittedCode); err == nil {
			codes = append(codes, n)
		}
	}
	if len(codes) < length {
		return false
	}

	slices.Sort(codes)
	for i := 1; i < len(codes); i++ {
		if codes[i] != codes[i-1]+1 {
			return false
		}
	}
	return true
}

func countCode(attempts []ValidationAttempt, code string) int {
	n := 0
	for _, a := range attempts {
		if a.SubmittedCode == code {
			n++
		}
	}
	return n
}
