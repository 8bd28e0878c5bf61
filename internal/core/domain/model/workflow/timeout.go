package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
)

// TimeoutAction is the fallback applied when an order overstays a status.
type TimeoutAction int

const (
	UnknownTimeoutAction TimeoutAction = iota

	// TimeoutCancel cancels the order with the rule's reason and details.
	TimeoutCancel

	// TimeoutEscalate only reports the timeout so an operator can act.
	TimeoutEscalate
)

func getTimeoutActionStrings() map[TimeoutAction]string {
	return map[TimeoutAction]string{
		UnknownTimeoutAction: "UNKNOWN",
		TimeoutCancel:        "CANCEL",
		TimeoutEscalate:      "ESCALATE",
	}
}

func ParseTimeoutAction(s string) (TimeoutAction, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for a, str := range getTimeoutActionStrings() {
		if a != UnknownTimeoutAction && str == name {
			return a, nil
		}
	}
	return UnknownTimeoutAction, errs.NewValueIsInvalidErrorWithCause("timeoutAction",
		fmt.Errorf("%q is not a valid timeout action", s))
}

func (a TimeoutAction) Validate() error {
	if a != TimeoutCancel && a != TimeoutEscalate {
		return errs.NewValueIsInvalidErrorWithCause("timeoutAction", fmt.Errorf("%d is not a valid timeout action", a))
	}
	return nil
}

func (a TimeoutAction) String() string {
	if str, ok := getTimeoutActionStrings()[a]; ok {
		return str
	}
	return "UNKNOWN"
}

// TimeoutRule limits how long an order may stay in one status.
type TimeoutRule struct {
	Limit   time.Duration
	Action  TimeoutAction
	Reason  order.CancellationReason
	Details string
}

// CancelAfter builds a rule that cancels with reason once limit elapses.
func CancelAfter(limit time.Duration, reason order.CancellationReason, details string) TimeoutRule {
	return TimeoutRule{Limit: limit, Action: TimeoutCancel, Reason: reason, Details: details}
}

// EscalateAfter builds a rule that only reports the timeout.
func EscalateAfter(limit time.Duration, details string) TimeoutRule {
	return TimeoutRule{Limit: limit, Action: TimeoutEscalate, Details: details}
}

// IsExceeded reports whether an order that entered the status at enteredAt
// is past the limit at now.
func (r TimeoutRule) IsExceeded(enteredAt, now time.Time) bool {
	return now.Sub(enteredAt) > r.Limit
}

func (r TimeoutRule) validate(status order.Status) error {
	if r.Limit <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("timeout",
			fmt.Errorf("limit for %s must be positive, got %s", status, r.Limit))
	}
	if err := r.Action.Validate(); err != nil {
		return err
	}
	if r.Action == TimeoutCancel {
		if err := r.Reason.Validate(); err != nil {
			return fmt.Errorf("timeout for %s: %w", status, err)
		}
	}
	return nil
}

// ShortestTimeouts returns, for every status limited by at least one of
// sets, the shortest limit among them.
func ShortestTimeouts(sets ...Rules) map[order.Status]time.Duration {
	shortest := make(map[order.Status]time.Duration)
	for _, rules := range sets {
		for status, rule := range rules.timeouts {
			if current, ok := shortest[status]; !ok || rule.Limit < current {
				shortest[status] = rule.Limit
			}
		}
	}
	return shortest
}
