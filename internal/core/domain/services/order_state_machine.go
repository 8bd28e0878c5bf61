package services

import (
	"errors"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/workflow"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
)

// OrderStateMachine decides and applies order status changes. All checks
// are table lookups on the rules of the order's merchant, so verticals
// diverge by data and not by branching.
//
// Every mutating operation is all-or-nothing: it either changes status,
// stamps the time and returns the events, or returns an error and leaves
// the order untouched.
//
// Example usage:
//
//	sm, _ := services.NewOrderStateMachine(registry, time.Now)
//	if sm.CanCancel(o) {
//	    events, err := sm.CancelOrder(o, order.CustomerRequest, "changed my mind")
//	}
type OrderStateMachine struct {
	rules WorkflowRuleProvider
	clock func() time.Time
}

// NewOrderStateMachine requires a rule provider; a nil clock means time.Now.
func NewOrderStateMachine(rules WorkflowRuleProvider, clock func() time.Time) (*OrderStateMachine, error) {
	if rules == nil {
		return nil, errs.NewValueIsRequiredError("rules")
	}
	if clock == nil {
		clock = time.Now
	}
	return &OrderStateMachine{rules: rules, clock: clock}, nil
}

// RulesFor returns the rules the state machine applies to o.
func (sm *OrderStateMachine) RulesFor(o *order.Order) workflow.Rules {
	return sm.rules.WorkflowRules(o.MerchantID())
}

// CanTransition reports whether target is reachable from the order's status.
// Refunds additionally require a refundable payment method.
func (sm *OrderStateMachine) CanTransition(o *order.Order, target order.Status) bool {
	rules := sm.RulesFor(o)
	if !rules.Allows(o.Status(), target) {
		return false
	}
	if target == order.Refunded {
		return refundableVia(rules, o.Payment().Method())
	}
	return true
}

// ExecuteTransition moves o to target and returns its StatusChangedEvent.
// It fails with *order.InvalidStatusTransitionError when CanTransition is false.
func (sm *OrderStateMachine) ExecuteTransition(o *order.Order, target order.Status) ([]kernel.DomainEvent, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if !sm.CanTransition(o, target) {
		return nil, order.NewInvalidStatusTransitionError("transition", o.ID(), o.Status(), target,
			"not allowed by workflow rules")
	}

	changed, err := o.ChangeStatus(target, sm.clock())
	if err != nil {
		return nil, err
	}
	return []kernel.DomainEvent{changed}, nil
}

// ValidNextStatuses lists the statuses ExecuteTransition would accept now.
func (sm *OrderStateMachine) ValidNextStatuses(o *order.Order) []order.Status {
	rules := sm.RulesFor(o)
	next := make([]order.Status, 0)
	for _, s := range rules.AllowedTransitions(o.Status()) {
		if sm.CanTransition(o, s) {
			next = append(next, s)
		}
	}
	return next
}

// CanCancel reports whether the merchant's cancellation policy allows
// cancelling from the current status.
func (sm *OrderStateMachine) CanCancel(o *order.Order) bool {
	return sm.RulesFor(o).CanCancelFrom(o.Status())
}

// CancelOrder cancels o. Events: StatusChanged, then Cancelled.
func (sm *OrderStateMachine) CancelOrder(
	o *order.Order,
	reason order.CancellationReason,
	details string,
) ([]kernel.DomainEvent, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if !sm.CanCancel(o) {
		return nil, order.NewInvalidStatusTransitionError("cancel", o.ID(), o.Status(), order.Cancelled,
			"cancellation policy forbids it")
	}
	return o.Cancel(reason, details, sm.clock())
}

// CanRefund reports whether both the refund policy allows the current
// status and the payment method supports refunds.
func (sm *OrderStateMachine) CanRefund(o *order.Order) bool {
	rules := sm.RulesFor(o)
	return rules.CanRefundFrom(o.Status()) && refundableVia(rules, o.Payment().Method())
}

// ProcessRefund refunds o. Events: StatusChanged, then RefundRequested.
func (sm *OrderStateMachine) ProcessRefund(o *order.Order, reason string) ([]kernel.DomainEvent, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if !sm.CanRefund(o) {
		return nil, order.NewInvalidStatusTransitionError("refund", o.ID(), o.Status(), order.Refunded,
			"refund not allowed for status "+o.Status().String()+" paid with "+o.Payment().Method().String())
	}
	return o.RequestRefund(reason, sm.clock())
}

// NextAutoStatus returns the status o would move to without external
// confirmation: Pending orders paid with an auto-confirmed method go to
// PaymentConfirmed, PaymentConfirmed orders of auto-accepting merchants go
// to Preparing.
func (sm *OrderStateMachine) NextAutoStatus(o *order.Order) (order.Status, bool) {
	rules := sm.RulesFor(o)

	var next order.Status
	switch o.Status() {
	case order.Pending:
		if rules.IsAutoConfirmed(o.Payment().Method()) {
			next = order.PaymentConfirmed
		}
	case order.PaymentConfirmed:
		if rules.AutoAccept() {
			next = order.Preparing
		}
	}

	if next == order.Unknown || !rules.Allows(o.Status(), next) {
		return order.Unknown, false
	}
	return next, true
}

func (sm *OrderStateMachine) CanAutoProgress(o *order.Order) bool {
	_, ok := sm.NextAutoStatus(o)
	return ok
}

// ExecuteAutoProgression applies one automatic step. It is a no-op
// returning no events when the order is not eligible.
func (sm *OrderStateMachine) ExecuteAutoProgression(o *order.Order) ([]kernel.DomainEvent, error) {
	next, ok := sm.NextAutoStatus(o)
	if !ok {
		return nil, nil
	}
	return sm.ExecuteTransition(o, next)
}

// IsOverdue reports whether o has stayed in its status longer than the
// configured timeout.
func (sm *OrderStateMachine) IsOverdue(o *order.Order) bool {
	rule, ok := sm.RulesFor(o).Timeout(o.Status())
	return ok && rule.IsExceeded(o.StatusChangedAt(), sm.clock())
}

// TimeoutCutoffs maps each status that can time out to the latest status
// change that may already be overdue. Orders of other statuses never time
// out. Without a TimeoutCatalog every active status is returned with the
// current time as cutoff.
func (sm *OrderStateMachine) TimeoutCutoffs() map[order.Status]time.Time {
	now := sm.clock()
	cutoffs := make(map[order.Status]time.Time)

	catalog, ok := sm.rules.(TimeoutCatalog)
	if !ok {
		for _, s := range order.AllStatuses() {
			if s.IsActive() {
				cutoffs[s] = now
			}
		}
		return cutoffs
	}

	for s, limit := range catalog.ShortestTimeouts() {
		cutoffs[s] = now.Add(-limit)
	}
	return cutoffs
}

// RequiresManualIntervention reports whether a person has to act before
// the order can move on: the status waits for the merchant or the order
// is overdue.
func (sm *OrderStateMachine) RequiresManualIntervention(o *order.Order) bool {
	return sm.RulesFor(o).RequiresManualAction(o.Status()) || sm.IsOverdue(o)
}

// HandleStatusTimeout applies the timeout fallback of the current status.
// It is a no-op for orders without a limit, still within it, or whose
// timeout was already reported. An escalation marks the order as reported,
// so the caller must persist it.
//
// Events: Timeout, followed by StatusChanged and Cancelled when the action
// is TimeoutCancel.
func (sm *OrderStateMachine) HandleStatusTimeout(o *order.Order) ([]kernel.DomainEvent, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	now := sm.clock()
	rule, ok := sm.RulesFor(o).Timeout(o.Status())
	if !ok || o.IsTimeoutReported() || !rule.IsExceeded(o.StatusChangedAt(), now) {
		return nil, nil
	}

	events := []kernel.DomainEvent{order.NewTimeoutEvent(o, rule.Limit, rule.Action.String(), now)}

	switch rule.Action {
	case workflow.TimeoutCancel:
		cancelled, err := sm.CancelOrder(o, rule.Reason, rule.Details)
		if err != nil {
			return nil, err
		}
		events = append(events, cancelled...)
	case workflow.TimeoutEscalate:
		o.MarkTimeoutReported(now)
	default:
		return nil, errors.New("unsupported timeout action " + rule.Action.String())
	}

	return events, nil
}

func refundableVia(rules workflow.Rules, method order.PaymentMethod) bool {
	return method.SupportsRefund() && rules.SupportsRefundVia(method)
}
