package workflow

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"
)

var ErrRulesAreNotConstructed = errs.NewValueIsRequiredError("workflow rules must be created via NewRules")

// Params describes a workflow policy. Forward holds the progression edges;
// edges into Cancelled and Refunded are derived from CancellableFrom and
// RefundableFrom so the transition table and the policies cannot disagree.
type Params struct {
	Vertical Vertical

	// MerchantID is zero for vertical defaults.
	MerchantID kernel.UUID

	Forward         map[order.Status][]order.Status
	CancellableFrom []order.Status
	RefundableFrom  []order.Status

	// RefundMethods lists payment methods whose payments can be returned.
	RefundMethods []order.PaymentMethod

	// AutoConfirmMethods skip PaymentProcessing: Pending goes straight to
	// PaymentConfirmed.
	AutoConfirmMethods []order.PaymentMethod

	// AutoAccept moves PaymentConfirmed orders to Preparing without the merchant.
	AutoAccept bool

	// ManualStatuses need a merchant action before the next transition.
	ManualStatuses []order.Status

	Timeouts map[order.Status]TimeoutRule

	// RequiresDeliveryConfirmation makes Delivered reachable only through a
	// validated delivery confirmation code.
	RequiresDeliveryConfirmation bool
}

type statusSet map[order.Status]struct{}

func newStatusSet(statuses []order.Status) statusSet {
	set := make(statusSet, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}

func (s statusSet) has(status order.Status) bool {
	_, ok := s[status]
	return ok
}

func (s statusSet) sorted() []order.Status {
	out := slices.Collect(maps.Keys(s))
	slices.Sort(out)
	return out
}

type methodSet map[order.PaymentMethod]struct{}

func newMethodSet(methods []order.PaymentMethod) methodSet {
	set := make(methodSet, len(methods))
	for _, m := range methods {
		set[m] = struct{}{}
	}
	return set
}

func (s methodSet) has(m order.PaymentMethod) bool {
	_, ok := s[m]
	return ok
}

func (s methodSet) sorted() []order.PaymentMethod {
	out := slices.Collect(maps.Keys(s))
	slices.Sort(out)
	return out
}

// Rules is an immutable, internally consistent workflow policy for one
// merchant or vertical.
//
// Consistency rules enforced by NewRules:
//   - every status in the table is a valid order.Status
//   - Forward never targets Cancelled or Refunded and never leaves Refunded
//   - cancellation is never allowed from Cancelled or Refunded
//   - refunds are allowed only from Delivered or Cancelled
//   - auto-confirmation and auto-accept require their Forward edges
//   - a CANCEL timeout is only set on a cancellable status
type Rules struct {
	vertical    Vertical
	merchantID  kernel.UUID
	transitions map[order.Status]statusSet
	cancellable statusSet
	refundable  statusSet
	refundVia   methodSet
	autoConfirm methodSet
	autoAccept  bool
	manual      statusSet
	timeouts    map[order.Status]TimeoutRule
	confirmDCC  bool
	guard       guard.ConstructorGuard
}

// NewRules validates p and builds the complete transition table.
func NewRules(p Params) (Rules, error) {
	if err := validateParams(p); err != nil {
		return Rules{}, err
	}

	r := Rules{
		vertical:    p.Vertical,
		merchantID:  p.MerchantID,
		transitions: make(map[order.Status]statusSet),
		cancellable: newStatusSet(p.CancellableFrom),
		refundable:  newStatusSet(p.RefundableFrom),
		refundVia:   newMethodSet(p.RefundMethods),
		autoConfirm: newMethodSet(p.AutoConfirmMethods),
		autoAccept:  p.AutoAccept,
		manual:      newStatusSet(p.ManualStatuses),
		timeouts:    maps.Clone(p.Timeouts),
		confirmDCC:  p.RequiresDeliveryConfirmation,
		guard:       guard.NewConstructorGuard(),
	}
	if r.timeouts == nil {
		r.timeouts = make(map[order.Status]TimeoutRule)
	}

	for _, s := range order.AllStatuses() {
		r.transitions[s] = make(statusSet)
	}
	for from, targets := range p.Forward {
		for _, to := range targets {
			r.transitions[from][to] = struct{}{}
		}
	}
	for from := range r.cancellable {
		r.transitions[from][order.Cancelled] = struct{}{}
	}
	for from := range r.refundable {
		r.transitions[from][order.Refunded] = struct{}{}
	}

	return r, nil
}

func validateParams(p Params) error {
	var problems []error

	if err := p.Vertical.Validate(); err != nil {
		problems = append(problems, err)
	}

	forward := make(map[order.Status]statusSet)
	for from, targets := range p.Forward {
		if err := from.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("transition source: %w", err))
			continue
		}
		if from == order.Refunded {
			problems = append(problems, inconsistent("%s is final and cannot have outgoing transitions", from))
		}
		forward[from] = newStatusSet(targets)
		for _, to := range targets {
			switch {
			case to.Validate() != nil:
				problems = append(problems, fmt.Errorf("transition target from %s: %w", from, to.Validate()))
			case to == from:
				problems = append(problems, inconsistent("%s cannot transition to itself", from))
			case to == order.Cancelled || to == order.Refunded:
				problems = append(problems, inconsistent(
					"%s -> %s must come from the cancellation or refund policy", from, to))
			}
		}
	}

	for _, s := range p.CancellableFrom {
		if err := s.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("cancellation policy: %w", err))
		} else if s == order.Cancelled || s == order.Refunded {
			problems = append(problems, inconsistent("cancellation from %s is not possible", s))
		}
	}

	for _, s := range p.RefundableFrom {
		if s != order.Delivered && s != order.Cancelled {
			problems = append(problems, inconsistent("refund from %s is not possible", s))
		}
	}

	for _, m := range slices.Concat(p.RefundMethods, p.AutoConfirmMethods) {
		if err := m.Validate(); err != nil {
			problems = append(problems, err)
		}
	}

	if len(p.AutoConfirmMethods) > 0 && !forward[order.Pending].has(order.PaymentConfirmed) {
		problems = append(problems, inconsistent("auto-confirmation needs %s -> %s",
			order.Pending, order.PaymentConfirmed))
	}

	manual := newStatusSet(p.ManualStatuses)
	for s := range manual {
		if err := s.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("manual statuses: %w", err))
		}
	}
	if p.AutoAccept {
		if !forward[order.PaymentConfirmed].has(order.Preparing) {
			problems = append(problems, inconsistent("auto-accept needs %s -> %s",
				order.PaymentConfirmed, order.Preparing))
		}
		if manual.has(order.PaymentConfirmed) {
			problems = append(problems, inconsistent("auto-accept contradicts manual %s", order.PaymentConfirmed))
		}
	}

	cancellable := newStatusSet(p.CancellableFrom)
	for s, rule := range p.Timeouts {
		if err := s.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("timeouts: %w", err))
			continue
		}
		if err := rule.validate(s); err != nil {
			problems = append(problems, err)
			continue
		}
		if rule.Action == TimeoutCancel && !cancellable.has(s) {
			problems = append(problems, inconsistent("timeout cancels from %s but cancellation is not allowed there", s))
		}
	}

	return errors.Join(problems...)
}

func inconsistent(format string, args ...any) error {
	return errs.NewValueIsInvalidErrorWithCause("workflow rules", fmt.Errorf(format, args...))
}

func (r Rules) Validate() error {
	return r.guard.Validate(ErrRulesAreNotConstructed)
}

func (r Rules) Vertical() Vertical {
	return r.vertical
}

// MerchantID is zero for vertical defaults.
func (r Rules) MerchantID() kernel.UUID {
	return r.merchantID
}

// Allows reports whether from -> to is in the transition table.
func (r Rules) Allows(from, to order.Status) bool {
	return r.transitions[from].has(to)
}

// AllowedTransitions returns the targets reachable from a status, in
// progression order.
func (r Rules) AllowedTransitions(from order.Status) []order.Status {
	return r.transitions[from].sorted()
}

func (r Rules) CanCancelFrom(s order.Status) bool {
	return r.cancellable.has(s)
}

func (r Rules) CancellableStatuses() []order.Status {
	return r.cancellable.sorted()
}

func (r Rules) CanRefundFrom(s order.Status) bool {
	return r.refundable.has(s)
}

func (r Rules) RefundableStatuses() []order.Status {
	return r.refundable.sorted()
}

// SupportsRefundVia reports whether the policy refunds payments made with m.
func (r Rules) SupportsRefundVia(m order.PaymentMethod) bool {
	return r.refundVia.has(m)
}

func (r Rules) RefundMethods() []order.PaymentMethod {
	return r.refundVia.sorted()
}

// IsAutoConfirmed reports whether payments made with m need no gateway round-trip.
func (r Rules) IsAutoConfirmed(m order.PaymentMethod) bool {
	return r.autoConfirm.has(m)
}

func (r Rules) AutoConfirmMethods() []order.PaymentMethod {
	return r.autoConfirm.sorted()
}

func (r Rules) AutoAccept() bool {
	return r.autoAccept
}

// RequiresManualAction reports whether the merchant must act before an
// order in s can move on.
func (r Rules) RequiresManualAction(s order.Status) bool {
	return r.manual.has(s)
}

func (r Rules) ManualStatuses() []order.Status {
	return r.manual.sorted()
}

// Timeout returns the limit configured for s, if any.
func (r Rules) Timeout(s order.Status) (TimeoutRule, bool) {
	rule, ok := r.timeouts[s]
	return rule, ok
}

// Timeouts returns a copy of all configured limits.
func (r Rules) Timeouts() map[order.Status]TimeoutRule {
	return maps.Clone(r.timeouts)
}

func (r Rules) RequiresDeliveryConfirmation() bool {
	return r.confirmDCC
}

// Params returns the policy in its construction form, so it can be
// adjusted and rebuilt.
func (r Rules) Params() Params {
	forward := make(map[order.Status][]order.Status)
	for from, targets := range r.transitions {
		var out []order.Status
		for _, to := range targets.sorted() {
			if to != order.Cancelled && to != order.Refunded {
				out = append(out, to)
			}
		}
		if len(out) > 0 {
			forward[from] = out
		}
	}

	return Params{
		Vertical:                     r.vertical,
		MerchantID:                   r.merchantID,
		Forward:                      forward,
		CancellableFrom:              r.cancellable.sorted(),
		RefundableFrom:               r.refundable.sorted(),
		RefundMethods:                r.refundVia.sorted(),
		AutoConfirmMethods:           r.autoConfirm.sorted(),
		AutoAccept:                   r.autoAccept,
		ManualStatuses:               r.manual.sorted(),
		Timeouts:                     maps.Clone(r.timeouts),
		RequiresDeliveryConfirmation: r.confirmDCC,
	}
}
