package workflow

import (
	"maps"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
)

// Override adjusts the vertical defaults for one merchant. Nil fields
// inherit the default; Timeouts are merged per status.
type Override struct {
	CancellableFrom              []order.Status
	RefundableFrom               []order.Status
	RefundMethods                []order.PaymentMethod
	AutoAccept                   *bool
	ManualStatuses               []order.Status
	Timeouts                     map[order.Status]TimeoutRule
	RequiresDeliveryConfirmation *bool
}

// IsEmpty reports whether o changes nothing.
func (o Override) IsEmpty() bool {
	return o.CancellableFrom == nil &&
		o.RefundableFrom == nil &&
		o.RefundMethods == nil &&
		o.AutoAccept == nil &&
		o.ManualStatuses == nil &&
		len(o.Timeouts) == 0 &&
		o.RequiresDeliveryConfirmation == nil
}

// ForMerchant builds the rules of a merchant from its vertical defaults and
// an override. The merged policy goes through the same consistency checks
// as any other.
func ForMerchant(merchantID kernel.UUID, vertical Vertical, o Override) (Rules, error) {
	if err := merchantID.Validate(); err != nil {
		return Rules{}, err
	}
	if err := vertical.Validate(); err != nil {
		return Rules{}, err
	}

	p := DefaultParams(vertical)
	p.MerchantID = merchantID

	if o.CancellableFrom != nil {
		p.CancellableFrom = o.CancellableFrom
	}
	if o.RefundableFrom != nil {
		p.RefundableFrom = o.RefundableFrom
	}
	if o.RefundMethods != nil {
		p.RefundMethods = o.RefundMethods
	}
	if o.AutoAccept != nil {
		p.AutoAccept = *o.AutoAccept
	}
	if o.ManualStatuses != nil {
		p.ManualStatuses = o.ManualStatuses
	}
	if len(o.Timeouts) > 0 {
		timeouts := maps.Clone(p.Timeouts)
		if timeouts == nil {
			timeouts = make(map[order.Status]TimeoutRule, len(o.Timeouts))
		}
		maps.Copy(timeouts, o.Timeouts)
		p.Timeouts = timeouts
	}
	if o.RequiresDeliveryConfirmation != nil {
		p.RequiresDeliveryConfirmation = *o.RequiresDeliveryConfirmation
	}

	return NewRules(p)
}
