package workflow

import (
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
)

// DefaultVertical is used for merchants without a known vertical.
const DefaultVertical = Convenience

// StandardForward is the progression shared by every vertical.
func StandardForward() map[order.Status][]order.Status {
	return map[order.Status][]order.Status{
		order.Pending:           {order.PaymentProcessing, order.PaymentConfirmed},
		order.PaymentProcessing: {order.PaymentConfirmed},
		order.PaymentConfirmed:  {order.Preparing},
		order.Preparing:         {order.ReadyForPickup},
		order.ReadyForPickup:    {order.OutForDelivery},
		order.OutForDelivery:    {order.Delivered},
	}
}

func refundableMethods() []order.PaymentMethod {
	var methods []order.PaymentMethod
	for _, m := range order.AllPaymentMethods() {
		if m.SupportsRefund() {
			methods = append(methods, m)
		}
	}
	return methods
}

func paymentProcessingTimeout() TimeoutRule {
	return CancelAfter(15*time.Minute, order.PaymentFailedReason, "Payment processing timeout")
}

// DefaultParams returns the default policy of a vertical. Unknown verticals
// get the DefaultVertical policy.
func DefaultParams(v Vertical) Params {
	p := Params{
		Vertical:           v,
		Forward:            StandardForward(),
		RefundableFrom:     []order.Status{order.Delivered, order.Cancelled},
		RefundMethods:      refundableMethods(),
		AutoConfirmMethods: []order.PaymentMethod{order.CashOnDelivery},
	}

	switch v {
	case Restaurant:
		p.CancellableFrom = []order.Status{
			order.Pending, order.PaymentProcessing, order.PaymentConfirmed, order.Preparing, order.ReadyForPickup,
		}
		p.ManualStatuses = []order.Status{order.PaymentConfirmed, order.Preparing}
		p.Timeouts = map[order.Status]TimeoutRule{
			order.PaymentProcessing: paymentProcessingTimeout(),
			order.PaymentConfirmed:  CancelAfter(5*time.Minute, order.BusinessClosed, "Merchant acceptance timeout"),
			order.Preparing:         CancelAfter(30*time.Minute, order.SystemError, "Preparation timeout"),
			order.ReadyForPickup:    CancelAfter(10*time.Minute, order.DeliveryUnavailable, "Pickup timeout"),
			order.OutForDelivery:    EscalateAfter(45*time.Minute, "Delivery timeout"),
		}
		p.RequiresDeliveryConfirmation = true

	case Grocery:
		p.CancellableFrom = []order.Status{
			order.Pending, order.PaymentProcessing, order.PaymentConfirmed, order.Preparing,
			order.ReadyForPickup, order.OutForDelivery,
		}
		p.AutoAccept = true
		p.ManualStatuses = []order.Status{order.Preparing}
		p.Timeouts = map[order.Status]TimeoutRule{
			order.PaymentProcessing: paymentProcessingTimeout(),
			order.PaymentConfirmed:  CancelAfter(2*time.Minute, order.BusinessClosed, "Merchant acceptance timeout"),
			order.Preparing:         CancelAfter(60*time.Minute, order.SystemError, "Preparation timeout"),
			order.ReadyForPickup:    CancelAfter(15*time.Minute, order.DeliveryUnavailable, "Pickup timeout"),
			order.OutForDelivery:    CancelAfter(60*time.Minute, order.DeliveryUnavailable, "Delivery timeout"),
		}
		p.RequiresDeliveryConfirmation = true

	case Pharmacy:
		p.CancellableFrom = []order.Status{
			order.Pending, order.PaymentProcessing, order.PaymentConfirmed, order.Preparing, order.ReadyForPickup,
		}
		p.RefundableFrom = []order.Status{order.Delivered}
		p.ManualStatuses = []order.Status{order.PaymentConfirmed}
		p.Timeouts = map[order.Status]TimeoutRule{
			order.PaymentProcessing: paymentProcessingTimeout(),
			order.PaymentConfirmed:  CancelAfter(10*time.Minute, order.BusinessClosed, "Merchant acceptance timeout"),
			order.Preparing:         CancelAfter(45*time.Minute, order.SystemError, "Preparation timeout"),
			order.ReadyForPickup:    CancelAfter(5*time.Minute, order.DeliveryUnavailable, "Pickup timeout"),
			order.OutForDelivery:    EscalateAfter(30*time.Minute, "Delivery timeout"),
		}
		p.RequiresDeliveryConfirmation = true

	default:
		if v.Validate() != nil {
			p.Vertical = DefaultVertical
		}
		p.CancellableFrom = []order.Status{
			order.Pending, order.PaymentProcessing, order.PaymentConfirmed, order.Preparing,
			order.ReadyForPickup, order.OutForDelivery,
		}
		p.AutoAccept = true
		p.Timeouts = map[order.Status]TimeoutRule{
			order.PaymentProcessing: paymentProcessingTimeout(),
			order.PaymentConfirmed:  CancelAfter(24*time.Hour, order.BusinessClosed, "Merchant acceptance timeout"),
			order.Preparing:         CancelAfter(24*time.Hour, order.SystemError, "Preparation timeout"),
			order.ReadyForPickup:    CancelAfter(24*time.Hour, order.DeliveryUnavailable, "Pickup timeout"),
			order.OutForDelivery:    CancelAfter(24*time.Hour, order.DeliveryUnavailable, "Delivery timeout"),
		}
	}

	return p
}

// DefaultForVertical returns the validated default rules of a vertical.
// The defaults are static and always consistent, so construction cannot fail.
func DefaultForVertical(v Vertical) Rules {
	rules, err := NewRules(DefaultParams(v))
	if err != nil {
		panic("workflow: inconsistent default rules for " + v.String() + ": " + err.Error())
	}
	return rules
}
