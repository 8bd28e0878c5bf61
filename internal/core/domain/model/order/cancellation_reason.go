package order

import (
	"fmt"
	"strings"

	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
)

// CancellationReason classifies why an order was cancelled.
type CancellationReason int

const (
	UnknownCancellationReason CancellationReason = iota
	CustomerRequest
	PaymentFailedReason
	BusinessClosed
	SystemError
	DeliveryUnavailable
)

func getCancellationReasonStrings() map[CancellationReason]string {
	return map[CancellationReason]string{
		UnknownCancellationReason: "UNKNOWN",
		CustomerRequest:           "CUSTOMER_REQUEST",
		PaymentFailedReason:       "PAYMENT_FAILED",
		BusinessClosed:            "BUSINESS_CLOSED",
		SystemError:               "SYSTEM_ERROR",
		DeliveryUnavailable:       "DELIVERY_UNAVAILABLE",
	}
}

func ParseCancellationReason(s string) (CancellationReason, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for reason, str := range getCancellationReasonStrings() {
		if reason != UnknownCancellationReason && str == name {
			return reason, nil
		}
	}
	return UnknownCancellationReason, errs.NewValueIsInvalidErrorWithCause("cancellationReason",
		fmt.Errorf("%q is not a valid cancellation reason", s))
}

func (r CancellationReason) Validate() error {
	if r <= UnknownCancellationReason || r > DeliveryUnavailable {
		return errs.NewValueIsInvalidErrorWithCause("cancellationReason",
			fmt.Errorf("%d is not a valid cancellation reason", r))
	}
	return nil
}

func (r CancellationReason) String() string {
	if str, ok := getCancellationReasonStrings()[r]; ok {
		return str
	}
	return "UNKNOWN"
}

func (r CancellationReason) MarshalText() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return []byte(r.String()), nil
}

func (r *CancellationReason) UnmarshalText(text []byte) error {
	parsed, err := ParseCancellationReason(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
