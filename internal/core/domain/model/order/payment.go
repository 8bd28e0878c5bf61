package order

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"
)

// PaymentMethod is how the customer pays for an order.
type PaymentMethod int

const (
	UnknownPaymentMethod PaymentMethod = iota
	MPesa
	Multibanco
	MBWay
	CreditCard
	DebitCard
	CashOnDelivery
)

func getPaymentMethodStrings() map[PaymentMethod]string {
	return map[PaymentMethod]string{
		UnknownPaymentMethod: "UNKNOWN",
		MPesa:                "MPESA",
		Multibanco:           "MULTIBANCO",
		MBWay:                "MB_WAY",
		CreditCard:           "CREDIT_CARD",
		DebitCard:            "DEBIT_CARD",
		CashOnDelivery:       "CASH_ON_DELIVERY",
	}
}

// AllPaymentMethods returns every valid payment method.
func AllPaymentMethods() []PaymentMethod {
	return []PaymentMethod{MPesa, Multibanco, MBWay, CreditCard, DebitCard, CashOnDelivery}
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for method, str := range getPaymentMethodStrings() {
		if method != UnknownPaymentMethod && str == name {
			return method, nil
		}
	}
	return UnknownPaymentMethod, errs.NewValueIsInvalidErrorWithCause("paymentMethod",
		fmt.Errorf("%q is not a valid payment method", s))
}

func (m PaymentMethod) Validate() error {
	if m <= UnknownPaymentMethod || m > CashOnDelivery {
		return errs.NewValueIsInvalidErrorWithCause("paymentMethod", fmt.Errorf("%d is not a valid payment method", m))
	}
	return nil
}

func (m PaymentMethod) String() string {
	if str, ok := getPaymentMethodStrings()[m]; ok {
		return str
	}
	return "UNKNOWN"
}

// SupportsRefund reports whether money can be returned through the same
// channel. Cash handed to a courier cannot be refunded by the platform.
func (m PaymentMethod) SupportsRefund() bool {
	return m.Validate() == nil && m != CashOnDelivery
}

// RequiresGateway reports whether the method needs an external payment
// confirmation before the order can progress.
func (m PaymentMethod) RequiresGateway() bool {
	return m.Validate() == nil && m != CashOnDelivery
}

func (m PaymentMethod) MarshalText() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return []byte(m.String()), nil
}

func (m *PaymentMethod) UnmarshalText(text []byte) error {
	parsed, err := ParsePaymentMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// PaymentStatus tracks the gateway side of a payment.
type PaymentStatus int

const (
	UnknownPaymentStatus PaymentStatus = iota
	PaymentPending
	PaymentProcessingAtGateway
	PaymentCompleted
	PaymentFailed
)

func getPaymentStatusStrings() map[PaymentStatus]string {
	return map[PaymentStatus]string{
		UnknownPaymentStatus:       "UNKNOWN",
		PaymentPending:             "PENDING",
		PaymentProcessingAtGateway: "PROCESSING",
		PaymentCompleted:           "COMPLETED",
		PaymentFailed:              "FAILED",
	}
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for status, str := range getPaymentStatusStrings() {
		if status != UnknownPaymentStatus && str == name {
			return status, nil
		}
	}
	return UnknownPaymentStatus, errs.NewValueIsInvalidErrorWithCause("paymentStatus",
		fmt.Errorf("%q is not a valid payment status", s))
}

func (s PaymentStatus) Validate() error {
	if s <= UnknownPaymentStatus || s > PaymentFailed {
		return errs.NewValueIsInvalidErrorWithCause("paymentStatus", fmt.Errorf("%d is not a valid payment status", s))
	}
	return nil
}

func (s PaymentStatus) String() string {
	if str, ok := getPaymentStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

var ErrPaymentInfoIsNotConstructed = errs.NewValueIsRequiredError("payment info must be created via NewPaymentInfo")

// PaymentInfo is the payment attached to an order.
type PaymentInfo struct {
	method    PaymentMethod
	reference string
	amount    kernel.Money
	status    PaymentStatus
	guard     guard.ConstructorGuard
}

// NewPaymentInfo builds payment info. reference is the gateway reference and
// may be empty until the gateway answers.
func NewPaymentInfo(method PaymentMethod, reference string, amount kernel.Money, status PaymentStatus) (PaymentInfo, error) {
	p := PaymentInfo{
		reference: strings.TrimSpace(reference),
		guard:     guard.NewConstructorGuard(),
	}
	if err := errors.Join(
		method.Validate(),
		amount.Validate(),
		status.Validate(),
	); err != nil {
		return PaymentInfo{}, err
	}
	p.method = method
	p.amount = amount
	p.status = status
	return p, nil
}

func (p PaymentInfo) Method() PaymentMethod {
	return p.method
}

func (p PaymentInfo) Reference() string {
	return p.reference
}

func (p PaymentInfo) Amount() kernel.Money {
	return p.amount
}

func (p PaymentInfo) Status() PaymentStatus {
	return p.status
}

func (p PaymentInfo) Validate() error {
	return p.guard.Validate(ErrPaymentInfoIsNotConstructed)
}
