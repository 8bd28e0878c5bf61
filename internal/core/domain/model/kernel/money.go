package kernel

import (
	"errors"
	"fmt"

	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the settlement currency of the marketplace (Mozambican metical).
const DefaultCurrency = "MZN"

var ErrMoneyIsNotConstructed = errs.NewValueIsRequiredError("money must be created via NewMoney")

// Money is a non-negative decimal amount in a single ISO 4217 currency.
// Arithmetic uses github.com/shopspring/decimal so line totals never
// accumulate binary floating point error.
type Money struct {
	amount   decimal.Decimal
	currency string
	guard    guard.ConstructorGuard
}

// NewMoney validates that amount is not negative and currency is a three
// letter code.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	m := Money{guard: guard.NewConstructorGuard()}
	if err := errors.Join(m.setAmount(amount), m.setCurrency(currency)); err != nil {
		return Money{}, err
	}
	return m, nil
}

// ZeroMoney returns a zero amount in currency.
func ZeroMoney(currency string) (Money, error) {
	return NewMoney(decimal.Zero, currency)
}

func (m Money) Amount() decimal.Decimal {
	return m.amount
}

func (m Money) Currency() string {
	return m.currency
}

// Add sums two amounts of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("currency",
			fmt.Errorf("cannot add %s to %s", other.currency, m.currency))
	}
	return NewMoney(m.amount.Add(other.amount), m.currency)
}

// Multiply scales the amount by a positive quantity.
func (m Money) Multiply(quantity int) (Money, error) {
	if quantity <= 0 {
		return Money{}, errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "unbounded")
	}
	return NewMoney(m.amount.Mul(decimal.NewFromInt(int64(quantity))), m.currency)
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) IsEqual(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + m.currency
}

func (m Money) Validate() error {
	return m.guard.Validate(ErrMoneyIsNotConstructed)
}

func (m *Money) setAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%s is negative", amount))
	}
	m.amount = amount
	return nil
}

func (m *Money) setCurrency(currency string) error {
	if len(currency) != 3 {
		return errs.NewValueIsInvalidErrorWithCause("currency",
			fmt.Errorf("%q is not a three letter ISO 4217 code", currency))
	}
	m.currency = currency
	return nil
}
