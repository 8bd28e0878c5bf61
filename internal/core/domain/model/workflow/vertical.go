package workflow

import (
	"fmt"
	"strings"

	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
)

// Vertical is the business category of a merchant. It selects the default
// workflow rules.
type Vertical int

const (
	UnknownVertical Vertical = iota
	Restaurant
	Grocery
	Pharmacy
	Convenience
	Electronics
	Florist
	Beverages
	FuelStation
)

func getVerticalStrings() map[Vertical]string {
	return map[Vertical]string{
		UnknownVertical: "UNKNOWN",
		Restaurant:      "RESTAURANT",
		Grocery:         "GROCERY",
		Pharmacy:        "PHARMACY",
		Convenience:     "CONVENIENCE",
		Electronics:     "ELECTRONICS",
		Florist:         "FLORIST",
		Beverages:       "BEVERAGES",
		FuelStation:     "FUEL_STATION",
	}
}

// AllVerticals returns every valid vertical.
func AllVerticals() []Vertical {
	return []Vertical{Restaurant, Grocery, Pharmacy, Convenience, Electronics, Florist, Beverages, FuelStation}
}

func ParseVertical(s string) (Vertical, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for v, str := range getVerticalStrings() {
		if v != UnknownVertical && str == name {
			return v, nil
		}
	}
	return UnknownVertical, errs.NewValueIsInvalidErrorWithCause("vertical", fmt.Errorf("%q is not a valid vertical", s))
}

func (v Vertical) Validate() error {
	if v <= UnknownVertical || v > FuelStation {
		return errs.NewValueIsInvalidErrorWithCause("vertical", fmt.Errorf("%d is not a valid vertical", v))
	}
	return nil
}

func (v Vertical) String() string {
	if str, ok := getVerticalStrings()[v]; ok {
		return str
	}
	return "UNKNOWN"
}

func (v Vertical) MarshalText() ([]byte, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return []byte(v.String()), nil
}

func (v *Vertical) UnmarshalText(text []byte) error {
	parsed, err := ParseVertical(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
