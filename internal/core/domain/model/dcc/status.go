package dcc

import (
	"fmt"
	"strings"

	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
)

// Status is the state of a delivery confirmation code.
//
//	Active ──┬──> Used      (correct code submitted)
//	         └──> Expired   (time elapsed, attempts exhausted, forced by admin)
//
// Used and Expired are terminal.
type Status int

const (
	UnknownStatus Status = iota
	Active
	Used
	Expired
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		UnknownStatus: "UNKNOWN",
		Active:        "ACTIVE",
		Used:          "USED",
		Expired:       "EXPIRED",
	}
}

func ParseStatus(s string) (Status, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for status, str := range getStatusStrings() {
		if status != UnknownStatus && str == name {
			return status, nil
		}
	}
	return UnknownStatus, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid code status", s))
}

func (s Status) Validate() error {
	if s <= UnknownStatus || s > Expired {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid code status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

func (s Status) IsTerminal() bool {
	return s == Used || s == Expired
}

func (s Status) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
