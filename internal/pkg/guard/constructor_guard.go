// Package guard marks domain values as built through their constructors so a
// zero value coming from a struct literal or a bad restore is caught early.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate on a zero guard when the
// caller does not supply its own error.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded into value objects and aggregates. Only
// NewConstructorGuard produces a guard that validates.
//
//	type Money struct {
//	    amount decimal.Decimal
//	    guard  guard.ConstructorGuard
//	}
//
//	func (m Money) Validate() error {
//	    return m.guard.Validate(ErrMoneyIsNotConstructed)
//	}
type ConstructorGuard struct {
	constructed bool
}

// NewConstructorGuard returns a guard that reports its owner as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{constructed: true}
}

// Validate returns nil for a constructed guard. Otherwise it returns
// notConstructedErr, or ErrDefaultConstructorGuard when that is nil.
func (g ConstructorGuard) Validate(notConstructedErr error) error {
	if g.constructed {
		return nil
	}
	if notConstructedErr == nil {
		return ErrDefaultConstructorGuard
	}
	return notConstructedErr
}
