// Package errs holds the error kinds shared by the domain, the use cases and
// the HTTP adapter, which maps each kind to a status code.
//
// Every kind pairs a sentinel (ErrValueIsRequired, ErrValueIsInvalid,
// ErrValueIsOutOfRange, ErrObjectNotFound) with a struct carrying the
// offending parameter. Unwrap exposes both the sentinel and the optional
// cause, so callers can test either:
//
//	err := errs.NewValueIsRequiredErrorWithCause("courierId", kernel.ErrUUIDIsNotConstructed)
//	errors.Is(err, errs.ErrValueIsRequired)       // true
//	errors.Is(err, kernel.ErrUUIDIsNotConstructed) // true
package errs
