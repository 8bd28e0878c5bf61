// Package dcc implements the delivery confirmation code: a four digit,
// short-lived, attempt-limited secret that proves the courier met the
// customer. A successful validation is what authorises the final
// OutForDelivery -> Delivered transition of an order.
//
// Operations return domain events as values. A failed validation still
// returns the events it produced (ValidationFailed and possibly Expired) so
// that the security service can keep count of failures.
package dcc
