// Package order models the Order aggregate of the delivery marketplace: its
// closed Status enumeration, line items, delivery address, payment and the
// events emitted when the order changes.
//
// Orders are mutated only through status operations that return domain
// events as values. Whether a given change is allowed for a merchant is
// decided outside this package by services.OrderStateMachine against the
// merchant's workflow rules; this package guards only structural invariants.
//
// Key business rules:
//   - Orders are created in Pending with at least one line item
//   - Items are immutable after creation
//   - Refunded is final; Cancelled and Delivered are final unless refunded
//   - Every change stamps the time the order entered its new status
package order
