// Package workflow holds the per-merchant policy that drives the order state
// machine: which status changes are allowed, when an order may be cancelled
// or refunded, which payment methods skip gateway confirmation, which
// statuses wait for the merchant and how long an order may sit in each
// status before a fallback action applies.
//
// Rules are data, not code. Verticals differ only in the tables returned by
// DefaultParams, and merchants adjust them through an Override. Every policy
// is checked for internal consistency at construction.
package workflow
