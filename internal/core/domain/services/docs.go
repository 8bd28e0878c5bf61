// Package services holds the stateless domain services of the order
// lifecycle:
//   - OrderStateMachine validates and executes order status changes against
//     the workflow rules of the order's merchant
//   - DCCGenerationService issues delivery confirmation codes from an
//     injected random source
//
// Services never perform I/O. Policies come from a WorkflowRuleProvider and
// time from an injected clock, so every decision is reproducible in tests.
package services
