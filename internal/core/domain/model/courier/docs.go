// Package courier models the security record kept per courier for delivery
// confirmation: every code submission (ValidationAttempt), temporary
// lockouts after repeated failures (Lockout), rate limiting, detection of
// brute-force patterns and the aggregated ValidationStats shown to admins.
//
// Key business rules:
//   - A courier is locked out for Policy.LockoutDuration when a code's
//     attempt budget is exhausted or after Policy.MaxFailuresBeforeLockout
//     failures within Policy.RateLimitWindow
//   - A courier may not submit more than Policy.MaxAttemptsPerWindow codes
//     within Policy.RateLimitWindow
//   - Only an admin can lift a lockout before it expires
package courier
