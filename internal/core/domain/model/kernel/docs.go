// Package kernel holds the value objects shared by every aggregate of the
// order lifecycle: identifiers (UUID), amounts (Money), coordinates
// (GeoPoint) and the DomainEvent envelope.
//
// All values are immutable and validated at construction. Zero values fail
// Validate so a forgotten constructor call surfaces as an error instead of a
// silently empty field.
package kernel
