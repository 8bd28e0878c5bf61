package dcc

import (
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
)

const (
	EventTypeGenerated        = "DCCGenerated"
	EventTypeValidated        = "DCCValidated"
	EventTypeValidationFailed = "DCCValidationFailed"
	EventTypeExpired          = "DCCExpired"
)

// GeneratedEvent carries the code itself so it can be sent to the customer.
type GeneratedEvent struct {
	kernel.BaseEvent
	OrderID     kernel.UUID `json:"orderId"`
	Code        string      `json:"code"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	MaxAttempts int         `json:"maxAttempts"`
}

type ValidatedEvent struct {
	kernel.BaseEvent
	OrderID       kernel.UUID `json:"orderId"`
	CourierID     kernel.UUID `json:"courierId"`
	AttemptNumber int         `json:"attemptNumber"`
}

type ValidationFailedEvent struct {
	kernel.BaseEvent
	OrderID           kernel.UUID `json:"orderId"`
	CourierID         kernel.UUID `json:"courierId"`
	SubmittedCode     string      `json:"submittedCode"`
	AttemptNumber     int         `json:"attemptNumber"`
	RemainingAttempts int         `json:"remainingAttempts"`
}

// ExpiredEvent is emitted once per code. Forced expiries carry the admin
// and the reason; natural ones leave both empty.
type ExpiredEvent struct {
	kernel.BaseEvent
	OrderID      kernel.UUID `json:"orderId"`
	Forced       bool        `json:"forced"`
	AdminID      string      `json:"adminId,omitempty"`
	Reason       string      `json:"reason,omitempty"`
	AttemptCount int         `json:"attemptCount"`
}
