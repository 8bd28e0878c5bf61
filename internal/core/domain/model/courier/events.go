package courier

import (
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
)

const (
	EventTypeLockoutTriggered   = "DCCLockoutTriggered"
	EventTypeLockoutCleared     = "DCCLockoutCleared"
	EventTypeSuspiciousActivity = "DCCSuspiciousActivity"
)

type LockoutTriggeredEvent struct {
	kernel.BaseEvent
	CourierID    kernel.UUID `json:"courierId"`
	OrderID      kernel.UUID `json:"orderId"`
	AttemptCount int         `json:"attemptCount"`
	ExpiresAt    time.Time   `json:"expiresAt"`
	Reason       string      `json:"reason"`
}

func NewLockoutTriggeredEvent(l Lockout) LockoutTriggeredEvent {
	return LockoutTriggeredEvent{
		BaseEvent:    kernel.NewBaseEvent(EventTypeLockoutTriggered, l.courierID, l.lockedAt),
		CourierID:    l.courierID,
		OrderID:      l.orderID,
		AttemptCount: l.attemptCount,
		ExpiresAt:    l.expiresAt,
		Reason:       l.reason,
	}
}

type LockoutClearedEvent struct {
	kernel.BaseEvent
	CourierID kernel.UUID `json:"courierId"`
	AdminID   string      `json:"adminId"`
	Reason    string      `json:"reason"`
}

func NewLockoutClearedEvent(courierID kernel.UUID, adminID, reason string, at time.Time) LockoutClearedEvent {
	return LockoutClearedEvent{
		BaseEvent: kernel.NewBaseEvent(EventTypeLockoutCleared, courierID, at),
		CourierID: courierID,
		AdminID:   adminID,
		Reason:    reason,
	}
}

type SuspiciousActivityEvent struct {
	kernel.BaseEvent
	CourierID kernel.UUID `json:"courierId"`
	OrderID   kernel.UUID `json:"orderId"`
	Pattern   Suspicion   `json:"pattern"`
}

func NewSuspiciousActivityEvent(courierID, orderID kernel.UUID, pattern Suspicion, at time.Time) SuspiciousActivityEvent {
	return SuspiciousActivityEvent{
		BaseEvent: kernel.NewBaseEvent(EventTypeSuspiciousActivity, courierID, at),
		CourierID: courierID,
		OrderID:   orderID,
		Pattern:   pattern,
	}
}
