// Package courierrepo persists the delivery code submission history and
// lockouts of couriers.
package courierrepo

import (
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/courier"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// AttemptDTO is an append-only row of courier_validation_attempts.
type AttemptDTO struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	CourierID     uuid.UUID `gorm:"type:uuid;index:idx_courier_attempts_courier_time"`
	OrderID       uuid.UUID `gorm:"type:uuid"`
	SubmittedCode string    `gorm:"size:16"`
	Successful    bool
	AttemptedAt   time.Time `gorm:"index:idx_courier_attempts_courier_time"`
}

func (AttemptDTO) TableName() string {
	return "courier_validation_attempts"
}

// LockoutDTO holds at most one lockout per courier.
type LockoutDTO struct {
	CourierID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID `gorm:"type:uuid"`
	AttemptCount int
	Reason       string
	LockedAt     time.Time
	ExpiresAt    time.Time
}

func (LockoutDTO) TableName() string {
	return "courier_lockouts"
}

func attemptFromDomain(a courier.ValidationAttempt) AttemptDTO {
	return AttemptDTO{
		CourierID:     a.CourierID.Bytes(),
		OrderID:       a.OrderID.Bytes(),
		SubmittedCode: a.SubmittedCode,
		Successful:    a.Successful,
		AttemptedAt:   a.AttemptedAt,
	}
}

func attemptToDomain(dto AttemptDTO) (courier.ValidationAttempt, error) {
	courierID, err := kernel.UUIDFrom(dto.CourierID)
	if err != nil {
		return courier.ValidationAttempt{}, err
	}
	orderID, err := kernel.UUIDFrom(dto.OrderID)
	if err != nil {
		return courier.ValidationAttempt{}, err
	}
	return courier.NewValidationAttempt(courierID, orderID, dto.SubmittedCode, dto.Successful, dto.AttemptedAt)
}

func lockoutFromDomain(l courier.Lockout) LockoutDTO {
	return LockoutDTO{
		CourierID:    l.CourierID().Bytes(),
		OrderID:      l.OrderID().Bytes(),
		AttemptCount: l.AttemptCount(),
		Reason:       l.Reason(),
		LockedAt:     l.LockedAt(),
		ExpiresAt:    l.ExpiresAt(),
	}
}

func lockoutToDomain(dto LockoutDTO) (courier.Lockout, error) {
	courierID, err := kernel.UUIDFrom(dto.CourierID)
	if err != nil {
		return courier.Lockout{}, err
	}
	orderID, err := kernel.UUIDFrom(dto.OrderID)
	if err != nil {
		return courier.Lockout{}, err
	}
	return courier.RestoreLockout(courierID, orderID, dto.AttemptCount, dto.Reason, dto.LockedAt, dto.ExpiresAt)
}
