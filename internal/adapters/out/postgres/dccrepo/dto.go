// Package dccrepo maps delivery confirmation codes to the delivery_codes
// table, one row per order.
package dccrepo

import (
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/dcc"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type DeliveryCodeDTO struct {
	OrderID     uuid.UUID                       `gorm:"type:uuid;primaryKey"`
	Code        string                          `gorm:"size:4"`
	Status      string                          `gorm:"size:16"`
	GeneratedAt time.Time
	ExpiresAt   time.Time
	MaxAttempts int
	Attempts    datatypes.JSONSlice[AttemptDTO] `gorm:"type:jsonb"`
	UsedAt      *time.Time
	ExpiredAt   *time.Time
	ExpiredBy   string
	Reason      string
	Version     int64
}

func (DeliveryCodeDTO) TableName() string {
	return "delivery_codes"
}

// AttemptDTO is one element of the attempts JSON array.
type AttemptDTO struct {
	CourierID     uuid.UUID `json:"courierId"`
	SubmittedCode string    `json:"submittedCode"`
	AttemptedAt   time.Time `json:"attemptedAt"`
	Successful    bool      `json:"successful"`
}

func fromDomain(c *dcc.DeliveryCode) DeliveryCodeDTO {
	attempts := make([]AttemptDTO, 0, c.AttemptCount())
	for _, a := range c.Attempts() {
		attempts = append(attempts, AttemptDTO{
			CourierID:     a.CourierID.Bytes(),
			SubmittedCode: a.SubmittedCode,
			AttemptedAt:   a.AttemptedAt,
			Successful:    a.Successful,
		})
	}

	return DeliveryCodeDTO{
		OrderID:     c.OrderID().Bytes(),
		Code:        c.Code(),
		Status:      c.Status().String(),
		GeneratedAt: c.GeneratedAt(),
		ExpiresAt:   c.ExpiresAt(),
		MaxAttempts: c.MaxAttempts(),
		Attempts:    attempts,
		UsedAt:      c.UsedAt(),
		ExpiredAt:   c.ExpiredAt(),
		ExpiredBy:   c.ExpiredBy(),
		Reason:      c.ExpiryReason(),
		Version:     c.Version(),
	}
}

func toDomain(dto DeliveryCodeDTO) (*dcc.DeliveryCode, error) {
	orderID, err := kernel.UUIDFrom(dto.OrderID)
	if err != nil {
		return nil, err
	}
	status, err := dcc.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	attempts := make([]dcc.Attempt, 0, len(dto.Attempts))
	for _, a := range dto.Attempts {
		courierID, idErr := kernel.UUIDFrom(a.CourierID)
		if idErr != nil {
			return nil, idErr
		}
		attempts = append(attempts, dcc.Attempt{
			CourierID:     courierID,
			SubmittedCode: a.SubmittedCode,
			AttemptedAt:   a.AttemptedAt.UTC(),
			Successful:    a.Successful,
		})
	}

	return dcc.RestoreDeliveryCode(dcc.RestoreParams{
		OrderID:     orderID,
		Code:        dto.Code,
		Status:      status,
		GeneratedAt: dto.GeneratedAt,
		ExpiresAt:   dto.ExpiresAt,
		MaxAttempts: dto.MaxAttempts,
		Attempts:    attempts,
		UsedAt:      utc(dto.UsedAt),
		ExpiredAt:   utc(dto.ExpiredAt),
		ExpiredBy:   dto.ExpiredBy,
		Reason:      dto.Reason,
		Version:     dto.Version,
	})
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
