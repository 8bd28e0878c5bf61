package courierrepo

import (
	"context"
	"errors"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/courier"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCourierSecurityRepository implements ports.CourierSecurityRepository.
// Writes are single statements, so it runs outside any unit of work.
type GormCourierSecurityRepository struct {
	db *gorm.DB
}

func NewGormCourierSecurityRepository(db *gorm.DB) *GormCourierSecurityRepository {
	return &GormCourierSecurityRepository{db: db}
}

func (r *GormCourierSecurityRepository) AddAttempt(ctx context.Context, attempt courier.ValidationAttempt) error {
	if err := errors.Join(attempt.CourierID.Validate(), attempt.OrderID.Validate()); err != nil {
		return err
	}
	dto := attemptFromDomain(attempt)
	return r.db.WithContext(ctx).Create(&dto).Error
}

func (r *GormCourierSecurityRepository) ListAttemptsSince(
	ctx context.Context,
	courierID kernel.UUID,
	since time.Time,
) ([]courier.ValidationAttempt, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}

	var dtos []AttemptDTO
	err := r.db.WithContext(ctx).
		Where("courier_id = ? AND attempted_at > ?", courierID.Bytes(), since).
		Order("attempted_at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	attempts := make([]courier.ValidationAttempt, 0, len(dtos))
	for _, dto := range dtos {
		a, convErr := attemptToDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

func (r *GormCourierSecurityRepository) GetLockout(ctx context.Context, courierID kernel.UUID) (*courier.Lockout, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}

	var dto LockoutDTO
	if err := r.db.WithContext(ctx).First(&dto, "courier_id = ?", courierID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("lockout", courierID.String())
		}
		return nil, err
	}

	lockout, err := lockoutToDomain(dto)
	if err != nil {
		return nil, err
	}
	return &lockout, nil
}

// SaveLockout upserts on courier_id.
func (r *GormCourierSecurityRepository) SaveLockout(ctx context.Context, lockout courier.Lockout) error {
	if err := lockout.Validate(); err != nil {
		return err
	}

	dto := lockoutFromDomain(lockout)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "courier_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"order_id", "attempt_count", "reason", "locked_at", "expires_at"}),
		}).
		Create(&dto).Error
}

func (r *GormCourierSecurityRepository) DeleteLockout(ctx context.Context, courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&LockoutDTO{}, "courier_id = ?", courierID.Bytes()).Error
}
