package dccrepo

import (
	"context"
	"errors"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/dcc"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/ports"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormDeliveryCodeRepository implements ports.DeliveryCodeRepository.
type GormDeliveryCodeRepository struct {
	db *gorm.DB
}

func NewGormDeliveryCodeRepository(db *gorm.DB) *GormDeliveryCodeRepository {
	return &GormDeliveryCodeRepository{db: db}
}

func (r *GormDeliveryCodeRepository) Add(ctx context.Context, code *dcc.DeliveryCode) error {
	if err := code.Validate(); err != nil {
		return err
	}

	dto := fromDomain(code)
	dto.Version = 1
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	code.SyncVersion(dto.Version)
	return nil
}

func (r *GormDeliveryCodeRepository) Update(ctx context.Context, code *dcc.DeliveryCode) error {
	if err := code.Validate(); err != nil {
		return err
	}
	version, err := r.overwrite(ctx, code.Version(), fromDomain(code))
	if err != nil {
		return err
	}
	code.SyncVersion(version)
	return nil
}

// Replace overwrites the row of previous with next under previous's version.
func (r *GormDeliveryCodeRepository) Replace(ctx context.Context, previous, next *dcc.DeliveryCode) error {
	if err := errors.Join(previous.Validate(), next.Validate()); err != nil {
		return err
	}
	if !previous.OrderID().IsEqual(next.OrderID()) {
		return errs.NewValueIsInvalidError("next")
	}

	version, err := r.overwrite(ctx, previous.Version(), fromDomain(next))
	if err != nil {
		return err
	}
	previous.SyncVersion(version)
	next.SyncVersion(version)
	return nil
}

func (r *GormDeliveryCodeRepository) overwrite(ctx context.Context, expected int64, dto DeliveryCodeDTO) (int64, error) {
	dto.Version = expected + 1

	result := r.db.WithContext(ctx).
		Model(&DeliveryCodeDTO{}).
		Where("order_id = ? AND version = ?", dto.OrderID, expected).
		Select("*").
		Omit("order_id").
		Updates(&dto)
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&DeliveryCodeDTO{}).
			Where("order_id = ?", dto.OrderID).Count(&count).Error; err != nil {
			return 0, err
		}
		if count == 0 {
			return 0, errs.NewObjectNotFoundError("delivery code", dto.OrderID.String())
		}
		return 0, ports.ErrConcurrentModification
	}

	return dto.Version, nil
}

func (r *GormDeliveryCodeRepository) GetByOrder(ctx context.Context, orderID kernel.UUID) (*dcc.DeliveryCode, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto DeliveryCodeDTO
	if err := r.db.WithContext(ctx).First(&dto, "order_id = ?", orderID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("delivery code", orderID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormDeliveryCodeRepository) ListActiveExpiredBefore(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*dcc.DeliveryCode, error) {
	if limit <= 0 {
		return []*dcc.DeliveryCode{}, nil
	}

	var dtos []DeliveryCodeDTO
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", dcc.Active.String(), now).
		Order("expires_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	codes := make([]*dcc.DeliveryCode, 0, len(dtos))
	for _, dto := range dtos {
		c, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		codes = append(codes, c)
	}
	return codes, nil
}
