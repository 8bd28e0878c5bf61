package orderrepo

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/ports"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository binds the repository to db, which may be a
// transaction handle.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add inserts a new order at version 1.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = 1
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	aggregate.SyncVersion(dto.Version)
	return nil
}

// Update writes every column when the stored version still equals the
// aggregate's, then bumps the version on both sides.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	expected := dto.Version
	dto.Version = expected + 1

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, expected).
		Select("*").
		Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.missingOrStale(ctx, aggregate.ID())
	}

	aggregate.SyncVersion(dto.Version)
	return nil
}

func (r *GormOrderRepository) missingOrStale(ctx context.Context, id kernel.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", id.Bytes()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("order", id.String())
	}
	return ports.ErrConcurrentModification
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListTimeoutCandidates pages through orders that may be overdue. Each
// status gets its own cutoff; orders with a reported timeout are skipped.
func (r *GormOrderRepository) ListTimeoutCandidates(ctx context.Context, scan ports.TimeoutScan) ([]*order.Order, error) {
	if len(scan.Cutoffs) == 0 || scan.Limit <= 0 {
		return []*order.Order{}, nil
	}

	statuses := slices.Collect(maps.Keys(scan.Cutoffs))
	slices.Sort(statuses)

	clauses := make([]string, 0, len(statuses))
	args := make([]any, 0, 2*len(statuses))
	for _, s := range statuses {
		clauses = append(clauses, "(status = ? AND status_changed_at < ?)")
		args = append(args, s.String(), scan.Cutoffs[s])
	}

	query := r.db.WithContext(ctx).
		Where("("+strings.Join(clauses, " OR ")+")", args...).
		Where("timeout_reported_at IS NULL")
	if scan.After != nil {
		query = query.Where("(status_changed_at, id) > (?, ?)", scan.After.StatusChangedAt, scan.After.ID.Bytes())
	}

	var dtos []OrderDTO
	err := query.
		Order("status_changed_at").
		Order("id").
		Limit(scan.Limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		orders = append(orders, o)
	}

	return orders, nil
}
