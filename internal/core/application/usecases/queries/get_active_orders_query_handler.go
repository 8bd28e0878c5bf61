package queries

import (
	"context"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetActiveOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetActiveOrdersQueryHandler(db *gorm.DB) (*GetActiveOrdersQueryHandler, error) {
	if db == nil {
		return nil, errs.NewValueIsRequiredError("db")
	}
	return &GetActiveOrdersQueryHandler{db: db}, nil
}

func (h *GetActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetActiveOrdersQuery,
) ([]GetActiveOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	statuses := make([]string, 0)
	for _, s := range order.AllStatuses() {
		if s.IsActive() {
			statuses = append(statuses, s.String())
		}
	}

	tx := h.db.WithContext(ctx).
		Table("orders").
		Select("id, merchant_id, status, status_changed_at").
		Where("status IN ?", statuses)
	if query.MerchantID() != nil {
		tx = tx.Where("merchant_id = ?", query.MerchantID().Bytes())
	}

	rows, err := tx.Order("status_changed_at, id").Limit(query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]GetActiveOrdersQueryResponse, 0)
	for rows.Next() {
		var (
			id, merchantID  uuid.UUID
			status          string
			statusChangedAt time.Time
		)
		if err = rows.Scan(&id, &merchantID, &status, &statusChangedAt); err != nil {
			return nil, err
		}

		var item GetActiveOrdersQueryResponse
		if item.ID, err = kernel.UUIDFrom(id); err != nil {
			return nil, err
		}
		if item.MerchantID, err = kernel.UUIDFrom(merchantID); err != nil {
			return nil, err
		}
		if item.Status, err = order.ParseStatus(status); err != nil {
			return nil, err
		}
		item.StatusChangedAt = statusChangedAt
		result = append(result, item)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
