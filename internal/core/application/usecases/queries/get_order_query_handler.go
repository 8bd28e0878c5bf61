package queries

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/dcc"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const getOrderSQL = `
	SELECT
		o.id,
		o.merchant_id,
		o.customer_id,
		o.status,
		jsonb_array_length(o.items),
		o.payment_amount,
		o.payment_currency,
		o.payment_method,
		o.payment_status,
		o.cancellation_reason,
		o.created_at,
		o.status_changed_at,
		o.version,
		c.status,
		c.expires_at,
		jsonb_array_length(c.attempts),
		c.max_attempts
	FROM orders o
	LEFT JOIN delivery_codes c ON c.order_id = o.id
	WHERE o.id = ?
`

// GetOrderQueryHandler reads the order view with one joined query.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) (*GetOrderQueryHandler, error) {
	if db == nil {
		return nil, errs.NewValueIsRequiredError("db")
	}
	return &GetOrderQueryHandler{db: db}, nil
}

// Handle returns errs.ObjectNotFoundError for unknown orders.
func (h *GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	var (
		view                          GetOrderQueryResponse
		id, merchantID, customerID    uuid.UUID
		status, method, paymentStatus string
		codeStatus                    sql.NullString
		codeExpiresAt                 sql.NullTime
		codeAttempts, codeMaxAttempts sql.NullInt64
	)

	row := h.db.WithContext(ctx).Raw(getOrderSQL, query.OrderID().Bytes()).Row()
	err := row.Scan(
		&id,
		&merchantID,
		&customerID,
		&status,
		&view.ItemCount,
		&view.Total,
		&view.Currency,
		&method,
		&paymentStatus,
		&view.CancellationReason,
		&view.CreatedAt,
		&view.StatusChangedAt,
		&view.Version,
		&codeStatus,
		&codeExpiresAt,
		&codeAttempts,
		&codeMaxAttempts,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	if view.ID, err = kernel.UUIDFrom(id); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if view.MerchantID, err = kernel.UUIDFrom(merchantID); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if view.CustomerID, err = kernel.UUIDFrom(customerID); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if view.Status, err = order.ParseStatus(status); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if view.PaymentMethod, err = order.ParsePaymentMethod(method); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if view.PaymentStatus, err = order.ParsePaymentStatus(paymentStatus); err != nil {
		return GetOrderQueryResponse{}, err
	}

	if codeStatus.Valid {
		summary := &DeliveryCodeSummary{
			ExpiresAt:    codeExpiresAt.Time,
			AttemptCount: int(codeAttempts.Int64),
			MaxAttempts:  int(codeMaxAttempts.Int64),
		}
		if summary.Status, err = dcc.ParseStatus(codeStatus.String); err != nil {
			return GetOrderQueryResponse{}, err
		}
		view.DeliveryCode = summary
	}

	return view, nil
}
