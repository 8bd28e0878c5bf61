// Package queries contains read operations for retrieving system state.
// Queries bypass the aggregates and read flat projections straight from
// storage.
package queries

import (
	"errors"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/dcc"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery reads one order together with the state of its delivery
// code. The code itself is never part of the view.
//
// Example:
//
//	query, err := NewGetOrderQuery(orderID)
//	view, err := handler.Handle(ctx, query)
//	if view.DeliveryCode != nil && view.DeliveryCode.Status == dcc.Active { ... }
type GetOrderQuery struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetOrderQueryResponse is the read model of one order.
type GetOrderQueryResponse struct {
	ID                 kernel.UUID
	MerchantID         kernel.UUID
	CustomerID         kernel.UUID
	Status             order.Status
	ItemCount          int
	Total              decimal.Decimal
	Currency           string
	PaymentMethod      order.PaymentMethod
	PaymentStatus      order.PaymentStatus
	CancellationReason string
	CreatedAt          time.Time
	StatusChangedAt    time.Time
	Version            int64

	// DeliveryCode is nil until a code was issued for the order.
	DeliveryCode *DeliveryCodeSummary
}

type DeliveryCodeSummary struct {
	Status       dcc.Status
	ExpiresAt    time.Time
	AttemptCount int
	MaxAttempts  int
}
