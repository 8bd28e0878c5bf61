package order

import (
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

const (
	EventTypeCreated         = "OrderCreated"
	EventTypeStatusChanged   = "OrderStatusChanged"
	EventTypeCancelled       = "OrderCancelled"
	EventTypeRefundRequested = "OrderRefundRequested"
	EventTypeTimeout         = "OrderTimeout"
)

// CreatedEvent is emitted once when an order is placed.
type CreatedEvent struct {
	kernel.BaseEvent
	OrderID    kernel.UUID     `json:"orderId"`
	MerchantID kernel.UUID     `json:"merchantId"`
	CustomerID kernel.UUID     `json:"customerId"`
	Total      decimal.Decimal `json:"total"`
	Currency   string          `json:"currency"`
}

// StatusChangedEvent carries every accepted status change.
type StatusChangedEvent struct {
	kernel.BaseEvent
	OrderID    kernel.UUID `json:"orderId"`
	MerchantID kernel.UUID `json:"merchantId"`
	From       Status      `json:"from"`
	To         Status      `json:"to"`
}

// CancelledEvent follows the StatusChangedEvent of a cancellation.
type CancelledEvent struct {
	kernel.BaseEvent
	OrderID        kernel.UUID        `json:"orderId"`
	MerchantID     kernel.UUID        `json:"merchantId"`
	PreviousStatus Status             `json:"previousStatus"`
	Reason         CancellationReason `json:"reason"`
	Details        string             `json:"details,omitempty"`
}

// RefundRequestedEvent asks the payment side to return the captured amount.
type RefundRequestedEvent struct {
	kernel.BaseEvent
	OrderID        kernel.UUID     `json:"orderId"`
	MerchantID     kernel.UUID     `json:"merchantId"`
	PreviousStatus Status          `json:"previousStatus"`
	Reason         string          `json:"reason"`
	Method         PaymentMethod   `json:"paymentMethod"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
}

// TimeoutEvent records that an order overstayed its status limit and which
// fallback action was taken.
type TimeoutEvent struct {
	kernel.BaseEvent
	OrderID    kernel.UUID   `json:"orderId"`
	MerchantID kernel.UUID   `json:"merchantId"`
	Status     Status        `json:"status"`
	EnteredAt  time.Time     `json:"enteredAt"`
	Limit      time.Duration `json:"limit"`
	Action     string        `json:"action"`
}

// NewTimeoutEvent is used by the state machine, which owns timeout policy.
func NewTimeoutEvent(o *Order, limit time.Duration, action string, at time.Time) TimeoutEvent {
	return TimeoutEvent{
		BaseEvent:  kernel.NewBaseEvent(EventTypeTimeout, o.id, at),
		OrderID:    o.id,
		MerchantID: o.merchantID,
		Status:     o.status,
		EnteredAt:  o.statusChangedAt,
		Limit:      limit,
		Action:     action,
	}
}
