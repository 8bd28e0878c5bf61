package http

import (
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/application/usecases/queries"

	"github.com/shopspring/decimal"
)

type NewOrderItem struct {
	ProductID string          `json:"productId" validate:"required,uuid"`
	Name      string          `json:"name"      validate:"required,max=255"`
	Quantity  int             `json:"quantity"  validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type NewOrderAddress struct {
	Street       string  `json:"street"       validate:"required,max=255"`
	City         string  `json:"city"         validate:"required,max=128"`
	District     string  `json:"district"     validate:"max=128"`
	PostalCode   string  `json:"postalCode"   validate:"max=32"`
	Country      string  `json:"country"      validate:"required,max=64"`
	Latitude     float64 `json:"latitude"     validate:"latitude"`
	Longitude    float64 `json:"longitude"    validate:"longitude"`
	Instructions string  `json:"instructions"`
}

type NewOrder struct {
	OrderID       string          `json:"orderId"       validate:"omitempty,uuid"`
	MerchantID    string          `json:"merchantId"    validate:"required,uuid"`
	CustomerID    string          `json:"customerId"    validate:"required,uuid"`
	Items         []NewOrderItem  `json:"items"         validate:"required,min=1,dive"`
	Address       NewOrderAddress `json:"address"       validate:"required"`
	PaymentMethod string          `json:"paymentMethod" validate:"required"`
	Currency      string          `json:"currency"      validate:"omitempty,len=3"`
}

type StatusTransition struct {
	Status string `json:"status" validate:"required"`
}

type Cancellation struct {
	Reason  string `json:"reason"  validate:"required"`
	Details string `json:"details" validate:"max=1000"`
}

type RefundRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

// DeliveryCodeRequest leaves the defaults in place for zero values.
type DeliveryCodeRequest struct {
	ExpiresInMinutes int `json:"expiresInMinutes" validate:"gte=0"`
	MaxAttempts      int `json:"maxAttempts"      validate:"gte=0"`
}

type DeliveryConfirmation struct {
	CourierID string `json:"courierId" validate:"required,uuid"`
	Code      string `json:"code"      validate:"required,len=4,numeric"`
}

type AdminAction struct {
	AdminID string `json:"adminId" validate:"required,max=128"`
	Reason  string `json:"reason"  validate:"required,max=1000"`
}

type OrderCreated struct {
	OrderID string `json:"orderId"`
}

type DeliveryCodeView struct {
	Status       string    `json:"status"`
	ExpiresAt    time.Time `json:"expiresAt"`
	AttemptCount int       `json:"attemptCount"`
	MaxAttempts  int       `json:"maxAttempts"`
}

type OrderView struct {
	ID                 string            `json:"id"`
	MerchantID         string            `json:"merchantId"`
	CustomerID         string            `json:"customerId"`
	Status             string            `json:"status"`
	ItemCount          int               `json:"itemCount"`
	Total              decimal.Decimal   `json:"total"`
	Currency           string            `json:"currency"`
	PaymentMethod      string            `json:"paymentMethod"`
	PaymentStatus      string            `json:"paymentStatus"`
	CancellationReason string            `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	StatusChangedAt    time.Time         `json:"statusChangedAt"`
	Version            int64             `json:"version"`
	DeliveryCode       *DeliveryCodeView `json:"deliveryCode,omitempty"`
}

func toOrderView(v queries.GetOrderQueryResponse) OrderView {
	view := OrderView{
		ID:                 v.ID.String(),
		MerchantID:         v.MerchantID.String(),
		CustomerID:         v.CustomerID.String(),
		Status:             v.Status.String(),
		ItemCount:          v.ItemCount,
		Total:              v.Total,
		Currency:           v.Currency,
		PaymentMethod:      v.PaymentMethod.String(),
		PaymentStatus:      v.PaymentStatus.String(),
		CancellationReason: v.CancellationReason,
		CreatedAt:          v.CreatedAt,
		StatusChangedAt:    v.StatusChangedAt,
		Version:            v.Version,
	}
	if v.DeliveryCode != nil {
		view.DeliveryCode = &DeliveryCodeView{
			Status:       v.DeliveryCode.Status.String(),
			ExpiresAt:    v.DeliveryCode.ExpiresAt,
			AttemptCount: v.DeliveryCode.AttemptCount,
			MaxAttempts:  v.DeliveryCode.MaxAttempts,
		}
	}
	return view
}

type ActiveOrder struct {
	ID              string    `json:"id"`
	MerchantID      string    `json:"merchantId"`
	Status          string    `json:"status"`
	StatusChangedAt time.Time `json:"statusChangedAt"`
}

type ValidationStats struct {
	CourierID               string     `json:"courierId"`
	Since                   time.Time  `json:"since"`
	TotalAttempts           int        `json:"totalAttempts"`
	SuccessfulAttempts      int        `json:"successfulAttempts"`
	FailedAttempts          int        `json:"failedAttempts"`
	UniqueOrders            int        `json:"uniqueOrders"`
	SuccessRate             float64    `json:"successRate"`
	FirstAttemptAt          *time.Time `json:"firstAttemptAt,omitempty"`
	LastAttemptAt           *time.Time `json:"lastAttemptAt,omitempty"`
	LockedOut               bool       `json:"lockedOut"`
	RemainingLockoutSeconds int64      `json:"remainingLockoutSeconds"`
}

func toValidationStats(s queries.GetCourierValidationStatsQueryResponse) ValidationStats {
	return ValidationStats{
		CourierID:               s.CourierID.String(),
		Since:                   s.Since,
		TotalAttempts:           s.TotalAttempts,
		SuccessfulAttempts:      s.SuccessfulAttempts,
		FailedAttempts:          s.FailedAttempts,
		UniqueOrders:            s.UniqueOrders,
		SuccessRate:             s.SuccessRate,
		FirstAttemptAt:          s.FirstAttemptAt,
		LastAttemptAt:           s.LastAttemptAt,
		LockedOut:               s.LockedOut,
		RemainingLockoutSeconds: int64(s.RemainingLockout.Seconds()),
	}
}
