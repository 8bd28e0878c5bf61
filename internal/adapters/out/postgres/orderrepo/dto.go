// Package orderrepo maps the order aggregate to the orders table.
package orderrepo

import (
	"fmt"
	"time"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderDTO is one row of the orders table. Line items travel as a JSONB
// array; the address and payment are flattened into prefixed columns.
type OrderDTO struct {
	ID                  uuid.UUID                    `gorm:"type:uuid;primaryKey"`
	MerchantID          uuid.UUID                    `gorm:"type:uuid;index"`
	CustomerID          uuid.UUID                    `gorm:"type:uuid"`
	Status              string                       `gorm:"size:32;index"`
	Items               datatypes.JSONSlice[ItemDTO] `gorm:"type:jsonb"`
	Address             AddressDTO                   `gorm:"embedded;embeddedPrefix:address_"`
	Payment             PaymentDTO                   `gorm:"embedded;embeddedPrefix:payment_"`
	CancellationReason  string                       `gorm:"size:32"`
	CancellationDetails string
	RefundReason        string
	CreatedAt           time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime:false"`
	StatusChangedAt     time.Time
	TimeoutReportedAt   *time.Time
	Version             int64
}

func (OrderDTO) TableName() string {
	return "orders"
}

// ItemDTO is one element of the items JSON array.
type ItemDTO struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Currency  string          `json:"currency"`
}

type AddressDTO struct {
	Street       string
	City         string
	District     string
	PostalCode   string
	Country      string
	Latitude     float64
	Longitude    float64
	Instructions string
}

type PaymentDTO struct {
	Method    string          `gorm:"size:32"`
	Reference string          `gorm:"size:128"`
	Amount    decimal.Decimal `gorm:"type:numeric(14,2)"`
	Currency  string          `gorm:"size:3"`
	Status    string          `gorm:"size:32"`
}

func fromDomain(o *order.Order) OrderDTO {
	items := make([]ItemDTO, 0, o.ItemCount())
	for _, item := range o.Items() {
		items = append(items, ItemDTO{
			ProductID: item.ProductID().Bytes(),
			Name:      item.Name(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice().Amount(),
			Currency:  item.UnitPrice().Currency(),
		})
	}

	address := o.Address()
	payment := o.Payment()

	dto := OrderDTO{
		ID:         o.ID().Bytes(),
		MerchantID: o.MerchantID().Bytes(),
		CustomerID: o.CustomerID().Bytes(),
		Status:     o.Status().String(),
		Items:      items,
		Address: AddressDTO{
			Street:       address.Street(),
			City:         address.City(),
			District:     address.District(),
			PostalCode:   address.PostalCode(),
			Country:      address.Country(),
			Latitude:     address.Point().Latitude(),
			Longitude:    address.Point().Longitude(),
			Instructions: address.Instructions(),
		},
		Payment: PaymentDTO{
			Method:    payment.Method().String(),
			Reference: payment.Reference(),
			Amount:    payment.Amount().Amount(),
			Currency:  payment.Amount().Currency(),
			Status:    payment.Status().String(),
		},
		CancellationDetails: o.CancellationDetails(),
		RefundReason:        o.RefundReason(),
		CreatedAt:           o.CreatedAt(),
		UpdatedAt:           o.UpdatedAt(),
		StatusChangedAt:     o.StatusChangedAt(),
		Version:             o.Version(),
	}
	if reported := o.TimeoutReportedAt(); !reported.IsZero() {
		dto.TimeoutReportedAt = &reported
	}
	if reason := o.CancellationReason(); reason.Validate() == nil {
		dto.CancellationReason = reason.String()
	}
	return dto
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	ids, err := parseIDs(dto.ID, dto.MerchantID, dto.CustomerID)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for i, in := range dto.Items {
		item, itemErr := itemToDomain(in)
		if itemErr != nil {
			return nil, fmt.Errorf("order %s item %d: %w", dto.ID, i, itemErr)
		}
		items = append(items, item)
	}

	point, err := kernel.NewGeoPoint(dto.Address.Latitude, dto.Address.Longitude)
	if err != nil {
		return nil, err
	}
	address, err := order.NewDeliveryAddress(order.AddressParams{
		Street:       dto.Address.Street,
		City:         dto.Address.City,
		District:     dto.Address.District,
		PostalCode:   dto.Address.PostalCode,
		Country:      dto.Address.Country,
		Point:        point,
		Instructions: dto.Address.Instructions,
	})
	if err != nil {
		return nil, err
	}

	payment, err := paymentToDomain(dto.Payment)
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var reason order.CancellationReason
	if dto.CancellationReason != "" {
		if reason, err = order.ParseCancellationReason(dto.CancellationReason); err != nil {
			return nil, err
		}
	}

	var reportedAt time.Time
	if dto.TimeoutReportedAt != nil {
		reportedAt = *dto.TimeoutReportedAt
	}

	return order.RestoreOrder(order.RestoreParams{
		ID:                  ids[0],
		MerchantID:          ids[1],
		CustomerID:          ids[2],
		Items:               items,
		Address:             address,
		Payment:             payment,
		Status:              status,
		CancellationReason:  reason,
		CancellationDetails: dto.CancellationDetails,
		RefundReason:        dto.RefundReason,
		CreatedAt:           dto.CreatedAt,
		UpdatedAt:           dto.UpdatedAt,
		StatusChangedAt:     dto.StatusChangedAt,
		TimeoutReportedAt:   reportedAt,
		Version:             dto.Version,
	})
}

func parseIDs(raw ...uuid.UUID) ([]kernel.UUID, error) {
	ids := make([]kernel.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := kernel.UUIDFrom(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func itemToDomain(in ItemDTO) (order.Item, error) {
	productID, err := kernel.UUIDFrom(in.ProductID)
	if err != nil {
		return order.Item{}, err
	}
	price, err := kernel.NewMoney(in.UnitPrice, in.Currency)
	if err != nil {
		return order.Item{}, err
	}
	return order.NewItem(productID, in.Name, in.Quantity, price)
}

func paymentToDomain(dto PaymentDTO) (order.PaymentInfo, error) {
	method, err := order.ParsePaymentMethod(dto.Method)
	if err != nil {
		return order.PaymentInfo{}, err
	}
	status, err := order.ParsePaymentStatus(dto.Status)
	if err != nil {
		return order.PaymentInfo{}, err
	}
	amount, err := kernel.NewMoney(dto.Amount, dto.Currency)
	if err != nil {
		return order.PaymentInfo{}, err
	}
	return order.NewPaymentInfo(method, dto.Reference, amount, status)
}
