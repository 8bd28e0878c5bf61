package commands

import (
	"errors"
	"fmt"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/order"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// ItemInput is one requested line of a new order.
type ItemInput struct {
	ProductID kernel.UUID
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// CreateOrderCommand places a new order for a merchant.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), merchantID, customerID, items, address,
//	    order.CashOnDelivery, "MZN")
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	merchantID    kernel.UUID
	customerID    kernel.UUID
	items         []order.Item
	address       order.DeliveryAddress
	paymentMethod order.PaymentMethod

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates identifiers, builds the line items in
// currency and checks the address and payment method. An empty currency
// means kernel.DefaultCurrency.
func NewCreateOrderCommand(
	orderID, merchantID, customerID kernel.UUID,
	items []ItemInput,
	address order.AddressParams,
	paymentMethod order.PaymentMethod,
	currency string,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}
	if currency == "" {
		currency = kernel.DefaultCurrency
	}

	if err := errors.Join(
		cmd.setIDs(orderID, merchantID, customerID),
		cmd.setItems(items, currency),
		cmd.setAddress(address),
		cmd.setPaymentMethod(paymentMethod),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) MerchantID() kernel.UUID {
	return c.merchantID
}

func (c CreateOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

func (c CreateOrderCommand) Items() []order.Item {
	return append([]order.Item(nil), c.items...)
}

func (c CreateOrderCommand) Address() order.DeliveryAddress {
	return c.address
}

func (c CreateOrderCommand) PaymentMethod() order.PaymentMethod {
	return c.paymentMethod
}

func (c *CreateOrderCommand) setIDs(orderID, merchantID, customerID kernel.UUID) error {
	var errOrder, errMerchant, errCustomer error
	if err := orderID.Validate(); err != nil {
		errOrder = errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	if err := merchantID.Validate(); err != nil {
		errMerchant = errs.NewValueIsRequiredErrorWithCause("merchantId", err)
	}
	if err := customerID.Validate(); err != nil {
		errCustomer = errs.NewValueIsRequiredErrorWithCause("customerId", err)
	}
	if err := errors.Join(errOrder, errMerchant, errCustomer); err != nil {
		return err
	}

	c.orderID = orderID
	c.merchantID = merchantID
	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setItems(inputs []ItemInput, currency string) error {
	if len(inputs) == 0 {
		return errs.NewValueIsRequiredError("items")
	}

	items := make([]order.Item, 0, len(inputs))
	for i, in := range inputs {
		price, err := kernel.NewMoney(in.UnitPrice, currency)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		item, err := order.NewItem(in.ProductID, in.Name, in.Quantity, price)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}

	c.items = items
	return nil
}

func (c *CreateOrderCommand) setAddress(params order.AddressParams) error {
	address, err := order.NewDeliveryAddress(params)
	if err != nil {
		return err
	}

	c.address = address
	return nil
}

func (c *CreateOrderCommand) setPaymentMethod(method order.PaymentMethod) error {
	if err := method.Validate(); err != nil {
		return err
	}

	c.paymentMethod = method
	return nil
}
