package order

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"
)

var ErrItemIsNotConstructed = errs.NewValueIsRequiredError("order item must be created via NewItem")

// Item is a single order line. Its total is computed once at construction
// and never recalculated.
type Item struct {
	productID kernel.UUID
	name      string
	quantity  int
	unitPrice kernel.Money
	total     kernel.Money
	guard     guard.ConstructorGuard
}

// NewItem validates the line and computes total = unitPrice × quantity.
func NewItem(productID kernel.UUID, name string, quantity int, unitPrice kernel.Money) (Item, error) {
	item := Item{guard: guard.NewConstructorGuard()}
	if err := errors.Join(
		item.setProductID(productID),
		item.setName(name),
		item.setQuantity(quantity),
		item.setUnitPrice(unitPrice),
	); err != nil {
		return Item{}, err
	}

	total, err := unitPrice.Multiply(quantity)
	if err != nil {
		return Item{}, err
	}
	item.total = total
	return item, nil
}

func (i Item) ProductID() kernel.UUID {
	return i.productID
}

func (i Item) Name() string {
	return i.name
}

func (i Item) Quantity() int {
	return i.quantity
}

func (i Item) UnitPrice() kernel.Money {
	return i.unitPrice
}

func (i Item) Total() kernel.Money {
	return i.total
}

func (i Item) Validate() error {
	return i.guard.Validate(ErrItemIsNotConstructed)
}

func (i *Item) setProductID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("productId", err)
	}
	i.productID = id
	return nil
}

func (i *Item) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	i.name = name
	return nil
}

func (i *Item) setQuantity(quantity int) error {
	if quantity < 1 {
		return errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is less than 1", quantity))
	}
	i.quantity = quantity
	return nil
}

func (i *Item) setUnitPrice(price kernel.Money) error {
	if err := price.Validate(); err != nil {
		return err
	}
	i.unitPrice = price
	return nil
}
