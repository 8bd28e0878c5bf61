package order

import (
	"errors"
	"strings"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/errs"
	"github.com/fxavier/mozdelivery-api-sub003/internal/pkg/guard"
)

var ErrDeliveryAddressIsNotConstructed = errs.NewValueIsRequiredError(
	"delivery address must be created via NewDeliveryAddress")

// DeliveryAddress is where the courier hands the order over.
type DeliveryAddress struct {
	street       string
	city         string
	district     string
	postalCode   string
	country      string
	point        kernel.GeoPoint
	instructions string
	guard        guard.ConstructorGuard
}

// AddressParams groups the fields of a delivery address.
type AddressParams struct {
	Street       string
	City         string
	District     string
	PostalCode   string
	Country      string
	Point        kernel.GeoPoint
	Instructions string
}

// NewDeliveryAddress requires street, city, country and a valid point.
// District, postal code and instructions are optional.
func NewDeliveryAddress(p AddressParams) (DeliveryAddress, error) {
	a := DeliveryAddress{
		street:       strings.TrimSpace(p.Street),
		city:         strings.TrimSpace(p.City),
		district:     strings.TrimSpace(p.District),
		postalCode:   strings.TrimSpace(p.PostalCode),
		country:      strings.TrimSpace(p.Country),
		point:        p.Point,
		instructions: strings.TrimSpace(p.Instructions),
		guard:        guard.NewConstructorGuard(),
	}

	var errStreet, errCity, errCountry error
	if a.street == "" {
		errStreet = errs.NewValueIsRequiredError("street")
	}
	if a.city == "" {
		errCity = errs.NewValueIsRequiredError("city")
	}
	if a.country == "" {
		errCountry = errs.NewValueIsRequiredError("country")
	}
	if err := errors.Join(errStreet, errCity, errCountry, p.Point.Validate()); err != nil {
		return DeliveryAddress{}, err
	}

	return a, nil
}

func (a DeliveryAddress) Street() string {
	return a.street
}

func (a DeliveryAddress) City() string {
	return a.city
}

func (a DeliveryAddress) District() string {
	return a.district
}

func (a DeliveryAddress) PostalCode() string {
	return a.postalCode
}

func (a DeliveryAddress) Country() string {
	return a.country
}

func (a DeliveryAddress) Point() kernel.GeoPoint {
	return a.point
}

func (a DeliveryAddress) Instructions() string {
	return a.instructions
}

func (a DeliveryAddress) Validate() error {
	return a.guard.Validate(ErrDeliveryAddressIsNotConstructed)
}
