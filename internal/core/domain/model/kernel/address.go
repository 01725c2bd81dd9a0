package kernel

import (
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// ErrAddressIsNotConstructed is returned when attempting to use an improperly
// initialized Address. Addresses must be created via NewAddress.
var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError(
	"address must be created via NewAddress constructor")

// Address is the delivery address snapshot captured on an order at placement
// time. It is an immutable value object; later edits to a customer's saved
// address never affect orders already placed.
type Address struct {
	line     string
	landmark string
	city     string
	pincode  string
	guard    guard.ConstructorGuard
}

// NewAddress creates a validated Address snapshot.
// The street line and city are required; landmark and pincode are optional.
func NewAddress(line, landmark, city, pincode string) (Address, error) {
	if line == "" {
		return Address{}, errs.NewValueIsRequiredError("address line")
	}
	if city == "" {
		return Address{}, errs.NewValueIsRequiredError("address city")
	}

	return Address{
		line:     line,
		landmark: landmark,
		city:     city,
		pincode:  pincode,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Line returns the street line of the address.
func (a Address) Line() string {
	return a.line
}

// Landmark returns the optional landmark hint.
func (a Address) Landmark() string {
	return a.landmark
}

// City returns the city of the address.
func (a Address) City() string {
	return a.city
}

// Pincode returns the optional postal code.
func (a Address) Pincode() string {
	return a.pincode
}

// IsEqual compares two addresses field by field.
func (a Address) IsEqual(other Address) bool {
	return a.line == other.line &&
		a.landmark == other.landmark &&
		a.city == other.city &&
		a.pincode == other.pincode
}

// Validate ensures the Address was created through NewAddress.
func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}
