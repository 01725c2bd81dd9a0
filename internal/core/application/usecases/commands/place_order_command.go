package commands

import (
	"encoding/json"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrPlaceOrderCommandIsNotConstructed = errors.New(
		"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
	)
	ErrItemsAreRequired = errors.New("items payload is required")
)

// PlaceOrderCommand represents a request to place a new meal order.
// Scheduled-meal orders carry a meal window and enter the batching pipeline;
// on-demand orders (nil meal window) are never batched.
type PlaceOrderCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	customerID kernel.UUID
	kitchenID  kernel.UUID
	zoneID     kernel.UUID
	mealWindow *kernel.MealWindow
	address    kernel.Address
	items      json.RawMessage

	guard guard.ConstructorGuard
}

// NewPlaceOrderCommand creates a command to place a new order.
// Validates all entity references, the address, and the optional meal window.
func NewPlaceOrderCommand(
	orderID, customerID, kitchenID, zoneID kernel.UUID,
	mealWindow *kernel.MealWindow,
	address kernel.Address,
	items json.RawMessage,
) (PlaceOrderCommand, error) {
	command := PlaceOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setIDs(orderID, customerID, kitchenID, zoneID),
		command.setMealWindow(mealWindow),
		command.setAddress(address),
		command.setItems(items),
	); err != nil {
		return PlaceOrderCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}

// OrderID returns the identifier the new order will be created under.
func (c PlaceOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CustomerID returns the placing customer's identifier.
func (c PlaceOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

// KitchenID returns the preparing kitchen's identifier.
func (c PlaceOrderCommand) KitchenID() kernel.UUID {
	return c.kitchenID
}

// ZoneID returns the delivery zone identifier.
func (c PlaceOrderCommand) ZoneID() kernel.UUID {
	return c.zoneID
}

// MealWindow returns the serving period, or nil for on-demand orders.
func (c PlaceOrderCommand) MealWindow() *kernel.MealWindow {
	return c.mealWindow
}

// Address returns the delivery address snapshot.
func (c PlaceOrderCommand) Address() kernel.Address {
	return c.address
}

// Items returns the opaque items/pricing payload.
func (c PlaceOrderCommand) Items() json.RawMessage {
	return c.items
}

func (c *PlaceOrderCommand) setIDs(orderID, customerID, kitchenID, zoneID kernel.UUID) error {
	if err := errors.Join(
		orderID.Validate(), customerID.Validate(), kitchenID.Validate(), zoneID.Validate(),
	); err != nil {
		return err
	}

	c.orderID = orderID
	c.customerID = customerID
	c.kitchenID = kitchenID
	c.zoneID = zoneID
	return nil
}

func (c *PlaceOrderCommand) setMealWindow(mealWindow *kernel.MealWindow) error {
	if mealWindow != nil {
		if err := mealWindow.Validate(); err != nil {
			return err
		}
	}

	c.mealWindow = mealWindow
	return nil
}

func (c *PlaceOrderCommand) setAddress(address kernel.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}

	c.address = address
	return nil
}

func (c *PlaceOrderCommand) setItems(items json.RawMessage) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}

	c.items = items
	return nil
}
