package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrAutoBatchCommandIsNotConstructed = errors.New(
	"AutoBatchCommand must be created via NewAutoBatchCommand constructor",
)

// AutoBatchCommand triggers one batching sweep: collecting eligible
// scheduled-meal orders into delivery batches per (kitchen, zone, meal
// window) key. Both filters are optional; a nil filter sweeps everything.
// The sweep is idempotent with respect to already-batched orders.
type AutoBatchCommand struct { //nolint:recvcheck //using for validation
	mealWindow *kernel.MealWindow
	kitchenID  *kernel.UUID

	guard guard.ConstructorGuard
}

// NewAutoBatchCommand creates a command to run the batching sweep.
func NewAutoBatchCommand(mealWindow *kernel.MealWindow, kitchenID *kernel.UUID) (AutoBatchCommand, error) {
	command := AutoBatchCommand{
		guard: guard.NewConstructorGuard(),
	}

	if mealWindow != nil {
		if err := mealWindow.Validate(); err != nil {
			return AutoBatchCommand{}, err
		}
	}
	if kitchenID != nil {
		if err := kitchenID.Validate(); err != nil {
			return AutoBatchCommand{}, err
		}
	}

	command.mealWindow = mealWindow
	command.kitchenID = kitchenID
	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c AutoBatchCommand) Validate() error {
	return c.guard.Validate(ErrAutoBatchCommandIsNotConstructed)
}

// MealWindow returns the optional meal-window filter.
func (c AutoBatchCommand) MealWindow() *kernel.MealWindow {
	return c.mealWindow
}

// KitchenID returns the optional kitchen filter.
func (c AutoBatchCommand) KitchenID() *kernel.UUID {
	return c.kitchenID
}
