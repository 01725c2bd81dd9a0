package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrDispatchBatchesCommandIsNotConstructed = errors.New(
	"DispatchBatchesCommand must be created via NewDispatchBatchesCommand constructor",
)

// DispatchBatchesCommand triggers one dispatch sweep: offering collecting
// batches of the meal window to drivers once their cutoff has passed.
// force lets an authorized operator override the cutoff check.
type DispatchBatchesCommand struct { //nolint:recvcheck //using for validation
	mealWindow kernel.MealWindow
	kitchenID  *kernel.UUID
	force      bool

	guard guard.ConstructorGuard
}

// NewDispatchBatchesCommand creates a command to run the dispatch sweep.
func NewDispatchBatchesCommand(mealWindow kernel.MealWindow, kitchenID *kernel.UUID, force bool) (DispatchBatchesCommand, error) {
	command := DispatchBatchesCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := mealWindow.Validate(); err != nil {
		return DispatchBatchesCommand{}, err
	}
	if kitchenID != nil {
		if err := kitchenID.Validate(); err != nil {
			return DispatchBatchesCommand{}, err
		}
	}

	command.mealWindow = mealWindow
	command.kitchenID = kitchenID
	command.force = force
	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c DispatchBatchesCommand) Validate() error {
	return c.guard.Validate(ErrDispatchBatchesCommandIsNotConstructed)
}

// MealWindow returns the meal window being dispatched.
func (c DispatchBatchesCommand) MealWindow() kernel.MealWindow {
	return c.mealWindow
}

// KitchenID returns the optional kitchen filter.
func (c DispatchBatchesCommand) KitchenID() *kernel.UUID {
	return c.kitchenID
}

// Force reports whether the cutoff check is overridden.
func (c DispatchBatchesCommand) Force() bool {
	return c.force
}
