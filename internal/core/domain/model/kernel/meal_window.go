package kernel

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// MealWindow names the serving period orders are grouped by.
// It is a validated string value object; the zero value is invalid.
// On-demand orders carry no meal window and are never batched.
type MealWindow string

const (
	MealWindowBreakfast MealWindow = "BREAKFAST"
	MealWindowLunch     MealWindow = "LUNCH"
	MealWindowDinner    MealWindow = "DINNER"
)

// AllMealWindows lists every valid meal window in serving order.
func AllMealWindows() []MealWindow {
	return []MealWindow{MealWindowBreakfast, MealWindowLunch, MealWindowDinner}
}

// MealWindowFromString parses and validates a meal window name.
func MealWindowFromString(s string) (MealWindow, error) {
	w := MealWindow(s)
	if err := w.Validate(); err != nil {
		return "", err
	}
	return w, nil
}

// String returns the meal window name.
func (w MealWindow) String() string {
	return string(w)
}

// Validate checks that the meal window is one of the known serving periods.
func (w MealWindow) Validate() error {
	switch w {
	case MealWindowBreakfast, MealWindowLunch, MealWindowDinner:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("mealWindow",
		fmt.Errorf("%q is not a valid meal window", string(w)))
}
