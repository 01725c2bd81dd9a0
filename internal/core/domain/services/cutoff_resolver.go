package services

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// ClockTime is a civil wall-clock time of day in a kitchen's local timezone.
type ClockTime struct {
	Hour   int
	Minute int
}

// OperatingHours describes when a kitchen stops serving each meal window.
// Windows missing from CloseTimes fall back to the system defaults.
type OperatingHours struct {
	// Timezone is the kitchen's local timezone; nil means UTC.
	Timezone *time.Location

	CloseTimes map[kernel.MealWindow]ClockTime
}

// CutoffResolver is a domain service mapping (kitchen operating hours, meal
// window) to the absolute instant after which a collecting batch stops
// accepting orders and becomes eligible for dispatch.
//
// Business rules:
//   - The kitchen's configured close time for the meal window wins
//   - Unconfigured windows fall back to fixed system defaults
//   - The cutoff is anchored to the batch date in the kitchen's local time
type CutoffResolver struct {
	fallbacks map[kernel.MealWindow]ClockTime
}

// NewCutoffResolver creates a resolver with the system default close times:
// breakfast 10:00, lunch 15:00, dinner 22:00 kitchen-local.
func NewCutoffResolver() CutoffResolver {
	return CutoffResolver{
		fallbacks: map[kernel.MealWindow]ClockTime{
			kernel.MealWindowBreakfast: {Hour: 10},
			kernel.MealWindowLunch:     {Hour: 15},
			kernel.MealWindowDinner:    {Hour: 22},
		},
	}
}

// Resolve returns the cutoff instant for the given meal window on the given
// batch date. The date's year, month, and day are read in the kitchen's
// timezone; its own time of day is ignored.
func (r CutoffResolver) Resolve(hours OperatingHours, window kernel.MealWindow, date time.Time) (time.Time, error) {
	if err := window.Validate(); err != nil {
		return time.Time{}, err
	}

	tz := hours.Timezone
	if tz == nil {
		tz = time.UTC
	}

	closeTime, ok := hours.CloseTimes[window]
	if !ok {
		closeTime = r.fallbacks[window]
	}

	year, month, day := date.In(tz).Date()
	return time.Date(year, month, day, closeTime.Hour, closeTime.Minute, 0, 0, tz), nil
}

// HasPassed reports whether the cutoff for the given window and date lies at
// or before now.
func (r CutoffResolver) HasPassed(hours OperatingHours, window kernel.MealWindow, date, now time.Time) (bool, error) {
	cutoff, err := r.Resolve(hours, window, date)
	if err != nil {
		return false, err
	}
	return !now.Before(cutoff), nil
}
