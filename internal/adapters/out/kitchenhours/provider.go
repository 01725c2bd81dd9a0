// Package kitchenhours provides kitchen operating hours to the dispatch
// coordinator. Hours come from static configuration; kitchens without an
// entry fall back to the zone-wide defaults.
package kitchenhours

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
)

// KitchenConfig holds one kitchen's configured close times.
type KitchenConfig struct {
	Timezone   string
	CloseTimes map[kernel.MealWindow]services.ClockTime
}

// ConfigProvider implements ports.KitchenHoursProvider from a static map of
// kitchen configurations.
type ConfigProvider struct {
	defaultTimezone *time.Location
	kitchens        map[kernel.UUID]services.OperatingHours
}

// NewConfigProvider builds a provider from per-kitchen configuration.
// Kitchens with an unparseable timezone fall back to defaultTimezone.
func NewConfigProvider(defaultTimezone *time.Location, kitchens map[kernel.UUID]KitchenConfig) *ConfigProvider {
	if defaultTimezone == nil {
		defaultTimezone = time.UTC
	}

	resolved := make(map[kernel.UUID]services.OperatingHours, len(kitchens))
	for id, cfg := range kitchens {
		tz := defaultTimezone
		if cfg.Timezone != "" {
			if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
				tz = loc
			}
		}
		resolved[id] = services.OperatingHours{
			Timezone:   tz,
			CloseTimes: cfg.CloseTimes,
		}
	}

	return &ConfigProvider{
		defaultTimezone: defaultTimezone,
		kitchens:        resolved,
	}
}

// OperatingHours returns the kitchen's configured hours. Unknown kitchens get
// the default timezone with no close-time overrides, leaving the resolver's
// per-window fallbacks in effect.
func (p *ConfigProvider) OperatingHours(_ context.Context, kitchenID kernel.UUID) (services.OperatingHours, error) {
	if hours, ok := p.kitchens[kitchenID]; ok {
		return hours, nil
	}
	return services.OperatingHours{Timezone: p.defaultTimezone}, nil
}
