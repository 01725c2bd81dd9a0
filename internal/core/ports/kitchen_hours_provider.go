package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
)

// KitchenHoursProvider supplies a kitchen's operating hours to the cutoff
// resolver. Unknown kitchens return empty hours, which resolve through the
// system default close times.
type KitchenHoursProvider interface {
	OperatingHours(ctx context.Context, kitchenID kernel.UUID) (services.OperatingHours, error)
}
