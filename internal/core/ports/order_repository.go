// Package ports defines the contracts between the fulfillment core and
// infrastructure: repositories, the unit of work, and the consumed external
// capabilities (notifications, audit, kitchen operating hours). These
// interfaces enable dependency inversion and testability.
package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	// The order must exist in the repository and be valid.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier, including
	// its full status timeline.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAllBatchable retrieves unbatched scheduled-meal orders whose status
	// allows collection (ACCEPTED, PREPARING, READY). mealWindow and
	// kitchenID narrow the sweep when non-nil.
	GetAllBatchable(ctx context.Context, mealWindow *kernel.MealWindow, kitchenID *kernel.UUID) ([]*order.Order, error)

	// GetAllInBatch retrieves every member order of the given batch.
	GetAllInBatch(ctx context.Context, batchID kernel.UUID) ([]*order.Order, error)
}
