package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
)

// BatchRepository defines the persistence contract for delivery-batch
// aggregates, including the atomic claim that resolves driver races.
type BatchRepository interface {
	// Add persists a new batch aggregate to storage.
	Add(ctx context.Context, aggregate *batch.Batch) error

	// Update persists changes to an existing batch aggregate. The write is
	// conditional on the state the aggregate was loaded with; when a
	// concurrent operation changed the row in between, Update returns a
	// precondition-failed error and leaves the row untouched.
	Update(ctx context.Context, aggregate *batch.Batch) error

	// Get retrieves a batch aggregate by its unique identifier, including
	// its ordered member list.
	Get(ctx context.Context, id kernel.UUID) (*batch.Batch, error)

	// GetOpenForCollection retrieves the collecting batch with spare
	// capacity for the (kitchen, zone, meal window, date) key, or an
	// object-not-found error when none exists.
	GetOpenForCollection(ctx context.Context, kitchenID, zoneID kernel.UUID,
		mealWindow kernel.MealWindow, batchDate time.Time) (*batch.Batch, error)

	// GetAllCollecting retrieves batches still in COLLECTING status.
	// mealWindow and kitchenID narrow the sweep when non-nil.
	GetAllCollecting(ctx context.Context, mealWindow *kernel.MealWindow, kitchenID *kernel.UUID) ([]*batch.Batch, error)

	// Claim atomically assigns the batch to the driver: a single
	// state-guarded conditional update that succeeds only while the batch
	// is READY_FOR_DISPATCH with no driver, moving it to DISPATCHED and
	// recording the driver and claim timestamp in the same step. Under
	// concurrent claims exactly one caller wins; every other caller
	// receives a precondition-failed error and observes no change.
	Claim(ctx context.Context, batchID, driverID kernel.UUID, at time.Time) (*batch.Batch, error)
}
