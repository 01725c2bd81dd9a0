package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/kernel"
)

// AssignmentRepository defines the persistence contract for delivery
// assignments, the driver-facing execution records.
type AssignmentRepository interface {
	// Add persists a new assignment aggregate to storage.
	Add(ctx context.Context, aggregate *assignment.Assignment) error

	// Update persists changes to an existing assignment aggregate.
	Update(ctx context.Context, aggregate *assignment.Assignment) error

	// Get retrieves an assignment aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error)

	// GetOpenByOrder retrieves the single non-terminal assignment for the
	// order, or an object-not-found error when no open assignment exists.
	GetOpenByOrder(ctx context.Context, orderID kernel.UUID) (*assignment.Assignment, error)

	// GetAllByBatch retrieves every assignment of the batch ordered by
	// delivery sequence.
	GetAllByBatch(ctx context.Context, batchID kernel.UUID) ([]*assignment.Assignment, error)
}
