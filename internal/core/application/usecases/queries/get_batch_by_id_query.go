package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrGetBatchByIDQueryIsNotConstructed = errors.New(
	"GetBatchByIDQuery must be created via NewGetBatchByIDQuery constructor",
)

// GetBatchByIDQuery retrieves one batch with its counters and member list.
type GetBatchByIDQuery struct {
	batchID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetBatchByIDQuery creates a query for a single batch.
func NewGetBatchByIDQuery(batchID kernel.UUID) (GetBatchByIDQuery, error) {
	if err := batchID.Validate(); err != nil {
		return GetBatchByIDQuery{}, err
	}
	return GetBatchByIDQuery{
		batchID: batchID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetBatchByIDQuery) Validate() error {
	return q.guard.Validate(ErrGetBatchByIDQueryIsNotConstructed)
}

// BatchID returns the requested batch's identifier.
func (q GetBatchByIDQuery) BatchID() kernel.UUID {
	return q.batchID
}

// GetBatchByIDQueryResponse is the full batch read model.
type GetBatchByIDQueryResponse struct {
	ID             kernel.UUID
	BatchNumber    string
	KitchenID      kernel.UUID
	ZoneID         kernel.UUID
	MealWindow     string
	BatchDate      time.Time
	WindowEndTime  time.Time
	Capacity       int
	Status         string
	DriverID       *kernel.UUID
	ClaimedAt      *time.Time
	CompletedAt    *time.Time
	TotalDelivered int
	TotalFailed    int
	OrderIDs       []kernel.UUID
}
