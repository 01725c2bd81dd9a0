package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrGetMyBatchQueryIsNotConstructed = errors.New(
	"GetMyBatchQuery must be created via NewGetMyBatchQuery constructor",
)

// GetMyBatchQuery retrieves the driver's active batch (DISPATCHED or
// IN_PROGRESS) together with its per-stop assignment rows.
type GetMyBatchQuery struct {
	driverID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetMyBatchQuery creates a query for the driver's active batch.
func NewGetMyBatchQuery(driverID kernel.UUID) (GetMyBatchQuery, error) {
	if err := driverID.Validate(); err != nil {
		return GetMyBatchQuery{}, err
	}
	return GetMyBatchQuery{
		driverID: driverID,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetMyBatchQuery) Validate() error {
	return q.guard.Validate(ErrGetMyBatchQueryIsNotConstructed)
}

// DriverID returns the requesting driver's identifier.
func (q GetMyBatchQuery) DriverID() kernel.UUID {
	return q.driverID
}

// GetMyBatchStop is one delivery stop of the active batch, in sequence.
type GetMyBatchStop struct {
	OrderID     kernel.UUID
	Sequence    int
	Status      string
	OrderStatus string
	AddressLine string
	City        string
	Pincode     string
}

// GetMyBatchQueryResponse is the driver's active batch with its stops.
type GetMyBatchQueryResponse struct {
	ID            kernel.UUID
	BatchNumber   string
	Status        string
	MealWindow    string
	WindowEndTime time.Time
	ClaimedAt     time.Time
	Stops         []GetMyBatchStop
}
