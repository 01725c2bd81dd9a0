// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases.
package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrGetAvailableBatchesQueryIsNotConstructed = errors.New(
	"GetAvailableBatchesQuery must be created via NewGetAvailableBatchesQuery constructor",
)

// GetAvailableBatchesQuery retrieves the batches currently offered to
// drivers: everything in READY_FOR_DISPATCH, any of which the requesting
// driver may attempt to claim.
type GetAvailableBatchesQuery struct {
	driverID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetAvailableBatchesQuery creates a query listing claimable batches.
func NewGetAvailableBatchesQuery(driverID kernel.UUID) (GetAvailableBatchesQuery, error) {
	if err := driverID.Validate(); err != nil {
		return GetAvailableBatchesQuery{}, err
	}
	return GetAvailableBatchesQuery{
		driverID: driverID,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetAvailableBatchesQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableBatchesQueryIsNotConstructed)
}

// DriverID returns the requesting driver's identifier.
func (q GetAvailableBatchesQuery) DriverID() kernel.UUID {
	return q.driverID
}

// GetAvailableBatchesQueryResponse is one claimable batch in the read model.
type GetAvailableBatchesQueryResponse struct {
	ID            kernel.UUID
	BatchNumber   string
	KitchenID     kernel.UUID
	ZoneID        kernel.UUID
	MealWindow    string
	WindowEndTime time.Time
	MemberCount   int
}
