package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrGetBatchStatsQueryIsNotConstructed = errors.New(
	"GetBatchStatsQuery must be created via NewGetBatchStatsQuery constructor",
)

// GetBatchStatsQuery retrieves per-batch delivery statistics for one
// kitchen-day: member counts and delivered/failed totals per batch.
type GetBatchStatsQuery struct {
	kitchenID kernel.UUID
	date      time.Time

	guard guard.ConstructorGuard
}

// NewGetBatchStatsQuery creates a query for a kitchen's batch statistics on
// the given date. The date's time of day is ignored.
func NewGetBatchStatsQuery(kitchenID kernel.UUID, date time.Time) (GetBatchStatsQuery, error) {
	if err := kitchenID.Validate(); err != nil {
		return GetBatchStatsQuery{}, err
	}
	return GetBatchStatsQuery{
		kitchenID: kitchenID,
		date:      date.UTC().Truncate(24 * time.Hour),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetBatchStatsQuery) Validate() error {
	return q.guard.Validate(ErrGetBatchStatsQueryIsNotConstructed)
}

// KitchenID returns the kitchen whose statistics are requested.
func (q GetBatchStatsQuery) KitchenID() kernel.UUID {
	return q.kitchenID
}

// Date returns the UTC-midnight batch date being reported.
func (q GetBatchStatsQuery) Date() time.Time {
	return q.date
}

// GetBatchStatsQueryResponse is one batch's statistics line.
type GetBatchStatsQueryResponse struct {
	BatchID        kernel.UUID
	BatchNumber    string
	MealWindow     string
	Status         string
	MemberCount    int
	TotalDelivered int
	TotalFailed    int
}
