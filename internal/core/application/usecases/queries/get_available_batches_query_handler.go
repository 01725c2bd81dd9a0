package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAvailableBatchesQueryHandler lists claimable batches with their member
// counts. Uses direct SQL for optimal read performance in the CQRS pattern.
type GetAvailableBatchesQueryHandler struct {
	db *gorm.DB
}

// NewGetAvailableBatchesQueryHandler creates a handler for the available
// batches listing. Requires a GORM database connection.
func NewGetAvailableBatchesQueryHandler(db *gorm.DB) GetAvailableBatchesQueryHandler {
	return GetAvailableBatchesQueryHandler{db: db}
}

// Handle returns every batch in READY_FOR_DISPATCH ordered by window end
// time, most urgent first.
func (h GetAvailableBatchesQueryHandler) Handle(
	ctx context.Context,
	query GetAvailableBatchesQuery,
) ([]GetAvailableBatchesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	batches := make([]GetAvailableBatchesQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			b.id,
			b.batch_number,
			b.kitchen_id,
			b.zone_id,
			b.meal_window,
			b.window_end_time,
			COUNT(m.order_id)
		FROM batches b
		LEFT JOIN batch_members m ON m.batch_id = b.id
		WHERE b.status = 'READY_FOR_DISPATCH'
		GROUP BY b.id, b.batch_number, b.kitchen_id, b.zone_id, b.meal_window, b.window_end_time
		ORDER BY b.window_end_time
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var response GetAvailableBatchesQueryResponse
		var id, kitchenID, zoneID uuid.UUID

		err = rows.Scan(
			&id,
			&response.BatchNumber,
			&kitchenID,
			&zoneID,
			&response.MealWindow,
			&response.WindowEndTime,
			&response.MemberCount,
		)
		if err != nil {
			return nil, err
		}

		if response.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if response.KitchenID, err = kernel.UUIDFromBytes(kitchenID[:]); err != nil {
			return nil, err
		}
		if response.ZoneID, err = kernel.UUIDFromBytes(zoneID[:]); err != nil {
			return nil, err
		}

		batches = append(batches, response)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return batches, nil
}
