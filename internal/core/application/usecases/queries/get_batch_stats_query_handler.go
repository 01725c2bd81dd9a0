package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetBatchStatsQueryHandler reports delivery outcomes per batch for a
// kitchen-day. Uses direct SQL for optimal read performance in the CQRS
// pattern.
type GetBatchStatsQueryHandler struct {
	db *gorm.DB
}

// NewGetBatchStatsQueryHandler creates a handler for the batch statistics
// report. Requires a GORM database connection.
func NewGetBatchStatsQueryHandler(db *gorm.DB) GetBatchStatsQueryHandler {
	return GetBatchStatsQueryHandler{db: db}
}

// Handle returns one statistics line per batch the kitchen ran on the given
// date, ordered by batch number.
func (h GetBatchStatsQueryHandler) Handle(
	ctx context.Context,
	query GetBatchStatsQuery,
) ([]GetBatchStatsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	stats := make([]GetBatchStatsQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			b.id,
			b.batch_number,
			b.meal_window,
			b.status,
			COUNT(m.order_id),
			b.total_delivered,
			b.total_failed
		FROM batches b
		LEFT JOIN batch_members m ON m.batch_id = b.id
		WHERE b.kitchen_id = ? AND b.batch_date = ?
		GROUP BY b.id, b.batch_number, b.meal_window, b.status, b.total_delivered, b.total_failed
		ORDER BY b.batch_number
	`, query.KitchenID().String(), query.Date()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var response GetBatchStatsQueryResponse
		var id uuid.UUID

		err = rows.Scan(
			&id,
			&response.BatchNumber,
			&response.MealWindow,
			&response.Status,
			&response.MemberCount,
			&response.TotalDelivered,
			&response.TotalFailed,
		)
		if err != nil {
			return nil, err
		}

		if response.BatchID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}

		stats = append(stats, response)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
