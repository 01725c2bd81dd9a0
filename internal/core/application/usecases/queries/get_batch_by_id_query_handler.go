package queries

import (
	"context"
	"database/sql"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetBatchByIDQueryHandler retrieves one batch with counters and members.
type GetBatchByIDQueryHandler struct {
	db *gorm.DB
}

// NewGetBatchByIDQueryHandler creates a handler for single-batch lookups.
// Requires a GORM database connection.
func NewGetBatchByIDQueryHandler(db *gorm.DB) GetBatchByIDQueryHandler {
	return GetBatchByIDQueryHandler{db: db}
}

// Handle returns the batch read model, or an object-not-found error.
func (h GetBatchByIDQueryHandler) Handle(
	ctx context.Context,
	query GetBatchByIDQuery,
) (GetBatchByIDQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetBatchByIDQueryResponse{}, err
	}

	var response GetBatchByIDQueryResponse
	var id uuid.UUID
	var kitchenID, zoneID uuid.UUID
	var driverID uuid.NullUUID
	var claimedAt, completedAt sql.NullTime

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			batch_number,
			kitchen_id,
			zone_id,
			meal_window,
			batch_date,
			window_end_time,
			capacity,
			status,
			driver_id,
			claimed_at,
			completed_at,
			total_delivered,
			total_failed
		FROM batches
		WHERE id = ?
	`, query.BatchID().String()).Row()

	err := row.Scan(
		&id,
		&response.BatchNumber,
		&kitchenID,
		&zoneID,
		&response.MealWindow,
		&response.BatchDate,
		&response.WindowEndTime,
		&response.Capacity,
		&response.Status,
		&driverID,
		&claimedAt,
		&completedAt,
		&response.TotalDelivered,
		&response.TotalFailed,
	)
	if err != nil {
		return GetBatchByIDQueryResponse{}, errs.NewObjectNotFoundErrorWithCause(
			"batch", query.BatchID().String(), err)
	}

	if response.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return GetBatchByIDQueryResponse{}, err
	}
	if response.KitchenID, err = kernel.UUIDFromBytes(kitchenID[:]); err != nil {
		return GetBatchByIDQueryResponse{}, err
	}
	if response.ZoneID, err = kernel.UUIDFromBytes(zoneID[:]); err != nil {
		return GetBatchByIDQueryResponse{}, err
	}
	if driverID.Valid {
		driver, idErr := kernel.UUIDFromBytes(driverID.UUID[:])
		if idErr != nil {
			return GetBatchByIDQueryResponse{}, idErr
		}
		response.DriverID = &driver
	}
	if claimedAt.Valid {
		response.ClaimedAt = &claimedAt.Time
	}
	if completedAt.Valid {
		response.CompletedAt = &completedAt.Time
	}

	if response.OrderIDs, err = h.members(ctx, id); err != nil {
		return GetBatchByIDQueryResponse{}, err
	}

	return response, nil
}

func (h GetBatchByIDQueryHandler) members(ctx context.Context, batchID uuid.UUID) ([]kernel.UUID, error) {
	memberIDs := make([]kernel.UUID, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT order_id
		FROM batch_members
		WHERE batch_id = ?
		ORDER BY sequence
	`, batchID.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID uuid.UUID
		if err = rows.Scan(&orderID); err != nil {
			return nil, err
		}

		memberID, idErr := kernel.UUIDFromBytes(orderID[:])
		if idErr != nil {
			return nil, idErr
		}
		memberIDs = append(memberIDs, memberID)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return memberIDs, nil
}
