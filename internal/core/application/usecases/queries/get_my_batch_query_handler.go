package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetMyBatchQueryHandler retrieves the driver's active batch and its stops
// ordered by delivery sequence.
type GetMyBatchQueryHandler struct {
	db *gorm.DB
}

// NewGetMyBatchQueryHandler creates a handler for the driver's active batch
// view. Requires a GORM database connection.
func NewGetMyBatchQueryHandler(db *gorm.DB) GetMyBatchQueryHandler {
	return GetMyBatchQueryHandler{db: db}
}

// Handle returns the driver's DISPATCHED or IN_PROGRESS batch, or an
// object-not-found error when the driver has no active batch.
func (h GetMyBatchQueryHandler) Handle(
	ctx context.Context,
	query GetMyBatchQuery,
) (GetMyBatchQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetMyBatchQueryResponse{}, err
	}

	var response GetMyBatchQueryResponse
	var batchID uuid.UUID

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			batch_number,
			status,
			meal_window,
			window_end_time,
			claimed_at
		FROM batches
		WHERE driver_id = ?
		  AND status IN ('DISPATCHED', 'IN_PROGRESS')
		ORDER BY claimed_at DESC
		LIMIT 1
	`, query.DriverID().String()).Row()

	err := row.Scan(
		&batchID,
		&response.BatchNumber,
		&response.Status,
		&response.MealWindow,
		&response.WindowEndTime,
		&response.ClaimedAt,
	)
	if err != nil {
		return GetMyBatchQueryResponse{}, errs.NewObjectNotFoundErrorWithCause(
			"active batch", query.DriverID().String(), err)
	}

	if response.ID, err = kernel.UUIDFromBytes(batchID[:]); err != nil {
		return GetMyBatchQueryResponse{}, err
	}

	if response.Stops, err = h.stops(ctx, batchID); err != nil {
		return GetMyBatchQueryResponse{}, err
	}

	return response, nil
}

func (h GetMyBatchQueryHandler) stops(ctx context.Context, batchID uuid.UUID) ([]GetMyBatchStop, error) {
	stops := make([]GetMyBatchStop, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			a.order_id,
			a.sequence,
			a.status,
			o.status,
			o.address_line,
			o.address_city,
			o.address_pincode
		FROM assignments a
		JOIN orders o ON o.id = a.order_id
		WHERE a.batch_id = ?
		  AND a.status NOT IN ('CANCELLED')
		ORDER BY a.sequence
	`, batchID.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var stop GetMyBatchStop
		var orderID uuid.UUID

		err = rows.Scan(
			&orderID,
			&stop.Sequence,
			&stop.Status,
			&stop.OrderStatus,
			&stop.AddressLine,
			&stop.City,
			&stop.Pincode,
		)
		if err != nil {
			return nil, err
		}

		if stop.OrderID, err = kernel.UUIDFromBytes(orderID[:]); err != nil {
			return nil, err
		}

		stops = append(stops, stop)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return stops, nil
}
