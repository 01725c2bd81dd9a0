// Package batchrepo provides data transfer objects and mapping functions for batch persistence.
// This package implements the repository pattern for the batch domain aggregate, including
// the atomic claim operation that arbitrates between competing drivers.
package batchrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// BatchDTO represents the database structure for persisting batch aggregates.
//
// ux_batches_open_collection is a partial unique index over the collection
// key, limited to COLLECTING batches with spare capacity, so concurrent
// sweeps cannot create two open batches for the same key while a full batch
// still permits an overflow successor.
type BatchDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	BatchNumber   string    `gorm:"type:varchar(32);uniqueIndex"`
	KitchenID     uuid.UUID `gorm:"type:uuid;index;uniqueIndex:ux_batches_open_collection,where:status = 'COLLECTING' AND member_count < capacity"`
	ZoneID        uuid.UUID `gorm:"type:uuid;index;uniqueIndex:ux_batches_open_collection"`
	MealWindow    string    `gorm:"type:varchar(16);uniqueIndex:ux_batches_open_collection"`
	BatchDate     time.Time `gorm:"index;uniqueIndex:ux_batches_open_collection"`
	WindowEndTime time.Time
	Capacity      int
	MemberCount   int
	Status        string     `gorm:"type:varchar(32);index"`
	DriverID      *uuid.UUID `gorm:"type:uuid;index"`

	ClaimedAt      *time.Time
	CompletedAt    *time.Time
	TotalDelivered int
	TotalFailed    int
}

// TableName specifies the database table name for batch entities.
func (BatchDTO) TableName() string {
	return "batches"
}

// BatchMemberDTO represents one order's membership in a batch. Sequence is
// the 1-based delivery order within the batch.
type BatchMemberDTO struct {
	BatchID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Sequence int
}

// TableName specifies the database table name for batch members.
func (BatchMemberDTO) TableName() string {
	return "batch_members"
}

// fromDomain converts a batch domain aggregate to its database representation:
// the main row plus one member row per assigned order.
func fromDomain(aggregate *batch.Batch) (BatchDTO, []BatchMemberDTO) {
	dto := BatchDTO{
		ID:             aggregate.ID().Bytes(),
		BatchNumber:    aggregate.BatchNumber(),
		KitchenID:      aggregate.KitchenID().Bytes(),
		ZoneID:         aggregate.ZoneID().Bytes(),
		MealWindow:     string(aggregate.MealWindow()),
		BatchDate:      aggregate.BatchDate(),
		WindowEndTime:  aggregate.WindowEndTime(),
		Capacity:       aggregate.Capacity(),
		MemberCount:    aggregate.MemberCount(),
		Status:         string(aggregate.Status()),
		ClaimedAt:      aggregate.ClaimedAt(),
		CompletedAt:    aggregate.CompletedAt(),
		TotalDelivered: aggregate.TotalDelivered(),
		TotalFailed:    aggregate.TotalFailed(),
	}
	if id := aggregate.DriverID(); id != nil {
		raw := id.Bytes()
		dto.DriverID = &raw
	}

	orderIDs := aggregate.OrderIDs()
	members := make([]BatchMemberDTO, 0, len(orderIDs))
	for i, orderID := range orderIDs {
		members = append(members, BatchMemberDTO{
			BatchID:  dto.ID,
			OrderID:  orderID.Bytes(),
			Sequence: i + 1,
		})
	}

	return dto, members
}

// toDomain converts database rows to a batch domain aggregate using RestoreBatch.
// Member rows must already be ordered by sequence.
func toDomain(dto BatchDTO, members []BatchMemberDTO) (*batch.Batch, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	kitchenID, err := kernel.UUIDFromBytes(dto.KitchenID[:])
	if err != nil {
		return nil, err
	}
	zoneID, err := kernel.UUIDFromBytes(dto.ZoneID[:])
	if err != nil {
		return nil, err
	}

	var driverID *kernel.UUID
	if dto.DriverID != nil {
		dID, driverErr := kernel.UUIDFromBytes((*dto.DriverID)[:])
		if driverErr != nil {
			return nil, driverErr
		}
		driverID = &dID
	}

	orderIDs := make([]kernel.UUID, 0, len(members))
	for _, member := range members {
		orderID, memberErr := kernel.UUIDFromBytes(member.OrderID[:])
		if memberErr != nil {
			return nil, memberErr
		}
		orderIDs = append(orderIDs, orderID)
	}

	return batch.RestoreBatch(batch.RestoreBatchParams{
		ID:             id,
		BatchNumber:    dto.BatchNumber,
		KitchenID:      kitchenID,
		ZoneID:         zoneID,
		MealWindow:     kernel.MealWindow(dto.MealWindow),
		BatchDate:      dto.BatchDate,
		WindowEndTime:  dto.WindowEndTime,
		Capacity:       dto.Capacity,
		OrderIDs:       orderIDs,
		Status:         batch.Status(dto.Status),
		DriverID:       driverID,
		ClaimedAt:      dto.ClaimedAt,
		CompletedAt:    dto.CompletedAt,
		TotalDelivered: dto.TotalDelivered,
		TotalFailed:    dto.TotalFailed,
	})
}
