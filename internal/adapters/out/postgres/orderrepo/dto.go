// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"encoding/json"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Maps order domain entities to relational database tables with proper indexing
// for efficient querying by status, batch, and driver assignment.
type OrderDTO struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID  `gorm:"type:uuid;index"`
	KitchenID  uuid.UUID  `gorm:"type:uuid;index"`
	ZoneID     uuid.UUID  `gorm:"type:uuid;index"`
	MealWindow *string    `gorm:"type:varchar(16)"`
	Items      []byte     `gorm:"type:jsonb"`
	Address    AddressDTO `gorm:"embedded;embeddedPrefix:address_"`
	Status     string     `gorm:"type:varchar(32);index"`
	BatchID    *uuid.UUID `gorm:"type:uuid;index"`
	DriverID   *uuid.UUID `gorm:"type:uuid;index"`

	PlacedAt    time.Time
	AcceptedAt  *time.Time
	ReadyAt     *time.Time
	PickedUpAt  *time.Time
	DeliveredAt *time.Time
	FailedAt    *time.Time
	CancelledAt *time.Time
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// AddressDTO represents the embedded delivery address within the order table.
type AddressDTO struct {
	Line     string `gorm:"type:varchar(255)"`
	Landmark string `gorm:"type:varchar(255)"`
	City     string `gorm:"type:varchar(128)"`
	Pincode  string `gorm:"type:varchar(16)"`
}

// TimelineEntryDTO represents one row of an order's status history.
// Entries are append-only and ordered by Seq within an order.
type TimelineEntryDTO struct {
	OrderID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq     int       `gorm:"primaryKey;autoIncrement:false"`
	Status  string    `gorm:"type:varchar(32)"`
	At      time.Time
	Actor   string `gorm:"type:varchar(128)"`
	Note    string `gorm:"type:text"`
}

// TableName specifies the database table name for timeline entries.
func (TimelineEntryDTO) TableName() string {
	return "order_timeline_entries"
}

// fromDomain converts an order domain aggregate to its database representation:
// the main row plus one timeline row per recorded status change.
func fromDomain(aggregate *order.Order) (OrderDTO, []TimelineEntryDTO) {
	var mealWindow *string
	if w := aggregate.MealWindow(); w != nil {
		s := string(*w)
		mealWindow = &s
	}

	dto := OrderDTO{
		ID:         aggregate.ID().Bytes(),
		CustomerID: aggregate.CustomerID().Bytes(),
		KitchenID:  aggregate.KitchenID().Bytes(),
		ZoneID:     aggregate.ZoneID().Bytes(),
		MealWindow: mealWindow,
		Items:      aggregate.Items(),
		Address: AddressDTO{
			Line:     aggregate.Address().Line(),
			Landmark: aggregate.Address().Landmark(),
			City:     aggregate.Address().City(),
			Pincode:  aggregate.Address().Pincode(),
		},
		Status:      string(aggregate.Status()),
		BatchID:     optionalUUID(aggregate.BatchID()),
		DriverID:    optionalUUID(aggregate.DriverID()),
		PlacedAt:    aggregate.PlacedAt(),
		AcceptedAt:  aggregate.AcceptedAt(),
		ReadyAt:     aggregate.ReadyAt(),
		PickedUpAt:  aggregate.PickedUpAt(),
		DeliveredAt: aggregate.DeliveredAt(),
		FailedAt:    aggregate.FailedAt(),
		CancelledAt: aggregate.CancelledAt(),
	}

	timeline := aggregate.Timeline()
	entries := make([]TimelineEntryDTO, 0, len(timeline))
	for i, entry := range timeline {
		entries = append(entries, TimelineEntryDTO{
			OrderID: dto.ID,
			Seq:     i + 1,
			Status:  string(entry.Status()),
			At:      entry.At(),
			Actor:   entry.Actor(),
			Note:    entry.Note(),
		})
	}

	return dto, entries
}

// toDomain converts database rows to an order domain aggregate.
// Reconstructs the complete aggregate including its timeline using RestoreOrder.
func toDomain(dto OrderDTO, entries []TimelineEntryDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
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

	batchID, err := optionalKernelUUID(dto.BatchID)
	if err != nil {
		return nil, err
	}
	driverID, err := optionalKernelUUID(dto.DriverID)
	if err != nil {
		return nil, err
	}

	var mealWindow *kernel.MealWindow
	if dto.MealWindow != nil {
		w := kernel.MealWindow(*dto.MealWindow)
		if err = w.Validate(); err != nil {
			return nil, err
		}
		mealWindow = &w
	}

	address, err := kernel.NewAddress(
		dto.Address.Line, dto.Address.Landmark, dto.Address.City, dto.Address.Pincode)
	if err != nil {
		return nil, err
	}

	timeline := make([]order.TimelineEntry, 0, len(entries))
	for _, entryDTO := range entries {
		entry, entryErr := order.NewTimelineEntry(
			order.Status(entryDTO.Status), entryDTO.At, entryDTO.Actor, entryDTO.Note)
		if entryErr != nil {
			return nil, entryErr
		}
		timeline = append(timeline, entry)
	}

	return order.RestoreOrder(order.RestoreOrderParams{
		ID:          id,
		CustomerID:  customerID,
		KitchenID:   kitchenID,
		ZoneID:      zoneID,
		MealWindow:  mealWindow,
		Address:     address,
		Items:       json.RawMessage(dto.Items),
		Status:      order.Status(dto.Status),
		Timeline:    timeline,
		BatchID:     batchID,
		DriverID:    driverID,
		PlacedAt:    dto.PlacedAt,
		AcceptedAt:  dto.AcceptedAt,
		ReadyAt:     dto.ReadyAt,
		PickedUpAt:  dto.PickedUpAt,
		DeliveredAt: dto.DeliveredAt,
		FailedAt:    dto.FailedAt,
		CancelledAt: dto.CancelledAt,
	})
}

func optionalUUID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func optionalKernelUUID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes((*raw)[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
