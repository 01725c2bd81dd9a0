package orderrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// batchableStatuses mirrors order.Status.IsBatchable for the sweep query.
var batchableStatuses = []string{
	string(order.StatusAccepted),
	string(order.StatusPreparing),
	string(order.StatusReady),
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order and its timeline to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, entries := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&entries).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing order to the database. The timeline is append-only,
// so only entries beyond the persisted sequence are inserted.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, entries := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	var persisted int64
	err := r.db.WithContext(ctx).Model(&TimelineEntryDTO{}).
		Where("order_id = ?", dto.ID).
		Count(&persisted).Error
	if err != nil {
		return err
	}
	if int(persisted) < len(entries) {
		if err = r.db.WithContext(ctx).Create(entries[persisted:]).Error; err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID, including its timeline.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	entries, err := r.timelineOf(ctx, dto.ID)
	if err != nil {
		return nil, err
	}

	return toDomain(dto, entries)
}

// GetAllBatchable retrieves orders eligible for batching: status in
// ACCEPTED/PREPARING/READY, a meal window set, and no batch yet. Optional
// filters narrow the sweep to one meal window or one kitchen.
func (r *GormOrderRepository) GetAllBatchable(
	ctx context.Context,
	mealWindow *kernel.MealWindow,
	kitchenID *kernel.UUID,
) ([]*order.Order, error) {
	query := r.db.WithContext(ctx).
		Where("status IN ?", batchableStatuses).
		Where("meal_window IS NOT NULL").
		Where("batch_id IS NULL")

	if mealWindow != nil {
		query = query.Where("meal_window = ?", string(*mealWindow))
	}
	if kitchenID != nil {
		query = query.Where("kitchen_id = ?", kitchenID.Bytes())
	}

	var dtos []OrderDTO
	if err := query.Order("placed_at").Find(&dtos).Error; err != nil {
		return nil, err
	}

	return r.toDomainAll(ctx, dtos)
}

// GetAllInBatch retrieves every order belonging to the given batch.
func (r *GormOrderRepository) GetAllInBatch(ctx context.Context, batchID kernel.UUID) ([]*order.Order, error) {
	if err := batchID.Validate(); err != nil {
		return nil, err
	}

	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID.Bytes()).
		Order("placed_at").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return r.toDomainAll(ctx, dtos)
}

func (r *GormOrderRepository) toDomainAll(ctx context.Context, dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		entries, err := r.timelineOf(ctx, dto.ID)
		if err != nil {
			return nil, err
		}
		o, err := toDomain(dto, entries)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *GormOrderRepository) timelineOf(ctx context.Context, orderID uuid.UUID) ([]TimelineEntryDTO, error) {
	var entries []TimelineEntryDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("seq").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
