package batchrepo

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormBatchRepository implements BatchRepository using GORM.
type GormBatchRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormBatchRepository creates a new GORM batch repository.
func NewGormBatchRepository(db *gorm.DB, tracker aggregateTracker) *GormBatchRepository {
	return &GormBatchRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new batch and its members to the database. Inserting a second
// open batch for an already-open collection key trips the partial unique
// index and surfaces as a precondition conflict.
func (r *GormBatchRepository) Add(ctx context.Context, aggregate *batch.Batch) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, members := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewPreconditionFailedError("create batch",
				"an open batch already exists for this kitchen, zone, window and date")
		}
		return err
	}
	if len(members) > 0 {
		if err := r.db.WithContext(ctx).Create(&members).Error; err != nil {
			return err
		}
	}

	aggregate.MarkPersisted()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing batch to the database. The write is guarded by
// the status and member count the aggregate was loaded with, so a row
// changed by a concurrent sweep or claim is never overwritten; the loser
// observes a precondition conflict instead. Member rows are rewritten only
// after the guard has matched.
func (r *GormBatchRepository) Update(ctx context.Context, aggregate *batch.Batch) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, members := fromDomain(aggregate)
	loadedStatus, loadedMembers := aggregate.PersistedState()
	result := r.db.WithContext(ctx).Model(&BatchDTO{}).
		Where("id = ? AND status = ? AND member_count = ?",
			dto.ID, string(loadedStatus), loadedMembers).
		Select("*").
		Omit("id").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var exists int64
		err := r.db.WithContext(ctx).Model(&BatchDTO{}).
			Where("id = ?", dto.ID).
			Count(&exists).Error
		if err != nil {
			return err
		}
		if exists == 0 {
			return gorm.ErrRecordNotFound
		}
		return errs.NewPreconditionFailedError("update batch", "batch was modified concurrently")
	}

	err := r.db.WithContext(ctx).
		Where("batch_id = ?", dto.ID).
		Delete(&BatchMemberDTO{}).Error
	if err != nil {
		return err
	}
	if len(members) > 0 {
		if err = r.db.WithContext(ctx).Create(&members).Error; err != nil {
			return err
		}
	}

	aggregate.MarkPersisted()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a batch by ID, including its ordered members.
func (r *GormBatchRepository) Get(ctx context.Context, id kernel.UUID) (*batch.Batch, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto BatchDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("batch", id.String())
		}
		return nil, err
	}

	members, err := r.membersOf(ctx, dto)
	if err != nil {
		return nil, err
	}

	return toDomain(dto, members)
}

// GetOpenForCollection retrieves the collecting batch with spare capacity
// for one kitchen/zone/window/date combination, if one exists. A full batch
// is invisible here, so the sweep creates an overflow successor for it.
func (r *GormBatchRepository) GetOpenForCollection(
	ctx context.Context,
	kitchenID, zoneID kernel.UUID,
	mealWindow kernel.MealWindow,
	batchDate time.Time,
) (*batch.Batch, error) {
	var dto BatchDTO
	err := r.db.WithContext(ctx).
		Where("kitchen_id = ? AND zone_id = ? AND meal_window = ? AND batch_date = ? AND status = ? AND member_count < capacity",
			kitchenID.Bytes(), zoneID.Bytes(), string(mealWindow), batchDate, string(batch.StatusCollecting)).
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("collecting batch", string(mealWindow))
		}
		return nil, err
	}

	members, err := r.membersOf(ctx, dto)
	if err != nil {
		return nil, err
	}

	return toDomain(dto, members)
}

// GetAllCollecting retrieves every batch still collecting members, optionally
// narrowed to one meal window or one kitchen.
func (r *GormBatchRepository) GetAllCollecting(
	ctx context.Context,
	mealWindow *kernel.MealWindow,
	kitchenID *kernel.UUID,
) ([]*batch.Batch, error) {
	query := r.db.WithContext(ctx).Where("status = ?", string(batch.StatusCollecting))
	if mealWindow != nil {
		query = query.Where("meal_window = ?", string(*mealWindow))
	}
	if kitchenID != nil {
		query = query.Where("kitchen_id = ?", kitchenID.Bytes())
	}

	var dtos []BatchDTO
	if err := query.Order("window_end_time").Find(&dtos).Error; err != nil {
		return nil, err
	}

	batches := make([]*batch.Batch, 0, len(dtos))
	for _, dto := range dtos {
		members, err := r.membersOf(ctx, dto)
		if err != nil {
			return nil, err
		}
		b, err := toDomain(dto, members)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}

	return batches, nil
}

// Claim atomically assigns the batch to the driver. The state guard in the
// UPDATE makes the database arbitrate between concurrent claims: exactly one
// driver's statement affects a row, every other claim observes zero rows and
// loses.
func (r *GormBatchRepository) Claim(
	ctx context.Context,
	batchID, driverID kernel.UUID,
	at time.Time,
) (*batch.Batch, error) {
	if err := batchID.Validate(); err != nil {
		return nil, err
	}
	if err := driverID.Validate(); err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).Model(&BatchDTO{}).
		Where("id = ? AND status = ? AND driver_id IS NULL",
			batchID.Bytes(), string(batch.StatusReadyForDispatch)).
		Updates(map[string]any{
			"status":     string(batch.StatusDispatched),
			"driver_id":  driverID.Bytes(),
			"claimed_at": at,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		var exists int64
		err := r.db.WithContext(ctx).Model(&BatchDTO{}).
			Where("id = ?", batchID.Bytes()).
			Count(&exists).Error
		if err != nil {
			return nil, err
		}
		if exists == 0 {
			return nil, errs.NewObjectNotFoundError("batch", batchID.String())
		}
		return nil, errs.NewPreconditionFailedError("claim batch", "batch already taken")
	}

	claimed, err := r.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}

	r.tracker.TrackAggregate(claimed.ID(), claimed)
	return claimed, nil
}

func (r *GormBatchRepository) membersOf(ctx context.Context, dto BatchDTO) ([]BatchMemberDTO, error) {
	var members []BatchMemberDTO
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", dto.ID).
		Order("sequence").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
