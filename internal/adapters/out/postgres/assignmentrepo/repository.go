package assignmentrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// terminalStatuses are the closed assignment states. An order has at most
// one assignment outside this set at any time.
var terminalStatuses = []string{
	string(assignment.StatusDelivered),
	string(assignment.StatusFailed),
	string(assignment.StatusReturned),
	string(assignment.StatusCancelled),
}

// GormAssignmentRepository implements AssignmentRepository using GORM.
type GormAssignmentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormAssignmentRepository creates a new GORM assignment repository.
func NewGormAssignmentRepository(db *gorm.DB, tracker aggregateTracker) *GormAssignmentRepository {
	return &GormAssignmentRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new assignment to the database.
func (r *GormAssignmentRepository) Add(ctx context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, samples := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}
	if len(samples) > 0 {
		if err := r.db.WithContext(ctx).Create(&samples).Error; err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing assignment to the database. The location trail is
// a bounded window whose oldest samples roll off, so rows are replaced
// wholesale.
func (r *GormAssignmentRepository) Update(ctx context.Context, aggregate *assignment.Assignment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, samples := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&AssignmentDTO{}).
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

	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", dto.ID).
		Delete(&LocationSampleDTO{}).Error
	if err != nil {
		return err
	}
	if len(samples) > 0 {
		if err = r.db.WithContext(ctx).Create(&samples).Error; err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an assignment by ID, including its location trail.
func (r *GormAssignmentRepository) Get(ctx context.Context, id kernel.UUID) (*assignment.Assignment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto AssignmentDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("assignment", id.String())
		}
		return nil, err
	}

	samples, err := r.samplesOf(ctx, dto)
	if err != nil {
		return nil, err
	}

	return toDomain(dto, samples)
}

// GetOpenByOrder retrieves the order's single non-terminal assignment.
func (r *GormAssignmentRepository) GetOpenByOrder(ctx context.Context, orderID kernel.UUID) (*assignment.Assignment, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto AssignmentDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status NOT IN ?", orderID.Bytes(), terminalStatuses).
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("open assignment for order", orderID.String())
		}
		return nil, err
	}

	samples, err := r.samplesOf(ctx, dto)
	if err != nil {
		return nil, err
	}

	return toDomain(dto, samples)
}

// GetAllByBatch retrieves every assignment of the batch ordered by delivery
// sequence.
func (r *GormAssignmentRepository) GetAllByBatch(ctx context.Context, batchID kernel.UUID) ([]*assignment.Assignment, error) {
	if err := batchID.Validate(); err != nil {
		return nil, err
	}

	var dtos []AssignmentDTO
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID.Bytes()).
		Order("sequence").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	assignments := make([]*assignment.Assignment, 0, len(dtos))
	for _, dto := range dtos {
		samples, samplesErr := r.samplesOf(ctx, dto)
		if samplesErr != nil {
			return nil, samplesErr
		}
		a, domainErr := toDomain(dto, samples)
		if domainErr != nil {
			return nil, domainErr
		}
		assignments = append(assignments, a)
	}

	return assignments, nil
}

func (r *GormAssignmentRepository) samplesOf(ctx context.Context, dto AssignmentDTO) ([]LocationSampleDTO, error) {
	var samples []LocationSampleDTO
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", dto.ID).
		Order("seq").
		Find(&samples).Error
	if err != nil {
		return nil, err
	}
	return samples, nil
}
