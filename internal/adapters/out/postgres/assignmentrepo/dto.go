// Package assignmentrepo provides data transfer objects and mapping functions
// for delivery assignment persistence.
package assignmentrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// AssignmentDTO represents the database structure for persisting delivery
// assignment aggregates.
type AssignmentDTO struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID  uuid.UUID `gorm:"type:uuid;index"`
	BatchID  uuid.UUID `gorm:"type:uuid;index"`
	DriverID uuid.UUID `gorm:"type:uuid;index"`
	Sequence int
	Status   string `gorm:"type:varchar(32);index"`

	ProofType      string `gorm:"type:varchar(16)"`
	ProofSecret    string `gorm:"type:varchar(16)"`
	ProofReference string `gorm:"type:varchar(255)"`
	ProofVerified  bool

	FailureReason string `gorm:"type:text"`

	AssignedAt     time.Time
	AcknowledgedAt *time.Time
	PickedUpAt     *time.Time
	EnRouteAt      *time.Time
	ArrivedAt      *time.Time
	DeliveredAt    *time.Time
	FailedAt       *time.Time
	ReturnedAt     *time.Time
	CancelledAt    *time.Time
}

// TableName specifies the database table name for assignment entities.
func (AssignmentDTO) TableName() string {
	return "assignments"
}

// LocationSampleDTO represents one GPS breadcrumb recorded against an
// assignment. Seq orders samples within an assignment; only a trailing
// window is kept, so rows are replaced on update.
type LocationSampleDTO struct {
	AssignmentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq          int       `gorm:"primaryKey;autoIncrement:false"`
	Latitude     float64
	Longitude    float64
	At           time.Time
}

// TableName specifies the database table name for location samples.
func (LocationSampleDTO) TableName() string {
	return "assignment_locations"
}

// fromDomain converts an assignment domain aggregate to its database
// representation: the main row plus its location trail.
func fromDomain(aggregate *assignment.Assignment) (AssignmentDTO, []LocationSampleDTO) {
	proof := aggregate.Proof()
	dto := AssignmentDTO{
		ID:             aggregate.ID().Bytes(),
		OrderID:        aggregate.OrderID().Bytes(),
		BatchID:        aggregate.BatchID().Bytes(),
		DriverID:       aggregate.DriverID().Bytes(),
		Sequence:       aggregate.Sequence(),
		Status:         string(aggregate.Status()),
		ProofType:      string(proof.Type()),
		ProofSecret:    proof.Secret(),
		ProofReference: proof.Reference(),
		ProofVerified:  proof.Verified(),
		FailureReason:  aggregate.FailureReason(),
		AssignedAt:     aggregate.AssignedAt(),
		AcknowledgedAt: aggregate.AcknowledgedAt(),
		PickedUpAt:     aggregate.PickedUpAt(),
		EnRouteAt:      aggregate.EnRouteAt(),
		ArrivedAt:      aggregate.ArrivedAt(),
		DeliveredAt:    aggregate.DeliveredAt(),
		FailedAt:       aggregate.FailedAt(),
		ReturnedAt:     aggregate.ReturnedAt(),
		CancelledAt:    aggregate.CancelledAt(),
	}

	locations := aggregate.Locations()
	samples := make([]LocationSampleDTO, 0, len(locations))
	for i, sample := range locations {
		samples = append(samples, LocationSampleDTO{
			AssignmentID: dto.ID,
			Seq:          i + 1,
			Latitude:     sample.Latitude(),
			Longitude:    sample.Longitude(),
			At:           sample.At(),
		})
	}

	return dto, samples
}

// toDomain converts database rows to an assignment domain aggregate using
// RestoreAssignment. Sample rows must already be ordered by sequence.
func toDomain(dto AssignmentDTO, samples []LocationSampleDTO) (*assignment.Assignment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	batchID, err := kernel.UUIDFromBytes(dto.BatchID[:])
	if err != nil {
		return nil, err
	}
	driverID, err := kernel.UUIDFromBytes(dto.DriverID[:])
	if err != nil {
		return nil, err
	}

	proof, err := assignment.RestoreProof(
		assignment.ProofType(dto.ProofType), dto.ProofSecret, dto.ProofReference, dto.ProofVerified)
	if err != nil {
		return nil, err
	}

	locations := make([]assignment.LocationSample, 0, len(samples))
	for _, sampleDTO := range samples {
		sample, sampleErr := assignment.NewLocationSample(
			sampleDTO.Latitude, sampleDTO.Longitude, sampleDTO.At)
		if sampleErr != nil {
			return nil, sampleErr
		}
		locations = append(locations, sample)
	}

	return assignment.RestoreAssignment(assignment.RestoreAssignmentParams{
		ID:             id,
		OrderID:        orderID,
		BatchID:        batchID,
		DriverID:       driverID,
		Sequence:       dto.Sequence,
		Status:         assignment.Status(dto.Status),
		Proof:          proof,
		FailureReason:  dto.FailureReason,
		Locations:      locations,
		AssignedAt:     dto.AssignedAt,
		AcknowledgedAt: dto.AcknowledgedAt,
		PickedUpAt:     dto.PickedUpAt,
		EnRouteAt:      dto.EnRouteAt,
		ArrivedAt:      dto.ArrivedAt,
		DeliveredAt:    dto.DeliveredAt,
		FailedAt:       dto.FailedAt,
		ReturnedAt:     dto.ReturnedAt,
		CancelledAt:    dto.CancelledAt,
	})
}
