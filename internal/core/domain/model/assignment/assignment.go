package assignment

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// ErrAssignmentIsNotConstructed is returned when an Assignment instance was
// not created through NewAssignment or RestoreAssignment.
var ErrAssignmentIsNotConstructed = errors.New(
	"Assignment must be created via NewAssignment or RestoreAssignment constructor")

// maxLocationSamples bounds the retained driver-position history. Older
// samples are dropped; the assignment keeps a trailing window, not a track.
const maxLocationSamples = 20

// stamps maps a newly entered status to the side-effect timestamp it sets.
var stamps = map[Status]func(a *Assignment, at time.Time){
	StatusAcknowledged: func(a *Assignment, at time.Time) { a.acknowledgedAt = &at },
	StatusPickedUp:     func(a *Assignment, at time.Time) { a.pickedUpAt = &at },
	StatusEnRoute:      func(a *Assignment, at time.Time) { a.enRouteAt = &at },
	StatusArrived:      func(a *Assignment, at time.Time) { a.arrivedAt = &at },
	StatusDelivered:    func(a *Assignment, at time.Time) { a.deliveredAt = &at },
	StatusFailed:       func(a *Assignment, at time.Time) { a.failedAt = &at },
	StatusReturned:     func(a *Assignment, at time.Time) { a.returnedAt = &at },
	StatusCancelled:    func(a *Assignment, at time.Time) { a.cancelledAt = &at },
}

// LocationSample is one reported driver position.
type LocationSample struct {
	latitude  float64
	longitude float64
	at        time.Time
}

// NewLocationSample creates a validated position sample.
func NewLocationSample(latitude, longitude float64, at time.Time) (LocationSample, error) {
	if latitude < -90 || latitude > 90 {
		return LocationSample{}, errs.NewValueIsOutOfRangeError("latitude", latitude, -90, 90)
	}
	if longitude < -180 || longitude > 180 {
		return LocationSample{}, errs.NewValueIsOutOfRangeError("longitude", longitude, -180, 180)
	}
	return LocationSample{latitude: latitude, longitude: longitude, at: at}, nil
}

// Latitude returns the sample's latitude in degrees.
func (l LocationSample) Latitude() float64 {
	return l.latitude
}

// Longitude returns the sample's longitude in degrees.
func (l LocationSample) Longitude() float64 {
	return l.longitude
}

// At returns when the position was reported.
func (l LocationSample) At() time.Time {
	return l.at
}

// Assignment is the driver-facing execution record for one order within a
// claimed batch. It is created when a driver wins the batch claim and closed
// when the order reaches a terminal delivery outcome.
//
// Assignment maintains these invariants:
//   - Status moves only along the transition table, never backwards
//   - DELIVERED is unreachable until the proof of delivery is verified
//   - Location samples are bounded to a trailing window
type Assignment struct {
	id       kernel.UUID
	orderID  kernel.UUID
	batchID  kernel.UUID
	driverID kernel.UUID

	// sequence is the 1-based delivery position within the owning batch.
	sequence int

	status        Status
	proof         Proof
	failureReason string
	locations     []LocationSample

	assignedAt     time.Time
	acknowledgedAt *time.Time
	pickedUpAt     *time.Time
	enRouteAt      *time.Time
	arrivedAt      *time.Time
	deliveredAt    *time.Time
	failedAt       *time.Time
	returnedAt     *time.Time
	cancelledAt    *time.Time

	// lastEventAt guards monotonicity of incoming event timestamps.
	lastEventAt time.Time

	isConstructed bool
}

// NewAssignment creates an Assignment in ASSIGNED status with a freshly
// generated OTP proof. sequence is the order's 1-based position in the batch.
func NewAssignment(
	id, orderID, batchID, driverID kernel.UUID,
	sequence int,
	assignedAt time.Time,
) (*Assignment, error) {
	if err := errors.Join(
		validateID("assignment id", id),
		validateID("order id", orderID),
		validateID("batch id", batchID),
		validateID("driver id", driverID),
	); err != nil {
		return nil, err
	}
	if sequence < 1 {
		return nil, errs.NewValueIsInvalidErrorWithCause("sequence",
			fmt.Errorf("sequence %d must be positive", sequence))
	}

	proof, err := NewOTPProof()
	if err != nil {
		return nil, err
	}

	return &Assignment{
		id:            id,
		orderID:       orderID,
		batchID:       batchID,
		driverID:      driverID,
		sequence:      sequence,
		status:        StatusAssigned,
		proof:         proof,
		assignedAt:    assignedAt,
		lastEventAt:   assignedAt,
		isConstructed: true,
	}, nil
}

// RestoreAssignmentParams carries the persisted state needed to reconstruct
// an Assignment aggregate. Used only by repository implementations.
type RestoreAssignmentParams struct {
	ID             kernel.UUID
	OrderID        kernel.UUID
	BatchID        kernel.UUID
	DriverID       kernel.UUID
	Sequence       int
	Status         Status
	Proof          Proof
	FailureReason  string
	Locations      []LocationSample
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

// RestoreAssignment reconstructs an Assignment from persistence.
func RestoreAssignment(p RestoreAssignmentParams) (*Assignment, error) {
	if err := errors.Join(
		validateID("assignment id", p.ID),
		validateID("order id", p.OrderID),
		validateID("batch id", p.BatchID),
		validateID("driver id", p.DriverID),
		p.Status.Validate(),
	); err != nil {
		return nil, err
	}
	if p.Sequence < 1 {
		return nil, errs.NewValueIsInvalidErrorWithCause("sequence",
			fmt.Errorf("sequence %d must be positive", p.Sequence))
	}

	a := &Assignment{
		id:             p.ID,
		orderID:        p.OrderID,
		batchID:        p.BatchID,
		driverID:       p.DriverID,
		sequence:       p.Sequence,
		status:         p.Status,
		proof:          p.Proof,
		failureReason:  p.FailureReason,
		locations:      p.Locations,
		assignedAt:     p.AssignedAt,
		acknowledgedAt: p.AcknowledgedAt,
		pickedUpAt:     p.PickedUpAt,
		enRouteAt:      p.EnRouteAt,
		arrivedAt:      p.ArrivedAt,
		deliveredAt:    p.DeliveredAt,
		failedAt:       p.FailedAt,
		returnedAt:     p.ReturnedAt,
		cancelledAt:    p.CancelledAt,
		isConstructed:  true,
	}
	a.lastEventAt = a.latestEventTime()

	return a, nil
}

// Validate ensures the Assignment was created through a constructor.
func (a *Assignment) Validate() error {
	if a == nil || !a.isConstructed {
		return ErrAssignmentIsNotConstructed
	}
	return nil
}

// IsEqual compares two assignments by their unique identifiers.
func (a *Assignment) IsEqual(other *Assignment) bool {
	return other != nil && a.id.IsEqual(other.id)
}

// ID returns the assignment's unique identifier.
func (a *Assignment) ID() kernel.UUID {
	return a.id
}

// OrderID returns the delivered order's identifier.
func (a *Assignment) OrderID() kernel.UUID {
	return a.orderID
}

// BatchID returns the owning batch's identifier.
func (a *Assignment) BatchID() kernel.UUID {
	return a.batchID
}

// DriverID returns the executing driver's identifier.
func (a *Assignment) DriverID() kernel.UUID {
	return a.driverID
}

// Sequence returns the 1-based delivery position within the batch.
func (a *Assignment) Sequence() int {
	return a.sequence
}

// Status returns the current status of the assignment.
func (a *Assignment) Status() Status {
	return a.status
}

// Proof returns the proof-of-delivery record.
func (a *Assignment) Proof() Proof {
	return a.proof
}

// FailureReason returns why the delivery failed or was returned, if it was.
func (a *Assignment) FailureReason() string {
	return a.failureReason
}

// Locations returns a copy of the retained position samples, oldest first.
func (a *Assignment) Locations() []LocationSample {
	ls := make([]LocationSample, len(a.locations))
	copy(ls, a.locations)
	return ls
}

// AssignedAt returns when the driver won the batch claim.
func (a *Assignment) AssignedAt() time.Time {
	return a.assignedAt
}

// AcknowledgedAt returns when the driver acknowledged the assignment, if they have.
func (a *Assignment) AcknowledgedAt() *time.Time {
	return a.acknowledgedAt
}

// PickedUpAt returns when the driver collected the order, if they have.
func (a *Assignment) PickedUpAt() *time.Time {
	return a.pickedUpAt
}

// EnRouteAt returns when the driver started toward the customer, if they have.
func (a *Assignment) EnRouteAt() *time.Time {
	return a.enRouteAt
}

// ArrivedAt returns when the driver arrived at the address, if they have.
func (a *Assignment) ArrivedAt() *time.Time {
	return a.arrivedAt
}

// DeliveredAt returns when the order was handed over, if it was.
func (a *Assignment) DeliveredAt() *time.Time {
	return a.deliveredAt
}

// FailedAt returns when the delivery failed, if it did.
func (a *Assignment) FailedAt() *time.Time {
	return a.failedAt
}

// ReturnedAt returns when the order was returned to the kitchen, if it was.
func (a *Assignment) ReturnedAt() *time.Time {
	return a.returnedAt
}

// CancelledAt returns when the assignment was cancelled, if it was.
func (a *Assignment) CancelledAt() *time.Time {
	return a.cancelledAt
}

// IsOpen reports whether the assignment is still in flight.
func (a *Assignment) IsOpen() bool {
	return !a.status.IsTerminal()
}

// TransitionTo advances the assignment through its in-flight states
// (ACKNOWLEDGED, PICKED_UP, EN_ROUTE, ARRIVED). Terminal outcomes go through
// Deliver, Fail, Return, or Cancel, which carry their extra requirements.
func (a *Assignment) TransitionTo(newStatus Status, at time.Time) error {
	if newStatus.IsTerminal() {
		return errs.NewPreconditionFailedError("assignment status transition",
			fmt.Sprintf("%s is a terminal outcome and requires an explicit close", newStatus))
	}
	return a.move(newStatus, at)
}

// VerifyProof checks the submitted delivery evidence. It is only meaningful
// once the driver has arrived; a verified proof unlocks Deliver.
func (a *Assignment) VerifyProof(submitted ProofType, value string) error {
	if a.status != StatusArrived {
		return errs.NewPreconditionFailedError("verify proof of delivery",
			fmt.Sprintf("assignment is %s, proof is verified on arrival", a.status))
	}

	proof, err := a.proof.Verify(submitted, value)
	if err != nil {
		return err
	}

	a.proof = proof
	return nil
}

// Deliver closes the assignment as DELIVERED. Requires verified proof.
func (a *Assignment) Deliver(at time.Time) error {
	if !a.proof.Verified() {
		return errs.NewPreconditionFailedError("deliver",
			"proof of delivery has not been verified")
	}
	return a.move(StatusDelivered, at)
}

// Fail closes the assignment as FAILED with the driver's stated reason.
func (a *Assignment) Fail(at time.Time, reason string) error {
	if reason == "" {
		return errs.NewValueIsRequiredError("failure reason")
	}
	if err := a.move(StatusFailed, at); err != nil {
		return err
	}

	a.failureReason = reason
	return nil
}

// Return closes the assignment as RETURNED: the driver arrived but brought
// the order back to the kitchen.
func (a *Assignment) Return(at time.Time, reason string) error {
	if reason == "" {
		return errs.NewValueIsRequiredError("return reason")
	}
	if err := a.move(StatusReturned, at); err != nil {
		return err
	}

	a.failureReason = reason
	return nil
}

// Cancel closes the assignment as CANCELLED. Allowed from any open state.
func (a *Assignment) Cancel(at time.Time) error {
	return a.move(StatusCancelled, at)
}

// ReassignDriver hands an open assignment to another driver.
func (a *Assignment) ReassignDriver(driverID kernel.UUID) error {
	if err := validateID("driver id", driverID); err != nil {
		return err
	}
	if !a.IsOpen() {
		return errs.NewPreconditionFailedError("reassign driver",
			fmt.Sprintf("assignment is already closed as %s", a.status))
	}

	a.driverID = driverID
	return nil
}

// RecordLocation appends a driver position sample, dropping the oldest when
// the trailing window is full. Closed assignments no longer record positions.
func (a *Assignment) RecordLocation(latitude, longitude float64, at time.Time) error {
	if !a.IsOpen() {
		return errs.NewPreconditionFailedError("record location",
			fmt.Sprintf("assignment is already closed as %s", a.status))
	}

	sample, err := NewLocationSample(latitude, longitude, at)
	if err != nil {
		return err
	}

	a.locations = append(a.locations, sample)
	if len(a.locations) > maxLocationSamples {
		a.locations = a.locations[len(a.locations)-maxLocationSamples:]
	}

	return nil
}

func (a *Assignment) move(newStatus Status, at time.Time) error {
	next, err := a.status.TransitionTo(newStatus)
	if err != nil {
		return err
	}
	if at.Before(a.lastEventAt) {
		return errs.NewValueIsInvalidErrorWithCause("transition timestamp",
			fmt.Errorf("%s is before the last recorded event at %s", at, a.lastEventAt))
	}

	a.status = next
	a.lastEventAt = at
	if stamp, ok := stamps[next]; ok {
		stamp(a, at)
	}

	return nil
}

func (a *Assignment) latestEventTime() time.Time {
	latest := a.assignedAt
	for _, ts := range []*time.Time{
		a.acknowledgedAt, a.pickedUpAt, a.enRouteAt, a.arrivedAt,
		a.deliveredAt, a.failedAt, a.returnedAt, a.cancelledAt,
	} {
		if ts != nil && ts.After(latest) {
			latest = *ts
		}
	}
	return latest
}

func validateID(paramName string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(paramName, err)
	}
	return nil
}
