package commands

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrUpdateDeliveryStatusCommandIsNotConstructed = errors.New(
		"UpdateDeliveryStatusCommand must be created via NewUpdateDeliveryStatusCommand constructor",
	)
	ErrLocationIsIncomplete = errors.New("location requires both latitude and longitude")
)

// UpdateDeliveryStatusCommand represents a driver's progress report on one
// order: acknowledging, picking up, travelling, arriving, and closing with
// DELIVERED (proof required), FAILED, or RETURNED (reason required).
// Cancellation is an operator action and is rejected here.
type UpdateDeliveryStatusCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	driverID      kernel.UUID
	newStatus     assignment.Status
	proofType     *assignment.ProofType
	proofValue    string
	failureReason string
	latitude      *float64
	longitude     *float64

	guard guard.ConstructorGuard
}

// NewUpdateDeliveryStatusCommand creates a command for a driver status
// report. proofType/proofValue carry the proof of delivery for DELIVERED;
// failureReason explains FAILED and RETURNED; latitude/longitude optionally
// attach a position sample.
func NewUpdateDeliveryStatusCommand(
	orderID, driverID kernel.UUID,
	newStatus assignment.Status,
	proofType *assignment.ProofType,
	proofValue, failureReason string,
	latitude, longitude *float64,
) (UpdateDeliveryStatusCommand, error) {
	command := UpdateDeliveryStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		orderID.Validate(),
		driverID.Validate(),
		command.setNewStatus(newStatus),
		command.setLocation(latitude, longitude),
	); err != nil {
		return UpdateDeliveryStatusCommand{}, err
	}
	if proofType != nil {
		if err := proofType.Validate(); err != nil {
			return UpdateDeliveryStatusCommand{}, err
		}
	}

	command.orderID = orderID
	command.driverID = driverID
	command.proofType = proofType
	command.proofValue = proofValue
	command.failureReason = failureReason
	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateDeliveryStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDeliveryStatusCommandIsNotConstructed)
}

// OrderID returns the reported order's identifier.
func (c UpdateDeliveryStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// DriverID returns the reporting driver's identifier.
func (c UpdateDeliveryStatusCommand) DriverID() kernel.UUID {
	return c.driverID
}

// NewStatus returns the requested assignment status.
func (c UpdateDeliveryStatusCommand) NewStatus() assignment.Status {
	return c.newStatus
}

// ProofType returns the submitted proof kind, if any.
func (c UpdateDeliveryStatusCommand) ProofType() *assignment.ProofType {
	return c.proofType
}

// ProofValue returns the submitted OTP or capture reference.
func (c UpdateDeliveryStatusCommand) ProofValue() string {
	return c.proofValue
}

// FailureReason returns the driver's stated reason for FAILED/RETURNED.
func (c UpdateDeliveryStatusCommand) FailureReason() string {
	return c.failureReason
}

// Latitude returns the optional position sample's latitude.
func (c UpdateDeliveryStatusCommand) Latitude() *float64 {
	return c.latitude
}

// Longitude returns the optional position sample's longitude.
func (c UpdateDeliveryStatusCommand) Longitude() *float64 {
	return c.longitude
}

func (c *UpdateDeliveryStatusCommand) setNewStatus(newStatus assignment.Status) error {
	if err := newStatus.Validate(); err != nil {
		return err
	}
	if newStatus == assignment.StatusAssigned {
		return errs.NewValueIsInvalidErrorWithCause("new status",
			fmt.Errorf("%s is the initial status and cannot be reported", newStatus))
	}
	if newStatus == assignment.StatusCancelled {
		return errs.NewValueIsInvalidErrorWithCause("new status",
			fmt.Errorf("%s is an operator action, not a driver report", newStatus))
	}

	c.newStatus = newStatus
	return nil
}

func (c *UpdateDeliveryStatusCommand) setLocation(latitude, longitude *float64) error {
	if (latitude == nil) != (longitude == nil) {
		return ErrLocationIsIncomplete
	}

	c.latitude = latitude
	c.longitude = longitude
	return nil
}
