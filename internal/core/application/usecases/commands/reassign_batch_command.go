package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrReassignBatchCommandIsNotConstructed = errors.New(
		"ReassignBatchCommand must be created via NewReassignBatchCommand constructor",
	)
	ErrReasonIsRequired = errors.New("reason is required")
)

// ReassignBatchCommand represents an operator handing a dispatched or
// in-progress batch to a different driver, re-propagating the new driver to
// every member order and open assignment.
type ReassignBatchCommand struct { //nolint:recvcheck //using for validation
	batchID     kernel.UUID
	newDriverID kernel.UUID
	actor       string
	reason      string

	guard guard.ConstructorGuard
}

// NewReassignBatchCommand creates a command to reassign a batch.
func NewReassignBatchCommand(batchID, newDriverID kernel.UUID, actor, reason string) (ReassignBatchCommand, error) {
	command := ReassignBatchCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(batchID.Validate(), newDriverID.Validate()); err != nil {
		return ReassignBatchCommand{}, err
	}
	if actor == "" {
		return ReassignBatchCommand{}, ErrActorIsRequired
	}
	if reason == "" {
		return ReassignBatchCommand{}, ErrReasonIsRequired
	}

	command.batchID = batchID
	command.newDriverID = newDriverID
	command.actor = actor
	command.reason = reason
	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c ReassignBatchCommand) Validate() error {
	return c.guard.Validate(ErrReassignBatchCommandIsNotConstructed)
}

// BatchID returns the target batch's identifier.
func (c ReassignBatchCommand) BatchID() kernel.UUID {
	return c.batchID
}

// NewDriverID returns the replacement driver's identifier.
func (c ReassignBatchCommand) NewDriverID() kernel.UUID {
	return c.newDriverID
}

// Actor returns the operator performing the reassignment.
func (c ReassignBatchCommand) Actor() string {
	return c.actor
}

// Reason returns why the batch is being reassigned.
func (c ReassignBatchCommand) Reason() string {
	return c.reason
}
