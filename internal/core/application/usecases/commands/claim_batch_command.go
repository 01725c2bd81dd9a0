package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrClaimBatchCommandIsNotConstructed = errors.New(
	"ClaimBatchCommand must be created via NewClaimBatchCommand constructor",
)

// ClaimBatchCommand represents a driver's attempt to take exclusive
// ownership of an offered batch. Under concurrent attempts exactly one
// driver wins; every loser receives an "already taken" conflict.
type ClaimBatchCommand struct { //nolint:recvcheck //using for validation
	batchID  kernel.UUID
	driverID kernel.UUID

	guard guard.ConstructorGuard
}

// NewClaimBatchCommand creates a command for a driver to claim a batch.
func NewClaimBatchCommand(batchID, driverID kernel.UUID) (ClaimBatchCommand, error) {
	command := ClaimBatchCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(batchID.Validate(), driverID.Validate()); err != nil {
		return ClaimBatchCommand{}, err
	}

	command.batchID = batchID
	command.driverID = driverID
	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c ClaimBatchCommand) Validate() error {
	return c.guard.Validate(ErrClaimBatchCommandIsNotConstructed)
}

// BatchID returns the target batch's identifier.
func (c ClaimBatchCommand) BatchID() kernel.UUID {
	return c.batchID
}

// DriverID returns the claiming driver's identifier.
func (c ClaimBatchCommand) DriverID() kernel.UUID {
	return c.driverID
}
