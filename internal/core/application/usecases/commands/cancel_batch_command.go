package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrCancelBatchCommandIsNotConstructed = errors.New(
	"CancelBatchCommand must be created via NewCancelBatchCommand constructor",
)

// CancelBatchCommand represents an operator cancelling a batch before
// completion: member orders are detached and open assignments cancelled.
// Rejected once the batch has reached a terminal status.
type CancelBatchCommand struct { //nolint:recvcheck //using for validation
	batchID kernel.UUID
	actor   string
	reason  string

	guard guard.ConstructorGuard
}

// NewCancelBatchCommand creates a command to cancel a batch.
func NewCancelBatchCommand(batchID kernel.UUID, actor, reason string) (CancelBatchCommand, error) {
	command := CancelBatchCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := batchID.Validate(); err != nil {
		return CancelBatchCommand{}, err
	}
	if actor == "" {
		return CancelBatchCommand{}, ErrActorIsRequired
	}
	if reason == "" {
		return CancelBatchCommand{}, ErrReasonIsRequired
	}

	command.batchID = batchID
	command.actor = actor
	command.reason = reason
	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelBatchCommand) Validate() error {
	return c.guard.Validate(ErrCancelBatchCommandIsNotConstructed)
}

// BatchID returns the target batch's identifier.
func (c CancelBatchCommand) BatchID() kernel.UUID {
	return c.batchID
}

// Actor returns the operator performing the cancellation.
func (c CancelBatchCommand) Actor() string {
	return c.actor
}

// Reason returns why the batch is being cancelled.
func (c CancelBatchCommand) Reason() string {
	return c.reason
}
