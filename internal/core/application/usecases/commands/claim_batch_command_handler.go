package commands

import (
	"context"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
)

// ClaimBatchCommandHandler implements the assignment arbiter. The claim
// itself is a single atomic conditional update in the batch repository,
// never a read-then-write; the handler performs the dependent writes only
// after the claim has succeeded: stamping the driver on every member order,
// creating one delivery assignment per order with its sequence and OTP
// secret, and notifying each affected customer.
type ClaimBatchCommandHandler struct {
	uowFactory UoWFactory
}

// NewClaimBatchCommandHandler creates a handler for batch claims.
func NewClaimBatchCommandHandler(uowFactory UoWFactory) ClaimBatchCommandHandler {
	return ClaimBatchCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the claim. A losing claim returns a precondition error
// and leaves no trace; the winner gets the dispatched batch back.
func (h ClaimBatchCommandHandler) Handle(ctx context.Context, command ClaimBatchCommand) (*batch.Batch, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := time.Now().UTC()

	claimed, err := uow.BatchRepository().Claim(ctx, command.BatchID(), command.DriverID(), now)
	if err != nil {
		return nil, err
	}

	orderRepo := uow.OrderRepository()
	assignmentRepo := uow.AssignmentRepository()

	members, err := orderRepo.GetAllInBatch(ctx, command.BatchID())
	if err != nil {
		return nil, err
	}

	byID := make(map[kernel.UUID]int, len(members))
	for i, member := range members {
		byID[member.ID()] = i
	}

	// Walk the batch's member list so assignment sequence follows the
	// delivery order, not the repository's return order.
	for _, orderID := range claimed.OrderIDs() {
		i, ok := byID[orderID]
		if !ok {
			continue
		}
		member := members[i]

		if err = member.AssignDriver(command.DriverID()); err != nil {
			return nil, err
		}
		if err = orderRepo.Update(ctx, member); err != nil {
			return nil, err
		}

		newAssignment, err := assignment.NewAssignment(
			kernel.NewUUID(),
			member.ID(),
			claimed.ID(),
			command.DriverID(),
			claimed.SequenceOf(member.ID()),
			now,
		)
		if err != nil {
			return nil, err
		}
		if err = assignmentRepo.Add(ctx, newAssignment); err != nil {
			return nil, err
		}

		customerID := member.CustomerID()
		notify(ctx, uow.Notifier(), ports.Notification{
			RecipientID: &customerID,
			Kind:        ports.NotificationKindDriverAssigned,
			Title:       "Driver assigned",
			Body:        fmt.Sprintf("A driver has been assigned to your order. Share OTP %s at handover.", newAssignment.Proof().Secret()),
			Payload:     driverAssignedPayload(member, claimed, newAssignment.Proof().Secret()),
		})
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return claimed, nil
}
