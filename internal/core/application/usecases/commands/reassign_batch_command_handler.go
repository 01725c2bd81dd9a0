package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/ports"
)

// ReassignBatchCommandHandler hands a dispatched or in-progress batch to a
// replacement driver and re-propagates the driver to member orders and open
// assignments so the three records never disagree.
type ReassignBatchCommandHandler struct {
	uowFactory    UoWFactory
	auditRecorder ports.AuditRecorder
}

// NewReassignBatchCommandHandler creates a handler for batch reassignment.
func NewReassignBatchCommandHandler(uowFactory UoWFactory, auditRecorder ports.AuditRecorder) ReassignBatchCommandHandler {
	return ReassignBatchCommandHandler{
		uowFactory:    uowFactory,
		auditRecorder: auditRecorder,
	}
}

// Handle processes the reassignment. Rejected unless the batch is
// DISPATCHED or IN_PROGRESS.
func (h ReassignBatchCommandHandler) Handle(ctx context.Context, command ReassignBatchCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	batchRepo := uow.BatchRepository()
	orderRepo := uow.OrderRepository()
	assignmentRepo := uow.AssignmentRepository()

	target, err := batchRepo.Get(ctx, command.BatchID())
	if err != nil {
		return err
	}
	if err = target.Reassign(command.NewDriverID()); err != nil {
		return err
	}
	if err = batchRepo.Update(ctx, target); err != nil {
		return err
	}

	members, err := orderRepo.GetAllInBatch(ctx, command.BatchID())
	if err != nil {
		return err
	}
	for _, member := range members {
		if err = member.AssignDriver(command.NewDriverID()); err != nil {
			return err
		}
		if err = orderRepo.Update(ctx, member); err != nil {
			return err
		}
	}

	assignments, err := assignmentRepo.GetAllByBatch(ctx, command.BatchID())
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if !a.IsOpen() {
			continue
		}
		if err = a.ReassignDriver(command.NewDriverID()); err != nil {
			return err
		}
		if err = assignmentRepo.Update(ctx, a); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	audit(ctx, h.auditRecorder, ports.AuditEvent{
		Actor:      command.Actor(),
		Action:     "BATCH_REASSIGNED",
		EntityType: "batch",
		EntityID:   command.BatchID().String(),
		Detail:     command.Reason(),
		At:         time.Now().UTC(),
	})

	return nil
}
