package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/ports"
)

// CancelBatchCommandHandler administratively cancels a batch: the batch
// record turns CANCELLED, every member order is detached (batch and driver
// references cleared) so the batching engine can pick it up again, and every
// open assignment is cancelled.
type CancelBatchCommandHandler struct {
	uowFactory    UoWFactory
	auditRecorder ports.AuditRecorder
}

// NewCancelBatchCommandHandler creates a handler for batch cancellation.
func NewCancelBatchCommandHandler(uowFactory UoWFactory, auditRecorder ports.AuditRecorder) CancelBatchCommandHandler {
	return CancelBatchCommandHandler{
		uowFactory:    uowFactory,
		auditRecorder: auditRecorder,
	}
}

// Handle processes the cancellation. Rejected when the batch is already
// COMPLETED, PARTIAL_COMPLETE, or CANCELLED.
func (h CancelBatchCommandHandler) Handle(ctx context.Context, command CancelBatchCommand) error {
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
	if err = target.Cancel(); err != nil {
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
		member.DetachFromBatch()
		if err = orderRepo.Update(ctx, member); err != nil {
			return err
		}
	}

	now := time.Now().UTC()

	assignments, err := assignmentRepo.GetAllByBatch(ctx, command.BatchID())
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if !a.IsOpen() {
			continue
		}
		if err = a.Cancel(now); err != nil {
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
		Action:     "BATCH_CANCELLED",
		EntityType: "batch",
		EntityID:   command.BatchID().String(),
		Detail:     command.Reason(),
		At:         now,
	})

	return nil
}
