package commands

import (
	"context"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// UpdateDeliveryStatusResult carries both sides of a processed report.
type UpdateDeliveryStatusResult struct {
	Order      *order.Order
	Assignment *assignment.Assignment
}

// orderStatusFor maps an assignment transition onto the order-level status
// it produces. Statuses absent from the map leave the order untouched:
// ACKNOWLEDGED precedes any order-visible movement, and ARRIVED keeps the
// order OUT_FOR_DELIVERY (which also suppresses a duplicate customer
// notification, since only order transitions notify).
var orderStatusFor = map[assignment.Status]order.Status{
	assignment.StatusPickedUp:  order.StatusPickedUp,
	assignment.StatusEnRoute:   order.StatusOutForDelivery,
	assignment.StatusDelivered: order.StatusDelivered,
	assignment.StatusFailed:    order.StatusFailed,
	assignment.StatusReturned:  order.StatusFailed,
}

// UpdateDeliveryStatusCommandHandler implements the delivery assignment
// tracker: it advances the assignment and the owning order in lockstep
// within one transaction, verifies proof of delivery before DELIVERED,
// moves the batch to IN_PROGRESS on the first pickup, and triggers the
// batch aggregator whenever an order reaches a terminal status.
type UpdateDeliveryStatusCommandHandler struct {
	uowFactory UoWFactory
}

// NewUpdateDeliveryStatusCommandHandler creates a handler for driver
// delivery reports.
func NewUpdateDeliveryStatusCommandHandler(uowFactory UoWFactory) UpdateDeliveryStatusCommandHandler {
	return UpdateDeliveryStatusCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes one driver report. Proof verification failure, a report
// from a driver who does not own the assignment, and any forbidden
// transition all abort with no state change.
func (h UpdateDeliveryStatusCommandHandler) Handle(ctx context.Context, command UpdateDeliveryStatusCommand) (UpdateDeliveryStatusResult, error) {
	if err := command.Validate(); err != nil {
		return UpdateDeliveryStatusResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return UpdateDeliveryStatusResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	assignmentRepo := uow.AssignmentRepository()

	active, err := assignmentRepo.GetOpenByOrder(ctx, command.OrderID())
	if err != nil {
		return UpdateDeliveryStatusResult{}, err
	}
	if !active.DriverID().IsEqual(command.DriverID()) {
		return UpdateDeliveryStatusResult{}, errs.NewPreconditionFailedError("update delivery status",
			"assignment belongs to another driver")
	}

	now := time.Now().UTC()

	if command.Latitude() != nil {
		if err = active.RecordLocation(*command.Latitude(), *command.Longitude(), now); err != nil {
			return UpdateDeliveryStatusResult{}, err
		}
	}

	if err = h.applyAssignmentTransition(active, command, now); err != nil {
		return UpdateDeliveryStatusResult{}, err
	}
	if err = assignmentRepo.Update(ctx, active); err != nil {
		return UpdateDeliveryStatusResult{}, err
	}

	reported, err := h.applyOrderTransition(ctx, uow, command, now)
	if err != nil {
		return UpdateDeliveryStatusResult{}, err
	}

	if command.NewStatus() == assignment.StatusPickedUp {
		if err = h.startBatchProgress(ctx, uow, active); err != nil {
			return UpdateDeliveryStatusResult{}, err
		}
	}
	if reported.IsTerminal() {
		if err = aggregateBatch(ctx, uow.OrderRepository(), uow.BatchRepository(), active.BatchID(), now); err != nil {
			return UpdateDeliveryStatusResult{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return UpdateDeliveryStatusResult{}, err
	}

	return UpdateDeliveryStatusResult{Order: reported, Assignment: active}, nil
}

// applyAssignmentTransition advances the assignment, verifying proof before
// DELIVERED and requiring a reason on FAILED/RETURNED.
func (h UpdateDeliveryStatusCommandHandler) applyAssignmentTransition(
	active *assignment.Assignment,
	command UpdateDeliveryStatusCommand,
	now time.Time,
) error {
	switch command.NewStatus() {
	case assignment.StatusDelivered:
		if command.ProofType() == nil {
			return errs.NewValueIsRequiredError("proof of delivery")
		}
		if err := active.VerifyProof(*command.ProofType(), command.ProofValue()); err != nil {
			return err
		}
		return active.Deliver(now)
	case assignment.StatusFailed:
		return active.Fail(now, command.FailureReason())
	case assignment.StatusReturned:
		return active.Return(now, command.FailureReason())
	default:
		return active.TransitionTo(command.NewStatus(), now)
	}
}

// applyOrderTransition mirrors the assignment move onto the order through
// the fixed mapping and notifies the customer when the order actually moved.
func (h UpdateDeliveryStatusCommandHandler) applyOrderTransition(
	ctx context.Context,
	uow UoW,
	command UpdateDeliveryStatusCommand,
	now time.Time,
) (*order.Order, error) {
	orderRepo := uow.OrderRepository()

	reported, err := orderRepo.Get(ctx, command.OrderID())
	if err != nil {
		return nil, err
	}

	mapped, moves := orderStatusFor[command.NewStatus()]
	if !moves {
		return reported, nil
	}

	note := ""
	if command.NewStatus() == assignment.StatusReturned {
		note = fmt.Sprintf("returned to kitchen: %s", command.FailureReason())
	} else if command.NewStatus() == assignment.StatusFailed {
		note = command.FailureReason()
	}

	if err = reported.TransitionTo(mapped, now, command.DriverID().String(), note); err != nil {
		return nil, err
	}
	if err = orderRepo.Update(ctx, reported); err != nil {
		return nil, err
	}

	customerID := reported.CustomerID()
	notify(ctx, uow.Notifier(), ports.Notification{
		RecipientID: &customerID,
		Kind:        ports.NotificationKindOrderStatus,
		Title:       "Delivery update",
		Body:        fmt.Sprintf("Your order is now %s.", reported.Status()),
		Payload:     orderStatusPayload(reported),
	})

	return reported, nil
}

// startBatchProgress moves the batch to IN_PROGRESS on the first pickup;
// later pickups in the same batch are no-ops.
func (h UpdateDeliveryStatusCommandHandler) startBatchProgress(ctx context.Context, uow UoW, active *assignment.Assignment) error {
	batchRepo := uow.BatchRepository()

	owning, err := batchRepo.Get(ctx, active.BatchID())
	if err != nil {
		return err
	}
	if err = owning.StartProgress(); err != nil {
		return err
	}

	return batchRepo.Update(ctx, owning)
}

// aggregateBatch implements the batch aggregator: it recomputes the owning
// batch's delivered/failed counters from the member orders' current
// statuses and closes the batch once every member is terminal.
func aggregateBatch(
	ctx context.Context,
	orderRepo ports.OrderRepository,
	batchRepo ports.BatchRepository,
	batchID kernel.UUID,
	now time.Time,
) error {
	owning, err := batchRepo.Get(ctx, batchID)
	if err != nil {
		return err
	}

	members, err := orderRepo.GetAllInBatch(ctx, owning.ID())
	if err != nil {
		return err
	}

	var delivered, failed, terminal int
	for _, member := range members {
		switch member.Status() {
		case order.StatusDelivered:
			delivered++
		case order.StatusFailed, order.StatusCancelled:
			// A member cancelled mid-trip is an undelivered outcome, so
			// the counters still sum to the member count at closure.
			failed++
		}
		if member.IsTerminal() {
			terminal++
		}
	}

	if err = owning.Recalculate(delivered, failed, terminal, now); err != nil {
		return err
	}

	return batchRepo.Update(ctx, owning)
}
