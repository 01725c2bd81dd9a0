package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// UpdateOrderStatusCommandHandler applies kitchen-facing status transitions
// to an order and notifies the customer of the change. Cancelling a batched
// order also releases it from the fulfillment side: any open assignment is
// closed, and the order either leaves its batch (before a claim) or the
// batch's counters are recomputed (after one).
type UpdateOrderStatusCommandHandler struct {
	uowFactory UoWFactory
}

// NewUpdateOrderStatusCommandHandler creates a handler for kitchen-side
// order status changes.
func NewUpdateOrderStatusCommandHandler(uowFactory UoWFactory) UpdateOrderStatusCommandHandler {
	return UpdateOrderStatusCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle loads the order, applies the transition through the status machine,
// and persists the updated aggregate with its new timeline entry.
func (h UpdateOrderStatusCommandHandler) Handle(ctx context.Context, command UpdateOrderStatusCommand) (*order.Order, error) {
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

	orderRepo := uow.OrderRepository()

	aggregate, err := orderRepo.Get(ctx, command.OrderID())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err = aggregate.TransitionTo(command.NewStatus(), now, command.Actor(), command.Note()); err != nil {
		return nil, err
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return nil, err
	}

	// The release reads the member orders back from storage, so it runs
	// after the cancellation itself has been written.
	if command.NewStatus() == order.StatusCancelled && aggregate.BatchID() != nil {
		if err = h.releaseCancelled(ctx, uow, orderRepo, aggregate, now); err != nil {
			return nil, err
		}
	}

	customerID := aggregate.CustomerID()
	notify(ctx, uow.Notifier(), ports.Notification{
		RecipientID: &customerID,
		Kind:        ports.NotificationKindOrderStatus,
		Title:       "Order update",
		Body:        fmt.Sprintf("Your order is now %s.", aggregate.Status()),
		Payload:     orderStatusPayload(aggregate),
	})

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return aggregate, nil
}

// releaseCancelled unwinds a cancelled order's fulfillment state. Before a
// claim the order simply leaves its batch; after one the membership stays
// for the trip's history, the driver's open assignment is closed, and the
// owning batch's counters are recomputed.
func (h UpdateOrderStatusCommandHandler) releaseCancelled(
	ctx context.Context,
	uow UoW,
	orderRepo ports.OrderRepository,
	cancelled *order.Order,
	now time.Time,
) error {
	batchID := *cancelled.BatchID()

	assignmentRepo := uow.AssignmentRepository()
	active, err := assignmentRepo.GetOpenByOrder(ctx, cancelled.ID())
	switch {
	case err == nil:
		if err = active.Cancel(now); err != nil {
			return err
		}
		if err = assignmentRepo.Update(ctx, active); err != nil {
			return err
		}
	case !errors.Is(err, errs.ErrObjectNotFound):
		return err
	}

	batchRepo := uow.BatchRepository()
	owning, err := batchRepo.Get(ctx, batchID)
	if err != nil {
		return err
	}

	switch owning.Status() {
	case batch.StatusCollecting, batch.StatusReadyForDispatch:
		if err = owning.RemoveOrder(cancelled.ID()); err != nil {
			return err
		}
		cancelled.DetachFromBatch()
		if err = orderRepo.Update(ctx, cancelled); err != nil {
			return err
		}

		// An offered batch emptied by the cancellation must not stay
		// claimable.
		if owning.MemberCount() == 0 && owning.Status() == batch.StatusReadyForDispatch {
			if err = owning.Cancel(); err != nil {
				return err
			}
		}
		return batchRepo.Update(ctx, owning)
	default:
		return aggregateBatch(ctx, orderRepo, batchRepo, batchID, now)
	}
}
