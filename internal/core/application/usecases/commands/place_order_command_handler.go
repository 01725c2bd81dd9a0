package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// PlaceOrderCommandHandler creates new orders in PLACED status and notifies
// the customer. Scheduled-meal orders are picked up by the next batching
// sweep; on-demand orders bypass batching entirely.
type PlaceOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewPlaceOrderCommandHandler creates a handler for order placement.
func NewPlaceOrderCommandHandler(uowFactory OrderUoWFactory) PlaceOrderCommandHandler {
	return PlaceOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the place-order command: creates the aggregate with its
// first timeline entry, persists it, and enqueues the confirmation
// notification in the same transaction.
func (h PlaceOrderCommandHandler) Handle(ctx context.Context, command PlaceOrderCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	newOrder, err := order.NewOrder(
		command.OrderID(),
		command.CustomerID(),
		command.KitchenID(),
		command.ZoneID(),
		command.MealWindow(),
		command.Address(),
		command.Items(),
		time.Now().UTC(),
		command.CustomerID().String(),
	)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return nil, err
	}

	customerID := command.CustomerID()
	notify(ctx, uow.Notifier(), ports.Notification{
		RecipientID: &customerID,
		Kind:        ports.NotificationKindOrderStatus,
		Title:       "Order placed",
		Body:        "Your order has been placed and sent to the kitchen.",
		Payload:     orderStatusPayload(newOrder),
	})

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return newOrder, nil
}
