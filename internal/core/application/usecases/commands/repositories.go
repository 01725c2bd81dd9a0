// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// BatchRepoFactory provides access to the batch repository within a transaction.
	BatchRepoFactory interface {
		BatchRepository() ports.BatchRepository
	}

	// AssignmentRepoFactory provides access to the assignment repository within a transaction.
	AssignmentRepoFactory interface {
		AssignmentRepository() ports.AssignmentRepository
	}

	// NotifierFactory provides a notifier that enqueues within the transaction.
	NotifierFactory interface {
		Notifier() ports.Notifier
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
		NotifierFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// BatchingUoW manages transactions for the batching sweep, which writes
	// both sides of the order-batch membership together.
	BatchingUoW interface {
		TxManager
		OrderRepoFactory
		BatchRepoFactory
	}

	// BatchingUoWFactory creates new batching unit of work instances.
	BatchingUoWFactory interface {
		Create() BatchingUoW
	}

	// DispatchUoW manages transactions for the dispatch sweep.
	DispatchUoW interface {
		TxManager
		BatchRepoFactory
		NotifierFactory
	}

	// DispatchUoWFactory creates new dispatch unit of work instances.
	DispatchUoWFactory interface {
		Create() DispatchUoW
	}

	// UoW manages transactions across all three fulfillment aggregates.
	// Used for commands that keep order, batch, and assignment in lockstep.
	UoW interface {
		TxManager
		OrderRepoFactory
		BatchRepoFactory
		AssignmentRepoFactory
		NotifierFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)

// notify enqueues a notification, logging and swallowing any failure.
// Delivery-of-record takes precedence over delivery-of-notice: a failed
// enqueue never rolls back or blocks the state transition that produced it.
func notify(ctx context.Context, notifier ports.Notifier, notification ports.Notification) {
	if err := notifier.Notify(ctx, notification); err != nil {
		slog.WarnContext(ctx, "notification enqueue failed",
			"kind", notification.Kind, "error", err)
	}
}

// audit records an operator action, logging and swallowing any failure.
func audit(ctx context.Context, recorder ports.AuditRecorder, event ports.AuditEvent) {
	if err := recorder.Record(ctx, event); err != nil {
		slog.WarnContext(ctx, "audit record failed",
			"action", event.Action, "error", err)
	}
}
