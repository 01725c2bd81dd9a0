package ports

import (
	"context"
	"encoding/json"

	"fulfillment/internal/core/domain/model/kernel"
)

// Notification kinds emitted by the fulfillment core.
const (
	NotificationKindBatchAvailable = "BATCH_AVAILABLE"
	NotificationKindOrderStatus    = "ORDER_STATUS"
	NotificationKindDriverAssigned = "DRIVER_ASSIGNED"
)

// Recipient roles for broadcast notifications without a concrete user id.
const (
	RecipientRoleDrivers = "DRIVERS"
)

// Notification is a fire-and-forget message to a user or a role audience.
// Exactly one of RecipientID and RecipientRole is set.
type Notification struct {
	RecipientID   *kernel.UUID
	RecipientRole string
	Kind          string
	Title         string
	Body          string
	Payload       json.RawMessage
}

// Notifier is the consumed push-notification capability. Implementations
// must never fail the business operation that triggered the notification;
// callers log and swallow enqueue errors.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}
