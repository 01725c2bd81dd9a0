// Package outboxrepo implements the transactional outbox for notifications.
// Notifications are written to the outbox_messages table inside the business
// transaction that produced them; a background publisher later relays pending
// rows to the message broker and marks them published.
package outboxrepo

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Outbox message statuses.
const (
	StatusPending   = "PENDING"
	StatusPublished = "PUBLISHED"
)

// OutboxMessageDTO represents one notification awaiting relay to the broker.
type OutboxMessageDTO struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RecipientID   *uuid.UUID `gorm:"type:uuid"`
	RecipientRole string     `gorm:"type:varchar(32)"`
	Kind          string     `gorm:"type:varchar(32)"`
	Title         string     `gorm:"type:varchar(255)"`
	Body          string     `gorm:"type:text"`
	Payload       []byte     `gorm:"type:jsonb"`
	Status        string     `gorm:"type:varchar(16);index"`
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

// TableName specifies the database table name for outbox messages.
func (OutboxMessageDTO) TableName() string {
	return "outbox_messages"
}

// GormOutboxNotifier implements ports.Notifier by inserting a pending outbox
// row. When constructed from a unit of work the insert shares the business
// transaction, so a rollback also discards the notification.
type GormOutboxNotifier struct {
	db *gorm.DB
}

// NewGormOutboxNotifier creates an outbox-backed notifier on the given
// connection or transaction.
func NewGormOutboxNotifier(db *gorm.DB) *GormOutboxNotifier {
	return &GormOutboxNotifier{db: db}
}

// Notify enqueues the notification as a pending outbox message.
func (n *GormOutboxNotifier) Notify(ctx context.Context, notification ports.Notification) error {
	var recipientID *uuid.UUID
	if id := notification.RecipientID; id != nil {
		raw := id.Bytes()
		recipientID = &raw
	}

	dto := OutboxMessageDTO{
		ID:            kernel.NewUUID().Bytes(),
		RecipientID:   recipientID,
		RecipientRole: notification.RecipientRole,
		Kind:          notification.Kind,
		Title:         notification.Title,
		Body:          notification.Body,
		Payload:       notification.Payload,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	return n.db.WithContext(ctx).Create(&dto).Error
}

// GormOutboxRepository is the publisher-side view of the outbox: reading
// pending messages and marking them published.
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewGormOutboxRepository creates a publisher-side outbox repository.
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// GetPending retrieves up to limit pending messages, oldest first.
func (r *GormOutboxRepository) GetPending(ctx context.Context, limit int) ([]OutboxMessageDTO, error) {
	var dtos []OutboxMessageDTO
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("created_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}
	return dtos, nil
}

// MarkPublished stamps the message published. Relay and stamp are not
// atomic, so consumers must tolerate the occasional duplicate.
func (r *GormOutboxRepository) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&OutboxMessageDTO{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       StatusPublished,
			"published_at": at,
		}).Error
}
