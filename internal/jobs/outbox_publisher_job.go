package jobs

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/adapters/out/postgres/outboxrepo"
	"fulfillment/internal/metrics"

	"github.com/robfig/cron/v3"
)

// outboxBatchSize bounds how many messages one relay tick picks up.
const outboxBatchSize = 100

// messagePublisher sends one outbox message to the broker.
type messagePublisher interface {
	Publish(message outboxrepo.OutboxMessageDTO) error
}

// OutboxPublisherJob relays committed outbox messages to Kafka every five
// seconds. A message is stamped published only after the broker accepts it,
// so a crash between the two steps re-sends on the next tick.
type OutboxPublisherJob struct {
	outbox    *outboxrepo.GormOutboxRepository
	publisher messagePublisher
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewOutboxPublisherJob creates the outbox relay job.
func NewOutboxPublisherJob(
	outbox *outboxrepo.GormOutboxRepository,
	publisher messagePublisher,
	logger *slog.Logger,
) *OutboxPublisherJob {
	return &OutboxPublisherJob{
		outbox:    outbox,
		publisher: publisher,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "outbox_publisher_job"),
	}
}

// Start schedules the relay to run every five seconds.
func (j *OutboxPublisherJob) Start() error {
	_, err := j.cron.AddFunc("*/5 * * * * *", func() {
		ctx := context.Background()

		pending, err := j.outbox.GetPending(ctx, outboxBatchSize)
		if err != nil {
			j.logger.ErrorContext(ctx, "Outbox read failed", "error", err)
			return
		}

		for _, message := range pending {
			if err := j.publisher.Publish(message); err != nil {
				metrics.OutboxPublishFailures.Inc()
				j.logger.ErrorContext(ctx, "Outbox publish failed",
					"message_id", message.ID, "kind", message.Kind, "error", err)
				// Leave the message pending; the next tick retries in order.
				return
			}

			if err := j.outbox.MarkPublished(ctx, message.ID, time.Now().UTC()); err != nil {
				j.logger.ErrorContext(ctx, "Outbox stamp failed",
					"message_id", message.ID, "error", err)
				return
			}

			metrics.OutboxPublished.Inc()
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Outbox publisher job started (running every five seconds)")
	return nil
}

// Stop stops the relay.
func (j *OutboxPublisherJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Outbox publisher job stopped")
}
