package jobs

import (
	"fmt"
	"log/slog"

	"fulfillment/internal/adapters/out/postgres/outboxrepo"
	"fulfillment/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	autoBatchJob       *AutoBatchJob
	dispatchJob        *DispatchJob
	outboxPublisherJob *OutboxPublisherJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers and the outbox plumbing as dependencies.
func NewJobManager(
	autoBatchHandler commands.AutoBatchCommandHandler,
	dispatchHandler commands.DispatchBatchesCommandHandler,
	outbox *outboxrepo.GormOutboxRepository,
	publisher messagePublisher,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		autoBatchJob:       NewAutoBatchJob(autoBatchHandler, logger),
		dispatchJob:        NewDispatchJob(dispatchHandler, logger),
		outboxPublisherJob: NewOutboxPublisherJob(outbox, publisher, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.autoBatchJob.Start(); err != nil {
		return fmt.Errorf("failed to start auto-batch job: %w", err)
	}

	if err := jm.dispatchJob.Start(); err != nil {
		jm.autoBatchJob.Stop()
		return fmt.Errorf("failed to start dispatch job: %w", err)
	}

	if err := jm.outboxPublisherJob.Start(); err != nil {
		jm.dispatchJob.Stop()
		jm.autoBatchJob.Stop()
		return fmt.Errorf("failed to start outbox publisher job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.outboxPublisherJob.Stop()
	jm.dispatchJob.Stop()
	jm.autoBatchJob.Stop()
}
