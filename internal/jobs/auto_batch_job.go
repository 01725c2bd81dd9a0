package jobs

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/metrics"

	"github.com/robfig/cron/v3"
)

// AutoBatchJob runs the batching sweep every minute, grouping batchable
// orders into per-kitchen, per-zone, per-window batches.
type AutoBatchJob struct {
	handler commands.AutoBatchCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewAutoBatchJob creates the batching sweep job.
func NewAutoBatchJob(handler commands.AutoBatchCommandHandler, logger *slog.Logger) *AutoBatchJob {
	return &AutoBatchJob{
		handler: handler,
		cron:    cron.New(),
		logger:  logger.With("component", "auto_batch_job"),
	}
}

// Start schedules the sweep to run every minute across all meal windows and
// kitchens.
func (j *AutoBatchJob) Start() error {
	_, err := j.cron.AddFunc("* * * * *", func() {
		ctx := context.Background()

		cmd, err := commands.NewAutoBatchCommand(nil, nil)
		if err != nil {
			j.logger.ErrorContext(ctx, "Auto-batch sweep could not be constructed", "error", err)
			return
		}

		result, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Auto-batch sweep failed", "error", err)
			return
		}

		metrics.BatchesCreated.Add(float64(result.BatchesCreated))
		metrics.OrdersBatched.Add(float64(result.OrdersProcessed))

		if result.OrdersProcessed > 0 {
			j.logger.InfoContext(ctx, "Auto-batch sweep completed",
				"batches_created", result.BatchesCreated,
				"batches_updated", result.BatchesUpdated,
				"orders_processed", result.OrdersProcessed)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Auto-batch job started (running every minute)")
	return nil
}

// Stop stops the batching sweep.
func (j *AutoBatchJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Auto-batch job stopped")
}
