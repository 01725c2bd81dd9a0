package jobs

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/metrics"

	"github.com/robfig/cron/v3"
)

// DispatchJob runs the dispatch sweep every minute. For each meal window it
// offers every collected batch whose cutoff has passed to drivers.
type DispatchJob struct {
	handler commands.DispatchBatchesCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewDispatchJob creates the dispatch sweep job.
func NewDispatchJob(handler commands.DispatchBatchesCommandHandler, logger *slog.Logger) *DispatchJob {
	return &DispatchJob{
		handler: handler,
		cron:    cron.New(),
		logger:  logger.With("component", "dispatch_job"),
	}
}

// Start schedules the sweep to run every minute.
func (j *DispatchJob) Start() error {
	_, err := j.cron.AddFunc("* * * * *", func() {
		ctx := context.Background()

		for _, window := range kernel.AllMealWindows() {
			cmd, err := commands.NewDispatchBatchesCommand(window, nil, false)
			if err != nil {
				j.logger.ErrorContext(ctx, "Dispatch sweep could not be constructed",
					"meal_window", string(window), "error", err)
				continue
			}

			result, err := j.handler.Handle(ctx, cmd)
			if err != nil {
				j.logger.ErrorContext(ctx, "Dispatch sweep failed",
					"meal_window", string(window), "error", err)
				continue
			}

			metrics.BatchesDispatched.Add(float64(result.BatchesDispatched))

			if result.BatchesDispatched > 0 {
				j.logger.InfoContext(ctx, "Dispatch sweep offered batches",
					"meal_window", string(window),
					"batches_dispatched", result.BatchesDispatched)
			}
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Dispatch job started (running every minute)")
	return nil
}

// Stop stops the dispatch sweep.
func (j *DispatchJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Dispatch job stopped")
}
