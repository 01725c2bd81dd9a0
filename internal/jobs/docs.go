// Package jobs provides scheduled background tasks for the fulfillment system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle the periodic sweeps the fulfillment core depends on.
//
// # Available Jobs
//
// 1. AutoBatchJob - groups batchable orders into batches every minute
// 2. DispatchJob - offers collected batches to drivers once their cutoff passes
// 3. OutboxPublisherJob - relays committed outbox messages to Kafka
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(autoBatchHandler, dispatchHandler, outbox, producer, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Sweep jobs log failures and wait for the next tick; a failed run never
// stops the schedule. Failed job starts will stop any already running jobs.
package jobs
