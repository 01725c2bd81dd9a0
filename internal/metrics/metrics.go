// Package metrics defines the Prometheus instrumentation for the fulfillment
// core. Collectors are registered on the default registry and exposed via the
// /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersPlaced counts orders accepted through the API.
	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fulfillment",
		Name:      "orders_placed_total",
		Help:      "Number of orders placed.",
	})

	// BatchesCreated counts batches opened by the batching sweep.
	BatchesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fulfillment",
		Name:      "batches_created_total",
		Help:      "Number of batches created by the batching sweep.",
	})

	// OrdersBatched counts orders placed into batches by the sweep.
	OrdersBatched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fulfillment",
		Name:      "orders_batched_total",
		Help:      "Number of orders assigned to batches.",
	})

	// BatchesDispatched counts batches offered to drivers.
	BatchesDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fulfillment",
		Name:      "batches_dispatched_total",
		Help:      "Number of batches offered to drivers.",
	})

	// ClaimAttempts counts batch claim attempts by outcome: won or lost.
	ClaimAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fulfillment",
		Name:      "batch_claim_attempts_total",
		Help:      "Number of batch claim attempts by outcome.",
	}, []string{"outcome"})

	// DeliveriesClosed counts terminal delivery outcomes: delivered, failed,
	// or returned.
	DeliveriesClosed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fulfillment",
		Name:      "deliveries_closed_total",
		Help:      "Number of closed deliveries by outcome.",
	}, []string{"outcome"})

	// OutboxPublished counts outbox messages relayed to the broker.
	OutboxPublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fulfillment",
		Name:      "outbox_published_total",
		Help:      "Number of outbox messages published to Kafka.",
	})

	// OutboxPublishFailures counts relay attempts the broker rejected.
	OutboxPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fulfillment",
		Name:      "outbox_publish_failures_total",
		Help:      "Number of failed outbox publish attempts.",
	})
)
