// Package order provides domain entities and business logic for meal-order
// management in the fulfillment system. It implements the Order aggregate root
// with lifecycle management and state transitions.
//
// The package includes:
//   - Order: The aggregate root that manages order identity, batching references, and lifecycle
//   - Status: A data-driven state machine that enforces valid order status transitions
//   - TimelineEntry: An append-only record of every status the order has passed through
//
// Key business rules:
//   - Order status follows the workflow PLACED -> ACCEPTED -> PREPARING -> READY ->
//     PICKED_UP -> OUT_FOR_DELIVERY -> DELIVERED/FAILED, with REJECTED and
//     CANCELLED as the remaining terminal exits
//   - The current status always equals the last timeline entry, and timeline
//     timestamps are monotonically non-decreasing
//   - Only the batching engine writes the batch reference; only the dispatch and
//     assignment components drive delivery-phase transitions
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
