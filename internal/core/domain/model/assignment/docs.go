// Package assignment provides the DeliveryAssignment aggregate: the
// driver-facing execution record for exactly one order, created at the moment
// a driver wins a batch claim and closed when the order reaches a terminal
// delivery outcome.
//
// Key business rules:
//   - Exactly one non-cancelled assignment exists per order at a time
//   - Status transitions are monotone and mirror the owning order's
//     delivery-phase status through a fixed mapping
//   - DELIVERED is unreachable until proof of delivery has been verified:
//     an exact OTP match, or receipt of a signature/photo reference
//   - Location samples are retained as a bounded trailing window, not a track
package assignment
