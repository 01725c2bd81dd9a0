// Package batch provides the DeliveryBatch aggregate: a bounded group of
// orders sharing kitchen, zone, and meal window, destined for one driver trip.
//
// Key business rules:
//   - Member count never exceeds the batch's capacity, snapshotted from
//     configuration at creation time
//   - A batch is offered to drivers only after its cutoff passes and only
//     while it has at least one member
//   - A driver may claim a batch only from READY_FOR_DISPATCH and only once;
//     the winning claim is arbitrated by an atomic conditional update at the
//     storage layer
//   - A batch closes as COMPLETED or PARTIAL_COMPLETE once every member order
//     reaches a terminal status, or is administratively CANCELLED before that
package batch
