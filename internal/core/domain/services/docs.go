// Package services provides domain services that implement business logic
// spanning more than one aggregate in the fulfillment core.
//
// The package includes:
//   - CutoffResolver: maps (kitchen operating hours, meal window, date) to
//     the absolute collection-deadline instant used by batching and dispatch
package services
