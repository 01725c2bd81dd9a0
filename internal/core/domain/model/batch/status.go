package batch

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status represents the lifecycle state of a delivery batch.
//
// State transitions:
//
//	COLLECTING ──> READY_FOR_DISPATCH ──> DISPATCHED ──> IN_PROGRESS ──┬──> COMPLETED
//	                                           │                       └──> PARTIAL_COMPLETE
//	                                           └──────> COMPLETED | PARTIAL_COMPLETE
//
//	any non-terminal state ──> CANCELLED
//
// COMPLETED, PARTIAL_COMPLETE, and CANCELLED are terminal.
type Status string

const (
	// StatusCollecting accepts new member orders until the cutoff passes.
	StatusCollecting Status = "COLLECTING"

	// StatusReadyForDispatch is the offered state: visible to drivers, closed
	// to new members, waiting for the winning claim.
	StatusReadyForDispatch Status = "READY_FOR_DISPATCH"

	// StatusDispatched means exactly one driver owns the batch.
	StatusDispatched Status = "DISPATCHED"

	// StatusInProgress means the driver has started picking up member orders.
	StatusInProgress Status = "IN_PROGRESS"

	StatusCompleted       Status = "COMPLETED"
	StatusPartialComplete Status = "PARTIAL_COMPLETE"
	StatusCancelled       Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusCollecting:       {StatusReadyForDispatch, StatusCancelled},
	StatusReadyForDispatch: {StatusDispatched, StatusCancelled},
	StatusDispatched:       {StatusInProgress, StatusCompleted, StatusPartialComplete, StatusCancelled},
	StatusInProgress:       {StatusCompleted, StatusPartialComplete, StatusCancelled},
	StatusCompleted:        {},
	StatusPartialComplete:  {},
	StatusCancelled:        {},
}

// StatusFromString parses and validates a batch status name.
func StatusFromString(s string) (Status, error) {
	status := Status(s)
	if err := status.Validate(); err != nil {
		return "", err
	}
	return status, nil
}

// String returns the status name.
func (s Status) String() string {
	return string(s)
}

// Validate checks that the status is one of the known lifecycle states.
func (s Status) Validate() error {
	if _, ok := transitions[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("batch status",
			fmt.Errorf("%q is not a valid batch status", string(s)))
	}
	return nil
}

// IsTerminal reports whether no further transition is defined from this status.
func (s Status) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether the table permits moving from s to target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}
