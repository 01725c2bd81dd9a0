package assignment

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status represents the lifecycle state of a delivery assignment.
//
// State transitions:
//
//	ASSIGNED ──> ACKNOWLEDGED ──> PICKED_UP ──> EN_ROUTE ──> ARRIVED ──┬──> DELIVERED
//	                                                                   ├──> FAILED
//	                                                                   └──> RETURNED
//
//	any non-terminal state ──> CANCELLED
//
// DELIVERED, FAILED, RETURNED, and CANCELLED are terminal.
type Status string

const (
	StatusAssigned     Status = "ASSIGNED"
	StatusAcknowledged Status = "ACKNOWLEDGED"
	StatusPickedUp     Status = "PICKED_UP"
	StatusEnRoute      Status = "EN_ROUTE"
	StatusArrived      Status = "ARRIVED"
	StatusDelivered    Status = "DELIVERED"
	StatusFailed       Status = "FAILED"
	StatusReturned     Status = "RETURNED"
	StatusCancelled    Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusAssigned:     {StatusAcknowledged, StatusCancelled},
	StatusAcknowledged: {StatusPickedUp, StatusCancelled},
	StatusPickedUp:     {StatusEnRoute, StatusCancelled},
	StatusEnRoute:      {StatusArrived, StatusCancelled},
	StatusArrived:      {StatusDelivered, StatusFailed, StatusReturned, StatusCancelled},
	StatusDelivered:    {},
	StatusFailed:       {},
	StatusReturned:     {},
	StatusCancelled:    {},
}

// StatusFromString parses and validates an assignment status name.
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
		return errs.NewValueIsInvalidErrorWithCause("assignment status",
			fmt.Errorf("%q is not a valid assignment status", string(s)))
	}
	return nil
}

// IsTerminal reports whether no further transition is defined from this status.
func (s Status) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// TransitionTo validates the move from s to target against the transition
// table and returns the new status.
func (s Status) TransitionTo(target Status) (Status, error) {
	if err := target.Validate(); err != nil {
		return "", err
	}
	if !s.CanTransitionTo(target) {
		return "", errs.NewPreconditionFailedError("assignment status transition",
			fmt.Sprintf("cannot move from %s to %s", s, target))
	}
	return target, nil
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
