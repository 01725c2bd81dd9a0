package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with transitions held in a declarative table,
// so the full workflow is data rather than scattered switch statements.
//
// State transitions:
//
//	PLACED ──┬──> ACCEPTED ──> PREPARING ──> READY ──> PICKED_UP ──> OUT_FOR_DELIVERY ──┬──> DELIVERED
//	         │                                                                          └──> FAILED
//	         └──> REJECTED
//
//	PLACED/ACCEPTED/PREPARING/READY ──> CANCELLED
//
// DELIVERED, CANCELLED, REJECTED, and FAILED are terminal.
type Status string

const (
	StatusPlaced         Status = "PLACED"
	StatusAccepted       Status = "ACCEPTED"
	StatusRejected       Status = "REJECTED"
	StatusPreparing      Status = "PREPARING"
	StatusReady          Status = "READY"
	StatusPickedUp       Status = "PICKED_UP"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusFailed         Status = "FAILED"
	StatusCancelled      Status = "CANCELLED"
)

// transitions is the declarative transition table: for each state, the set of
// states reachable from it. States absent from a value set are unreachable
// from that key; terminal states map to an empty set.
var transitions = map[Status][]Status{
	StatusPlaced:         {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted:       {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusReady, StatusCancelled},
	StatusReady:          {StatusPickedUp, StatusCancelled},
	StatusPickedUp:       {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered, StatusFailed},
	StatusDelivered:      {},
	StatusRejected:       {},
	StatusFailed:         {},
	StatusCancelled:      {},
}

// StatusFromString parses and validates an order status name.
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
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%q is not a valid order status", string(s)))
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

// TransitionTo validates the move from s to target against the table.
// Returns the target status, or an error leaving the caller's state untouched.
func (s Status) TransitionTo(target Status) (Status, error) {
	if err := target.Validate(); err != nil {
		return "", err
	}
	if !s.CanTransitionTo(target) {
		return "", errs.NewPreconditionFailedError("order status transition",
			fmt.Sprintf("cannot move from %s to %s", s, target))
	}
	return target, nil
}

// IsCancellable reports whether the order may still be cancelled from this
// status. Orders already in the delivery leg or in a terminal state cannot be.
func (s Status) IsCancellable() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// IsDeliveryPhase reports whether the status belongs to the driver-facing leg
// of the lifecycle, driven exclusively by the delivery assignment tracker.
func (s Status) IsDeliveryPhase() bool {
	switch s {
	case StatusPickedUp, StatusOutForDelivery, StatusDelivered, StatusFailed:
		return true
	}
	return false
}

// IsBatchable reports whether an order in this status is eligible for the
// batching engine to collect.
func (s Status) IsBatchable() bool {
	switch s {
	case StatusAccepted, StatusPreparing, StatusReady:
		return true
	}
	return false
}
