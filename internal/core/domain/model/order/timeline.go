package order

import (
	"time"

	"fulfillment/internal/pkg/errs"
)

// TimelineEntry is one append-only record of a status the order passed
// through: the status, when it happened, who caused it, and an optional note.
// Entries are immutable once created.
type TimelineEntry struct {
	status Status
	at     time.Time
	actor  string
	note   string
}

// NewTimelineEntry creates a validated timeline entry.
func NewTimelineEntry(status Status, at time.Time, actor, note string) (TimelineEntry, error) {
	if err := status.Validate(); err != nil {
		return TimelineEntry{}, err
	}
	if at.IsZero() {
		return TimelineEntry{}, errs.NewValueIsRequiredError("timeline entry timestamp")
	}
	if actor == "" {
		return TimelineEntry{}, errs.NewValueIsRequiredError("timeline entry actor")
	}

	return TimelineEntry{
		status: status,
		at:     at,
		actor:  actor,
		note:   note,
	}, nil
}

// Status returns the status recorded by this entry.
func (e TimelineEntry) Status() Status {
	return e.status
}

// At returns when the status change happened.
func (e TimelineEntry) At() time.Time {
	return e.at
}

// Actor returns the identifier of whoever caused the status change: a
// customer, kitchen staff, a driver, or a system sweep.
func (e TimelineEntry) Actor() string {
	return e.actor
}

// Note returns the optional free-form note attached to the change.
func (e TimelineEntry) Note() string {
	return e.note
}
