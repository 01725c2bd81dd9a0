package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through NewOrder or RestoreOrder. This ensures all orders are properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	// ErrTimelineIsBroken is returned when an order's status does not equal the
	// last entry of its status timeline, or the timeline is empty.
	ErrTimelineIsBroken = errors.New("order status must equal the last timeline entry")
)

// stamps maps a newly entered status to the side-effect timestamp it sets on
// the order, keeping the state machine data-driven end to end.
var stamps = map[Status]func(o *Order, at time.Time){
	StatusAccepted:  func(o *Order, at time.Time) { o.acceptedAt = &at },
	StatusReady:     func(o *Order, at time.Time) { o.readyAt = &at },
	StatusPickedUp:  func(o *Order, at time.Time) { o.pickedUpAt = &at },
	StatusDelivered: func(o *Order, at time.Time) { o.deliveredAt = &at },
	StatusFailed:    func(o *Order, at time.Time) { o.failedAt = &at },
	StatusCancelled: func(o *Order, at time.Time) { o.cancelledAt = &at },
}

// Order represents one customer purchase. It is the aggregate root owning the
// order's status timeline and its references into batching and delivery.
//
// Order maintains these invariants:
//   - Status always equals the last entry appended to the timeline
//   - Timeline timestamps are monotonically non-decreasing and never rewritten
//   - A batch reference is only ever written by the batching engine, and a
//     driver reference only while the order is batched
//   - Orders are never deleted; they only reach a terminal status
type Order struct {
	id         kernel.UUID
	customerID kernel.UUID
	kitchenID  kernel.UUID
	zoneID     kernel.UUID

	// mealWindow is nil for on-demand orders, which are never batched.
	mealWindow *kernel.MealWindow

	// items carries the ordered items and pricing opaquely; the fulfillment
	// core never inspects it.
	items json.RawMessage

	address  kernel.Address
	status   Status
	timeline []TimelineEntry

	batchID  *kernel.UUID
	driverID *kernel.UUID

	placedAt    time.Time
	acceptedAt  *time.Time
	readyAt     *time.Time
	pickedUpAt  *time.Time
	deliveredAt *time.Time
	failedAt    *time.Time
	cancelledAt *time.Time

	isConstructed bool
}

// NewOrder creates a new Order in PLACED status with its first timeline entry.
//
// Parameters:
//   - id, customerID, kitchenID, zoneID: entity references (must be valid UUIDs)
//   - mealWindow: the serving period for scheduled-meal orders, nil for on-demand
//   - address: validated delivery address snapshot
//   - items: opaque items/pricing payload
//   - placedAt: placement instant, recorded on the first timeline entry
//   - actor: who placed the order (normally the customer id)
func NewOrder(
	id, customerID, kitchenID, zoneID kernel.UUID,
	mealWindow *kernel.MealWindow,
	address kernel.Address,
	items json.RawMessage,
	placedAt time.Time,
	actor string,
) (*Order, error) {
	if err := errors.Join(
		validateID("order id", id),
		validateID("customer id", customerID),
		validateID("kitchen id", kitchenID),
		validateID("zone id", zoneID),
		address.Validate(),
	); err != nil {
		return nil, err
	}
	if mealWindow != nil {
		if err := mealWindow.Validate(); err != nil {
			return nil, err
		}
	}

	entry, err := NewTimelineEntry(StatusPlaced, placedAt, actor, "")
	if err != nil {
		return nil, err
	}

	return &Order{
		id:            id,
		customerID:    customerID,
		kitchenID:     kitchenID,
		zoneID:        zoneID,
		mealWindow:    mealWindow,
		address:       address,
		items:         items,
		status:        StatusPlaced,
		timeline:      []TimelineEntry{entry},
		placedAt:      placedAt,
		isConstructed: true,
	}, nil
}

// RestoreOrderParams carries the persisted state needed to reconstruct an
// Order aggregate. Used only by repository implementations.
type RestoreOrderParams struct {
	ID          kernel.UUID
	CustomerID  kernel.UUID
	KitchenID   kernel.UUID
	ZoneID      kernel.UUID
	MealWindow  *kernel.MealWindow
	Address     kernel.Address
	Items       json.RawMessage
	Status      Status
	Timeline    []TimelineEntry
	BatchID     *kernel.UUID
	DriverID    *kernel.UUID
	PlacedAt    time.Time
	AcceptedAt  *time.Time
	ReadyAt     *time.Time
	PickedUpAt  *time.Time
	DeliveredAt *time.Time
	FailedAt    *time.Time
	CancelledAt *time.Time
}

// RestoreOrder reconstructs an Order from persistence.
// It re-validates identity, status, and the status/timeline invariant so a
// corrupted row cannot materialize as a usable aggregate.
func RestoreOrder(p RestoreOrderParams) (*Order, error) {
	if err := errors.Join(
		validateID("order id", p.ID),
		validateID("customer id", p.CustomerID),
		validateID("kitchen id", p.KitchenID),
		validateID("zone id", p.ZoneID),
		p.Status.Validate(),
		p.Address.Validate(),
	); err != nil {
		return nil, err
	}

	o := &Order{
		id:            p.ID,
		customerID:    p.CustomerID,
		kitchenID:     p.KitchenID,
		zoneID:        p.ZoneID,
		mealWindow:    p.MealWindow,
		address:       p.Address,
		items:         p.Items,
		status:        p.Status,
		timeline:      p.Timeline,
		batchID:       p.BatchID,
		driverID:      p.DriverID,
		placedAt:      p.PlacedAt,
		acceptedAt:    p.AcceptedAt,
		readyAt:       p.ReadyAt,
		pickedUpAt:    p.PickedUpAt,
		deliveredAt:   p.DeliveredAt,
		failedAt:      p.FailedAt,
		cancelledAt:   p.CancelledAt,
		isConstructed: true,
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order was properly constructed and its core invariant
// holds: the current status equals the last timeline entry.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	if len(o.timeline) == 0 || o.timeline[len(o.timeline)-1].Status() != o.status {
		return ErrTimelineIsBroken
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CustomerID returns the owning customer's identifier.
func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// KitchenID returns the preparing kitchen's identifier.
func (o *Order) KitchenID() kernel.UUID {
	return o.kitchenID
}

// ZoneID returns the delivery zone identifier.
func (o *Order) ZoneID() kernel.UUID {
	return o.zoneID
}

// MealWindow returns the serving period, or nil for on-demand orders.
func (o *Order) MealWindow() *kernel.MealWindow {
	return o.mealWindow
}

// Address returns the delivery address snapshot.
func (o *Order) Address() kernel.Address {
	return o.address
}

// Items returns the opaque items/pricing payload.
func (o *Order) Items() json.RawMessage {
	return o.items
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// Timeline returns a copy of the append-only status timeline.
func (o *Order) Timeline() []TimelineEntry {
	tl := make([]TimelineEntry, len(o.timeline))
	copy(tl, o.timeline)
	return tl
}

// BatchID returns the owning batch's identifier, or nil while unbatched.
func (o *Order) BatchID() *kernel.UUID {
	return o.batchID
}

// DriverID returns the assigned driver's identifier, or nil while unassigned.
func (o *Order) DriverID() *kernel.UUID {
	return o.driverID
}

// PlacedAt returns when the order was placed.
func (o *Order) PlacedAt() time.Time {
	return o.placedAt
}

// AcceptedAt returns when the kitchen accepted the order, if it has.
func (o *Order) AcceptedAt() *time.Time {
	return o.acceptedAt
}

// ReadyAt returns when the order became ready for pickup, if it has.
func (o *Order) ReadyAt() *time.Time {
	return o.readyAt
}

// PickedUpAt returns when the driver picked the order up, if they have.
func (o *Order) PickedUpAt() *time.Time {
	return o.pickedUpAt
}

// DeliveredAt returns when the order was delivered, if it was.
func (o *Order) DeliveredAt() *time.Time {
	return o.deliveredAt
}

// FailedAt returns when delivery failed, if it did.
func (o *Order) FailedAt() *time.Time {
	return o.failedAt
}

// CancelledAt returns when the order was cancelled, if it was.
func (o *Order) CancelledAt() *time.Time {
	return o.cancelledAt
}

// TransitionTo moves the order to newStatus, appending a timeline entry and
// setting the status's side-effect timestamp from the stamp table.
//
// The transition is rejected when the table forbids the move or when at is
// earlier than the last timeline entry (the timeline is monotone). Callers
// must not invoke it twice for the same logical event; the dispatch and
// assignment components each call it exactly once per event.
func (o *Order) TransitionTo(newStatus Status, at time.Time, actor, note string) error {
	next, err := o.status.TransitionTo(newStatus)
	if err != nil {
		return err
	}

	last := o.timeline[len(o.timeline)-1]
	if at.Before(last.At()) {
		return errs.NewValueIsInvalidErrorWithCause("transition timestamp",
			fmt.Errorf("%s is before the last timeline entry at %s", at, last.At()))
	}

	entry, err := NewTimelineEntry(next, at, actor, note)
	if err != nil {
		return err
	}

	o.status = next
	o.timeline = append(o.timeline, entry)
	if stamp, ok := stamps[next]; ok {
		stamp(o, at)
	}

	return nil
}

// CanCancel reports whether the order may still be cancelled: it must not be
// in the delivery leg or a terminal status.
func (o *Order) CanCancel() bool {
	return o.status.IsCancellable()
}

// IsTerminal reports whether the order has reached a terminal status.
func (o *Order) IsTerminal() bool {
	return o.status.IsTerminal()
}

// IsBatchable reports whether the batching engine may collect this order:
// accepted for a meal window, kitchen-side status, and not yet batched.
func (o *Order) IsBatchable() bool {
	return o.status.IsBatchable() && o.mealWindow != nil && o.batchID == nil
}

// AssignToBatch records the owning batch. The batching engine is the only
// caller; an order can belong to at most one batch at a time.
func (o *Order) AssignToBatch(batchID kernel.UUID) error {
	if err := validateID("batch id", batchID); err != nil {
		return err
	}
	if !o.IsBatchable() {
		return errs.NewPreconditionFailedError("assign order to batch",
			fmt.Sprintf("order %s is not batchable in status %s", o.id, o.status))
	}

	o.batchID = &batchID
	return nil
}

// AssignDriver stamps the driver owning this order's delivery. Requires the
// order to be batched; reassignment overwrites the previous driver.
func (o *Order) AssignDriver(driverID kernel.UUID) error {
	if err := validateID("driver id", driverID); err != nil {
		return err
	}
	if o.batchID == nil {
		return errs.NewPreconditionFailedError("assign driver",
			fmt.Sprintf("order %s is not part of a batch", o.id))
	}

	o.driverID = &driverID
	return nil
}

// DetachFromBatch clears the batch and driver references. Called when the
// owning batch is administratively cancelled.
func (o *Order) DetachFromBatch() {
	o.batchID = nil
	o.driverID = nil
}

func validateID(paramName string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(paramName, err)
	}
	return nil
}
