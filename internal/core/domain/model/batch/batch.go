package batch

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// ErrBatchIsNotConstructed is returned when a Batch instance was not created
// through NewBatch or RestoreBatch.
var ErrBatchIsNotConstructed = errors.New("Batch must be created via NewBatch or RestoreBatch constructor")

// Batch is the DeliveryBatch aggregate root: a capacity-bounded, ordered
// group of orders for one (kitchen, zone, meal window, date) key, delivered
// in a single driver trip. The position of an order in the member list is its
// delivery-sequence hint.
type Batch struct {
	id          kernel.UUID
	batchNumber string
	kitchenID   kernel.UUID
	zoneID      kernel.UUID
	mealWindow  kernel.MealWindow

	// batchDate is the civil date the batch serves, truncated to midnight UTC.
	batchDate time.Time

	// windowEndTime is the collection deadline computed by the cutoff resolver.
	windowEndTime time.Time

	capacity int
	orderIDs []kernel.UUID

	status   Status
	driverID *kernel.UUID

	claimedAt   *time.Time
	completedAt *time.Time

	totalDelivered int
	totalFailed    int

	// persistedStatus and persistedMemberCount capture the state the
	// aggregate carried when it was last loaded from or written to storage.
	// Repositories use them as the optimistic guard on updates.
	persistedStatus      Status
	persistedMemberCount int

	isConstructed bool
}

// NewBatch creates an empty Batch in COLLECTING status.
// Capacity is the configured max batch size, snapshotted so later
// configuration changes never shrink an existing batch below its members.
func NewBatch(
	id kernel.UUID,
	batchNumber string,
	kitchenID, zoneID kernel.UUID,
	mealWindow kernel.MealWindow,
	batchDate time.Time,
	windowEndTime time.Time,
	capacity int,
) (*Batch, error) {
	if err := errors.Join(
		validateID("batch id", id),
		validateID("kitchen id", kitchenID),
		validateID("zone id", zoneID),
		mealWindow.Validate(),
	); err != nil {
		return nil, err
	}
	if batchNumber == "" {
		return nil, errs.NewValueIsRequiredError("batch number")
	}
	if capacity <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("batch capacity",
			fmt.Errorf("%d is not greater than 0", capacity))
	}
	if windowEndTime.IsZero() {
		return nil, errs.NewValueIsRequiredError("window end time")
	}

	return &Batch{
		id:              id,
		batchNumber:     batchNumber,
		kitchenID:       kitchenID,
		zoneID:          zoneID,
		mealWindow:      mealWindow,
		batchDate:       batchDate.UTC().Truncate(24 * time.Hour),
		windowEndTime:   windowEndTime,
		capacity:        capacity,
		orderIDs:        []kernel.UUID{},
		status:          StatusCollecting,
		persistedStatus: StatusCollecting,
		isConstructed:   true,
	}, nil
}

// RestoreBatchParams carries the persisted state needed to reconstruct a
// Batch aggregate. Used only by repository implementations.
type RestoreBatchParams struct {
	ID             kernel.UUID
	BatchNumber    string
	KitchenID      kernel.UUID
	ZoneID         kernel.UUID
	MealWindow     kernel.MealWindow
	BatchDate      time.Time
	WindowEndTime  time.Time
	Capacity       int
	OrderIDs       []kernel.UUID
	Status         Status
	DriverID       *kernel.UUID
	ClaimedAt      *time.Time
	CompletedAt    *time.Time
	TotalDelivered int
	TotalFailed    int
}

// RestoreBatch reconstructs a Batch from persistence, re-validating the
// capacity invariant so an over-full row cannot materialize as an aggregate.
func RestoreBatch(p RestoreBatchParams) (*Batch, error) {
	if err := errors.Join(
		validateID("batch id", p.ID),
		validateID("kitchen id", p.KitchenID),
		validateID("zone id", p.ZoneID),
		p.MealWindow.Validate(),
		p.Status.Validate(),
	); err != nil {
		return nil, err
	}
	if len(p.OrderIDs) > p.Capacity {
		return nil, errs.NewValueIsOutOfRangeError("batch member count", len(p.OrderIDs), 0, p.Capacity)
	}

	return &Batch{
		id:                   p.ID,
		batchNumber:          p.BatchNumber,
		kitchenID:            p.KitchenID,
		zoneID:               p.ZoneID,
		mealWindow:           p.MealWindow,
		batchDate:            p.BatchDate,
		windowEndTime:        p.WindowEndTime,
		capacity:             p.Capacity,
		orderIDs:             p.OrderIDs,
		status:               p.Status,
		driverID:             p.DriverID,
		claimedAt:            p.ClaimedAt,
		completedAt:          p.CompletedAt,
		totalDelivered:       p.TotalDelivered,
		totalFailed:          p.TotalFailed,
		persistedStatus:      p.Status,
		persistedMemberCount: len(p.OrderIDs),
		isConstructed:        true,
	}, nil
}

// Validate ensures the Batch was properly constructed.
func (b *Batch) Validate() error {
	if b == nil || !b.isConstructed {
		return ErrBatchIsNotConstructed
	}
	return nil
}

// IsEqual compares two batches by their unique identifiers.
func (b *Batch) IsEqual(other *Batch) bool {
	return other != nil && b.id.IsEqual(other.id)
}

// ID returns the batch's unique identifier.
func (b *Batch) ID() kernel.UUID {
	return b.id
}

// BatchNumber returns the human-readable batch number.
func (b *Batch) BatchNumber() string {
	return b.batchNumber
}

// KitchenID returns the preparing kitchen's identifier.
func (b *Batch) KitchenID() kernel.UUID {
	return b.kitchenID
}

// ZoneID returns the delivery zone identifier.
func (b *Batch) ZoneID() kernel.UUID {
	return b.zoneID
}

// MealWindow returns the serving period the batch groups orders for.
func (b *Batch) MealWindow() kernel.MealWindow {
	return b.mealWindow
}

// BatchDate returns the civil date the batch serves.
func (b *Batch) BatchDate() time.Time {
	return b.batchDate
}

// WindowEndTime returns the collection deadline.
func (b *Batch) WindowEndTime() time.Time {
	return b.windowEndTime
}

// Capacity returns the maximum member count for this batch.
func (b *Batch) Capacity() int {
	return b.capacity
}

// OrderIDs returns a copy of the ordered member list.
func (b *Batch) OrderIDs() []kernel.UUID {
	ids := make([]kernel.UUID, len(b.orderIDs))
	copy(ids, b.orderIDs)
	return ids
}

// MemberCount returns the current number of member orders.
func (b *Batch) MemberCount() int {
	return len(b.orderIDs)
}

// RemainingCapacity returns how many more orders the batch can take.
func (b *Batch) RemainingCapacity() int {
	return b.capacity - len(b.orderIDs)
}

// Status returns the current status of the batch.
func (b *Batch) Status() Status {
	return b.status
}

// DriverID returns the owning driver's identifier, or nil before the claim.
func (b *Batch) DriverID() *kernel.UUID {
	return b.driverID
}

// ClaimedAt returns when the winning driver claimed the batch, if claimed.
func (b *Batch) ClaimedAt() *time.Time {
	return b.claimedAt
}

// CompletedAt returns when the batch closed, if it has.
func (b *Batch) CompletedAt() *time.Time {
	return b.completedAt
}

// TotalDelivered returns the running count of delivered member orders.
func (b *Batch) TotalDelivered() int {
	return b.totalDelivered
}

// TotalFailed returns the running count of failed member orders.
func (b *Batch) TotalFailed() int {
	return b.totalFailed
}

// AddOrder appends an order to the member list.
// Only COLLECTING batches accept members, duplicates are rejected, and the
// capacity bound holds at every point in time.
func (b *Batch) AddOrder(orderID kernel.UUID) error {
	if err := validateID("order id", orderID); err != nil {
		return err
	}
	if b.status != StatusCollecting {
		return errs.NewPreconditionFailedError("add order to batch",
			fmt.Sprintf("batch %s is %s, not %s", b.batchNumber, b.status, StatusCollecting))
	}
	if b.RemainingCapacity() <= 0 {
		return errs.NewValueIsOutOfRangeError("batch member count", len(b.orderIDs)+1, 0, b.capacity)
	}
	for _, id := range b.orderIDs {
		if id.IsEqual(orderID) {
			return errs.NewPreconditionFailedError("add order to batch",
				fmt.Sprintf("order %s is already a member of batch %s", orderID, b.batchNumber))
		}
	}

	b.orderIDs = append(b.orderIDs, orderID)
	return nil
}

// RemoveOrder detaches a member order before the batch is claimed, shifting
// later members' delivery sequence up. Removal is rejected once a driver is
// involved; claimed trips shed members through assignment cancellation.
func (b *Batch) RemoveOrder(orderID kernel.UUID) error {
	if err := validateID("order id", orderID); err != nil {
		return err
	}
	if b.status != StatusCollecting && b.status != StatusReadyForDispatch {
		return errs.NewPreconditionFailedError("remove order from batch",
			fmt.Sprintf("batch %s is %s; members can only be removed before dispatch", b.batchNumber, b.status))
	}

	for i, id := range b.orderIDs {
		if id.IsEqual(orderID) {
			b.orderIDs = append(b.orderIDs[:i], b.orderIDs[i+1:]...)
			return nil
		}
	}
	return errs.NewObjectNotFoundError("batch member", orderID.String())
}

// PersistedState returns the status and member count the aggregate carried
// at its last load or successful write.
func (b *Batch) PersistedState() (Status, int) {
	return b.persistedStatus, b.persistedMemberCount
}

// MarkPersisted resets the persisted-state snapshot to the current status
// and member count. Called by repositories after a successful write.
func (b *Batch) MarkPersisted() {
	b.persistedStatus = b.status
	b.persistedMemberCount = len(b.orderIDs)
}

// SequenceOf returns the 1-based delivery sequence of an order within the
// batch, or 0 if the order is not a member.
func (b *Batch) SequenceOf(orderID kernel.UUID) int {
	for i, id := range b.orderIDs {
		if id.IsEqual(orderID) {
			return i + 1
		}
	}
	return 0
}

// Offer flips a COLLECTING batch to READY_FOR_DISPATCH, after which no
// further orders may be appended. A batch with zero members is never offered.
func (b *Batch) Offer() error {
	if b.status != StatusCollecting {
		return errs.NewPreconditionFailedError("offer batch",
			fmt.Sprintf("batch %s is %s, not %s", b.batchNumber, b.status, StatusCollecting))
	}
	if len(b.orderIDs) == 0 {
		return errs.NewPreconditionFailedError("offer batch",
			fmt.Sprintf("batch %s has no member orders", b.batchNumber))
	}

	b.status = StatusReadyForDispatch
	return nil
}

// Claim records the winning driver of an offered batch.
// It succeeds only while the batch is READY_FOR_DISPATCH with no driver; a
// batch is assigned a driver exactly once. The storage layer enforces the
// same condition atomically so concurrent claims resolve to a single winner.
func (b *Batch) Claim(driverID kernel.UUID, at time.Time) error {
	if err := validateID("driver id", driverID); err != nil {
		return err
	}
	if b.status != StatusReadyForDispatch || b.driverID != nil {
		return errs.NewPreconditionFailedError("claim batch", "batch already taken")
	}

	b.status = StatusDispatched
	b.driverID = &driverID
	b.claimedAt = &at
	return nil
}

// StartProgress marks the trip as underway when the first member order is
// picked up. It is a no-op for batches already in progress.
func (b *Batch) StartProgress() error {
	if b.status == StatusInProgress {
		return nil
	}
	if b.status != StatusDispatched {
		return errs.NewPreconditionFailedError("start batch progress",
			fmt.Sprintf("batch %s is %s, not %s", b.batchNumber, b.status, StatusDispatched))
	}

	b.status = StatusInProgress
	return nil
}

// Reassign hands the batch to a different driver.
// Permitted only while the batch is DISPATCHED or IN_PROGRESS.
func (b *Batch) Reassign(newDriverID kernel.UUID) error {
	if err := validateID("driver id", newDriverID); err != nil {
		return err
	}
	if b.status != StatusDispatched && b.status != StatusInProgress {
		return errs.NewPreconditionFailedError("reassign batch",
			fmt.Sprintf("batch %s is %s; reassignment requires %s or %s",
				b.batchNumber, b.status, StatusDispatched, StatusInProgress))
	}

	b.driverID = &newDriverID
	return nil
}

// Cancel administratively closes the batch before completion.
// Rejected once the batch is terminal.
func (b *Batch) Cancel() error {
	if b.status.IsTerminal() {
		return errs.NewPreconditionFailedError("cancel batch",
			fmt.Sprintf("batch %s is already %s", b.batchNumber, b.status))
	}

	b.status = StatusCancelled
	return nil
}

// Recalculate refreshes the delivered/failed counters from the member
// orders' current states and closes the batch once every member is terminal:
// COMPLETED when nothing failed, PARTIAL_COMPLETE otherwise.
//
// terminal counts all members in a terminal status, including cancelled
// ones, so a batch never closes while any member is still moving.
func (b *Batch) Recalculate(delivered, failed, terminal int, closedAt time.Time) error {
	if delivered+failed > len(b.orderIDs) || terminal > len(b.orderIDs) {
		return errs.NewValueIsOutOfRangeError("batch outcome count",
			delivered+failed, 0, len(b.orderIDs))
	}

	b.totalDelivered = delivered
	b.totalFailed = failed

	if b.status.IsTerminal() || b.status == StatusCollecting || b.status == StatusReadyForDispatch {
		return nil
	}
	if terminal < len(b.orderIDs) || len(b.orderIDs) == 0 {
		return nil
	}

	if failed > 0 {
		b.status = StatusPartialComplete
	} else {
		b.status = StatusCompleted
	}
	b.completedAt = &closedAt
	return nil
}

func validateID(paramName string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(paramName, err)
	}
	return nil
}
