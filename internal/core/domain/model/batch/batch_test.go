package batch_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBatch(t *testing.T, capacity int) *batch.Batch {
	t.Helper()
	b, err := batch.NewBatch(
		kernel.NewUUID(),
		"B20260901-0001",
		kernel.NewUUID(),
		kernel.NewUUID(),
		kernel.MealWindowLunch,
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC),
		capacity,
	)
	require.NoError(t, err)
	return b
}

func offerWithOrders(t *testing.T, b *batch.Batch, n int) []kernel.UUID {
	t.Helper()
	ids := make([]kernel.UUID, 0, n)
	for range n {
		id := kernel.NewUUID()
		require.NoError(t, b.AddOrder(id))
		ids = append(ids, id)
	}
	require.NoError(t, b.Offer())
	return ids
}

func TestNewBatch(t *testing.T) {
	t.Run("creates empty collecting batch", func(t *testing.T) {
		b := newTestBatch(t, 15)

		assert.Equal(t, batch.StatusCollecting, b.Status())
		assert.Zero(t, b.MemberCount())
		assert.Equal(t, 15, b.Capacity())
		assert.Equal(t, 15, b.RemainingCapacity())
		assert.Nil(t, b.DriverID())
		require.NoError(t, b.Validate())
	})

	t.Run("rejects non-positive capacity", func(t *testing.T) {
		_, err := batch.NewBatch(
			kernel.NewUUID(), "B1", kernel.NewUUID(), kernel.NewUUID(),
			kernel.MealWindowLunch, time.Now(), time.Now(), 0,
		)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects empty batch number", func(t *testing.T) {
		_, err := batch.NewBatch(
			kernel.NewUUID(), "", kernel.NewUUID(), kernel.NewUUID(),
			kernel.MealWindowLunch, time.Now(), time.Now(), 15,
		)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("rejects invalid meal window", func(t *testing.T) {
		_, err := batch.NewBatch(
			kernel.NewUUID(), "B1", kernel.NewUUID(), kernel.NewUUID(),
			kernel.MealWindow("BRUNCH"), time.Now(), time.Now(), 15,
		)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestBatch_AddOrder(t *testing.T) {
	t.Run("appends members in sequence order", func(t *testing.T) {
		b := newTestBatch(t, 3)
		first := kernel.NewUUID()
		second := kernel.NewUUID()

		require.NoError(t, b.AddOrder(first))
		require.NoError(t, b.AddOrder(second))

		assert.Equal(t, 2, b.MemberCount())
		assert.Equal(t, 1, b.SequenceOf(first))
		assert.Equal(t, 2, b.SequenceOf(second))
		assert.Equal(t, 0, b.SequenceOf(kernel.NewUUID()))
	})

	t.Run("enforces capacity at every point", func(t *testing.T) {
		b := newTestBatch(t, 2)
		require.NoError(t, b.AddOrder(kernel.NewUUID()))
		require.NoError(t, b.AddOrder(kernel.NewUUID()))

		err := b.AddOrder(kernel.NewUUID())

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		assert.Equal(t, 2, b.MemberCount())
	})

	t.Run("rejects duplicate member", func(t *testing.T) {
		b := newTestBatch(t, 5)
		id := kernel.NewUUID()
		require.NoError(t, b.AddOrder(id))

		require.ErrorIs(t, b.AddOrder(id), errs.ErrPreconditionFailed)
	})

	t.Run("rejects members once offered", func(t *testing.T) {
		b := newTestBatch(t, 5)
		offerWithOrders(t, b, 1)

		require.ErrorIs(t, b.AddOrder(kernel.NewUUID()), errs.ErrPreconditionFailed)
	})
}

func TestBatch_RemoveOrder(t *testing.T) {
	t.Run("splices the member out and reseals the sequence", func(t *testing.T) {
		b := newTestBatch(t, 5)
		first := kernel.NewUUID()
		second := kernel.NewUUID()
		third := kernel.NewUUID()
		require.NoError(t, b.AddOrder(first))
		require.NoError(t, b.AddOrder(second))
		require.NoError(t, b.AddOrder(third))

		require.NoError(t, b.RemoveOrder(second))

		assert.Equal(t, 2, b.MemberCount())
		assert.Equal(t, 1, b.SequenceOf(first))
		assert.Equal(t, 2, b.SequenceOf(third))
		assert.Equal(t, 0, b.SequenceOf(second))
	})

	t.Run("allows removal while offered but not yet claimed", func(t *testing.T) {
		b := newTestBatch(t, 5)
		id := kernel.NewUUID()
		require.NoError(t, b.AddOrder(id))
		require.NoError(t, b.AddOrder(kernel.NewUUID()))
		require.NoError(t, b.Offer())

		require.NoError(t, b.RemoveOrder(id))
		assert.Equal(t, 1, b.MemberCount())
	})

	t.Run("rejects removal once dispatched", func(t *testing.T) {
		b := newTestBatch(t, 5)
		id := kernel.NewUUID()
		require.NoError(t, b.AddOrder(id))
		require.NoError(t, b.Offer())
		require.NoError(t, b.Claim(kernel.NewUUID(), time.Now()))

		require.ErrorIs(t, b.RemoveOrder(id), errs.ErrPreconditionFailed)
		assert.Equal(t, 1, b.MemberCount())
	})

	t.Run("unknown member is not found", func(t *testing.T) {
		b := newTestBatch(t, 5)
		require.NoError(t, b.AddOrder(kernel.NewUUID()))

		require.ErrorIs(t, b.RemoveOrder(kernel.NewUUID()), errs.ErrObjectNotFound)
	})
}

func TestBatch_Offer(t *testing.T) {
	t.Run("offers collecting batch with members", func(t *testing.T) {
		b := newTestBatch(t, 5)
		require.NoError(t, b.AddOrder(kernel.NewUUID()))

		require.NoError(t, b.Offer())
		assert.Equal(t, batch.StatusReadyForDispatch, b.Status())
	})

	t.Run("never offers an empty batch", func(t *testing.T) {
		b := newTestBatch(t, 5)

		err := b.Offer()

		require.ErrorIs(t, err, errs.ErrPreconditionFailed)
		assert.Equal(t, batch.StatusCollecting, b.Status())
	})

	t.Run("rejects double offer", func(t *testing.T) {
		b := newTestBatch(t, 5)
		offerWithOrders(t, b, 1)

		require.ErrorIs(t, b.Offer(), errs.ErrPreconditionFailed)
	})
}

func TestBatch_Claim(t *testing.T) {
	t.Run("first claim wins and is recorded once", func(t *testing.T) {
		b := newTestBatch(t, 5)
		offerWithOrders(t, b, 2)
		winner := kernel.NewUUID()
		at := time.Now()

		require.NoError(t, b.Claim(winner, at))

		assert.Equal(t, batch.StatusDispatched, b.Status())
		require.NotNil(t, b.DriverID())
		assert.True(t, b.DriverID().IsEqual(winner))
		require.NotNil(t, b.ClaimedAt())
		assert.Equal(t, at, *b.ClaimedAt())
	})

	t.Run("second claim observes already taken", func(t *testing.T) {
		b := newTestBatch(t, 5)
		offerWithOrders(t, b, 2)
		winner := kernel.NewUUID()
		require.NoError(t, b.Claim(winner, time.Now()))

		err := b.Claim(kernel.NewUUID(), time.Now())

		require.ErrorIs(t, err, errs.ErrPreconditionFailed)
		assert.Contains(t, err.Error(), "already taken")
		assert.True(t, b.DriverID().IsEqual(winner), "driver must never be overwritten by a later claim")
	})

	t.Run("cannot claim a collecting batch", func(t *testing.T) {
		b := newTestBatch(t, 5)
		require.NoError(t, b.AddOrder(kernel.NewUUID()))

		require.ErrorIs(t, b.Claim(kernel.NewUUID(), time.Now()), errs.ErrPreconditionFailed)
	})
}

func TestBatch_Reassign(t *testing.T) {
	t.Run("reassigns a dispatched batch", func(t *testing.T) {
		b := newTestBatch(t, 5)
		offerWithOrders(t, b, 1)
		require.NoError(t, b.Claim(kernel.NewUUID(), time.Now()))

		newDriver := kernel.NewUUID()
		require.NoError(t, b.Reassign(newDriver))
		assert.True(t, b.DriverID().IsEqual(newDriver))
	})

	t.Run("reassigns an in-progress batch", func(t *testing.T) {
		b := newTestBatch(t, 5)
		offerWithOrders(t, b, 1)
		require.NoError(t, b.Claim(kernel.NewUUID(), time.Now()))
		require.NoError(t, b.StartProgress())

		require.NoError(t, b.Reassign(kernel.NewUUID()))
	})

	t.Run("rejects reassignment before dispatch", func(t *testing.T) {
		b := newTestBatch(t, 5)
		offerWithOrders(t, b, 1)

		require.ErrorIs(t, b.Reassign(kernel.NewUUID()), errs.ErrPreconditionFailed)
	})
}

func TestBatch_Cancel(t *testing.T) {
	t.Run("cancels any non-terminal batch", func(t *testing.T) {
		b := newTestBatch(t, 5)

		require.NoError(t, b.Cancel())
		assert.Equal(t, batch.StatusCancelled, b.Status())
	})

	t.Run("rejects cancel on a terminal batch", func(t *testing.T) {
		b := newTestBatch(t, 5)
		require.NoError(t, b.Cancel())

		require.ErrorIs(t, b.Cancel(), errs.ErrPreconditionFailed)
	})
}

func TestBatch_StartProgress(t *testing.T) {
	b := newTestBatch(t, 5)
	offerWithOrders(t, b, 1)
	require.NoError(t, b.Claim(kernel.NewUUID(), time.Now()))

	require.NoError(t, b.StartProgress())
	assert.Equal(t, batch.StatusInProgress, b.Status())

	// second pickup in the same batch is a no-op
	require.NoError(t, b.StartProgress())
	assert.Equal(t, batch.StatusInProgress, b.Status())
}

func TestBatch_Recalculate(t *testing.T) {
	closedAt := time.Now()

	t.Run("closes completed when all delivered", func(t *testing.T) {
		b := newTestBatch(t, 5)
		offerWithOrders(t, b, 3)
		require.NoError(t, b.Claim(kernel.NewUUID(), time.Now()))
		require.NoError(t, b.StartProgress())

		require.NoError(t, b.Recalculate(3, 0, 3, closedAt))

		assert.Equal(t, batch.StatusCompleted, b.Status())
		assert.Equal(t, 3, b.TotalDelivered())
		assert.Zero(t, b.TotalFailed())
		require.NotNil(t, b.CompletedAt())
		assert.Equal(t, b.MemberCount(), b.TotalDelivered()+b.TotalFailed())
	})

	t.Run("closes partial when any member failed", func(t *testing.T) {
		b := newTestBatch(t, 5)
		offerWithOrders(t, b, 3)
		require.NoError(t, b.Claim(kernel.NewUUID(), time.Now()))
		require.NoError(t, b.StartProgress())

		require.NoError(t, b.Recalculate(2, 1, 3, closedAt))

		assert.Equal(t, batch.StatusPartialComplete, b.Status())
		assert.Equal(t, 2, b.TotalDelivered())
		assert.Equal(t, 1, b.TotalFailed())
	})

	t.Run("stays open while members are still moving", func(t *testing.T) {
		b := newTestBatch(t, 5)
		offerWithOrders(t, b, 3)
		require.NoError(t, b.Claim(kernel.NewUUID(), time.Now()))
		require.NoError(t, b.StartProgress())

		require.NoError(t, b.Recalculate(2, 0, 2, closedAt))

		assert.Equal(t, batch.StatusInProgress, b.Status())
		assert.Nil(t, b.CompletedAt())
	})

	t.Run("counts updated but status kept on cancelled batch", func(t *testing.T) {
		b := newTestBatch(t, 5)
		offerWithOrders(t, b, 2)
		require.NoError(t, b.Cancel())

		require.NoError(t, b.Recalculate(1, 1, 2, closedAt))

		assert.Equal(t, batch.StatusCancelled, b.Status())
	})

	t.Run("rejects counts exceeding member count", func(t *testing.T) {
		b := newTestBatch(t, 5)
		offerWithOrders(t, b, 2)

		require.ErrorIs(t, b.Recalculate(2, 1, 3, closedAt), errs.ErrValueIsOutOfRange)
	})
}

func TestRestoreBatch(t *testing.T) {
	t.Run("round-trips a claimed batch", func(t *testing.T) {
		original := newTestBatch(t, 5)
		members := offerWithOrders(t, original, 2)
		driver := kernel.NewUUID()
		require.NoError(t, original.Claim(driver, time.Now()))

		restored, err := batch.RestoreBatch(batch.RestoreBatchParams{
			ID:            original.ID(),
			BatchNumber:   original.BatchNumber(),
			KitchenID:     original.KitchenID(),
			ZoneID:        original.ZoneID(),
			MealWindow:    original.MealWindow(),
			BatchDate:     original.BatchDate(),
			WindowEndTime: original.WindowEndTime(),
			Capacity:      original.Capacity(),
			OrderIDs:      original.OrderIDs(),
			Status:        original.Status(),
			DriverID:      original.DriverID(),
			ClaimedAt:     original.ClaimedAt(),
		})

		require.NoError(t, err)
		assert.True(t, restored.IsEqual(original))
		assert.Equal(t, batch.StatusDispatched, restored.Status())
		assert.Equal(t, 1, restored.SequenceOf(members[0]))
		assert.Equal(t, 2, restored.SequenceOf(members[1]))
	})

	t.Run("rejects member list above capacity", func(t *testing.T) {
		_, err := batch.RestoreBatch(batch.RestoreBatchParams{
			ID:          kernel.NewUUID(),
			BatchNumber: "B1",
			KitchenID:   kernel.NewUUID(),
			ZoneID:      kernel.NewUUID(),
			MealWindow:  kernel.MealWindowDinner,
			Capacity:    1,
			OrderIDs:    []kernel.UUID{kernel.NewUUID(), kernel.NewUUID()},
			Status:      batch.StatusCollecting,
		})

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

func TestBatchStatus(t *testing.T) {
	t.Run("terminal statuses", func(t *testing.T) {
		for _, s := range []batch.Status{batch.StatusCompleted, batch.StatusPartialComplete, batch.StatusCancelled} {
			assert.True(t, s.IsTerminal(), "%s should be terminal", s)
		}
		for _, s := range []batch.Status{batch.StatusCollecting, batch.StatusReadyForDispatch, batch.StatusDispatched, batch.StatusInProgress} {
			assert.False(t, s.IsTerminal(), "%s should not be terminal", s)
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := batch.StatusFromString("OPEN")
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}
