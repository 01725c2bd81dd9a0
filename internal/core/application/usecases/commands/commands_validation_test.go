package commands_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/require"
)

func TestNewPlaceOrderCommand_Validation(t *testing.T) {
	t.Run("rejects missing items", func(t *testing.T) {
		_, err := commands.NewPlaceOrderCommand(
			kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			nil, testAddress(t), nil,
		)
		require.ErrorIs(t, err, commands.ErrItemsAreRequired)
	})

	t.Run("rejects empty order id", func(t *testing.T) {
		_, err := commands.NewPlaceOrderCommand(
			kernel.UUID{}, kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
			nil, testAddress(t), testItems(),
		)
		require.Error(t, err)
	})

	t.Run("zero value fails Validate", func(t *testing.T) {
		var cmd commands.PlaceOrderCommand
		require.ErrorIs(t, cmd.Validate(), commands.ErrPlaceOrderCommandIsNotConstructed)
	})
}

func TestNewUpdateOrderStatusCommand_Validation(t *testing.T) {
	t.Run("rejects delivery-phase status", func(t *testing.T) {
		_, err := commands.NewUpdateOrderStatusCommand(
			kernel.NewUUID(), order.StatusOutForDelivery, "kitchen-1", "",
		)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects missing actor", func(t *testing.T) {
		_, err := commands.NewUpdateOrderStatusCommand(
			kernel.NewUUID(), order.StatusAccepted, "", "",
		)
		require.ErrorIs(t, err, commands.ErrActorIsRequired)
	})
}

func TestNewUpdateDeliveryStatusCommand_Validation(t *testing.T) {
	t.Run("rejects driver-side cancellation", func(t *testing.T) {
		_, err := commands.NewUpdateDeliveryStatusCommand(
			kernel.NewUUID(), kernel.NewUUID(), assignment.StatusCancelled,
			nil, "", "", nil, nil,
		)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects half a location", func(t *testing.T) {
		lat := 12.9
		_, err := commands.NewUpdateDeliveryStatusCommand(
			kernel.NewUUID(), kernel.NewUUID(), assignment.StatusEnRoute,
			nil, "", "", &lat, nil,
		)
		require.ErrorIs(t, err, commands.ErrLocationIsIncomplete)
	})

	t.Run("rejects unknown proof type", func(t *testing.T) {
		bogus := assignment.ProofType("PIGEON")
		_, err := commands.NewUpdateDeliveryStatusCommand(
			kernel.NewUUID(), kernel.NewUUID(), assignment.StatusDelivered,
			&bogus, "123456", "", nil, nil,
		)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestNewCancelBatchCommand_Validation(t *testing.T) {
	t.Run("rejects missing reason", func(t *testing.T) {
		_, err := commands.NewCancelBatchCommand(kernel.NewUUID(), "ops-1", "")
		require.ErrorIs(t, err, commands.ErrReasonIsRequired)
	})
}

func TestNewReassignBatchCommand_Validation(t *testing.T) {
	t.Run("rejects empty driver", func(t *testing.T) {
		_, err := commands.NewReassignBatchCommand(kernel.NewUUID(), kernel.UUID{}, "ops-1", "breakdown")
		require.Error(t, err)
	})
}
