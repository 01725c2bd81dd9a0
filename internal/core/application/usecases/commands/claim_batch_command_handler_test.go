package commands_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestClaimBatchCommandHandler_Handle_Winner(t *testing.T) {
	ctx := t.Context()
	kitchenID, zoneID, driverID := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()

	first := readyOrder(t, kitchenID, zoneID)
	second := readyOrder(t, kitchenID, zoneID)
	claimed := claimedBatch(t, driverID, []*order.Order{first, second})

	cmd, err := commands.NewClaimBatchCommand(claimed.ID(), driverID)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	batchRepo := new(MockBatchRepository)
	assignmentRepo := new(MockAssignmentRepository)
	notifier := new(MockNotifier)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Maybe()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("BatchRepository").Return(batchRepo)
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("AssignmentRepository").Return(assignmentRepo)
	uow.On("Notifier").Return(notifier)

	batchRepo.On("Claim", ctx, claimed.ID(), driverID, mock.AnythingOfType("time.Time")).
		Return(claimed, nil).Once()
	orderRepo.On("GetAllInBatch", ctx, claimed.ID()).
		Return([]*order.Order{first, second}, nil).Once()
	orderRepo.On("Update", ctx, mock.AnythingOfType("*order.Order")).Return(nil).Twice()

	var created []*assignment.Assignment
	assignmentRepo.On("Add", ctx, mock.AnythingOfType("*assignment.Assignment")).
		Run(func(args mock.Arguments) {
			created = append(created, args.Get(1).(*assignment.Assignment))
		}).
		Return(nil).Twice()

	var notified []ports.Notification
	notifier.On("Notify", ctx, mock.AnythingOfType("ports.Notification")).
		Run(func(args mock.Arguments) {
			notified = append(notified, args.Get(1).(ports.Notification))
		}).
		Return(nil).Twice()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewClaimBatchCommandHandler(factory)
	got, err := handler.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, batch.StatusDispatched, got.Status())

	// driver stamped on both member orders
	require.NotNil(t, first.DriverID())
	require.NotNil(t, second.DriverID())
	assert.True(t, first.DriverID().IsEqual(driverID))

	// one assignment per order, sequence follows batch member order
	require.Len(t, created, 2)
	assert.True(t, created[0].OrderID().IsEqual(first.ID()))
	assert.Equal(t, 1, created[0].Sequence())
	assert.Equal(t, 2, created[1].Sequence())
	assert.Regexp(t, `^\d{6}$`, created[0].Proof().Secret())

	// each customer told about their driver, with the OTP to share
	require.Len(t, notified, 2)
	assert.Equal(t, ports.NotificationKindDriverAssigned, notified[0].Kind)

	batchRepo.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
	assignmentRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestClaimBatchCommandHandler_Handle_Loser(t *testing.T) {
	ctx := t.Context()
	batchID, driverID := kernel.NewUUID(), kernel.NewUUID()

	cmd, err := commands.NewClaimBatchCommand(batchID, driverID)
	require.NoError(t, err)

	batchRepo := new(MockBatchRepository)
	uow := new(MockUoW)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	uow.On("BatchRepository").Return(batchRepo)
	batchRepo.On("Claim", ctx, batchID, driverID, mock.AnythingOfType("time.Time")).
		Return(nil, errs.NewPreconditionFailedError("claim batch", "batch already taken")).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewClaimBatchCommandHandler(factory)
	_, err = handler.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrPreconditionFailed)
	uow.AssertNotCalled(t, "Commit", ctx)
}

func TestClaimBatchCommandHandler_Handle_ValidationError(t *testing.T) {
	handler := commands.NewClaimBatchCommandHandler(new(MockUoWFactory))
	_, err := handler.Handle(t.Context(), commands.ClaimBatchCommand{})
	require.Error(t, err)
}
