package commands_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/assignment"
	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func placedOrder(t *testing.T) *order.Order {
	t.Helper()
	window := kernel.MealWindowLunch
	o, err := order.NewOrder(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		&window, testAddress(t), testItems(), fixtureTime, "customer",
	)
	require.NoError(t, err)
	return o
}

func TestUpdateOrderStatusCommandHandler_Handle_Accept(t *testing.T) {
	ctx := t.Context()
	o := placedOrder(t)

	cmd, err := commands.NewUpdateOrderStatusCommand(o.ID(), order.StatusAccepted, "kitchen-7", "")
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	notifier := new(MockNotifier)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Maybe()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("Notifier").Return(notifier).Once()

	orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once()
	orderRepo.On("Update", ctx, o).Return(nil).Once()
	notifier.On("Notify", ctx, mock.AnythingOfType("ports.Notification")).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewUpdateOrderStatusCommandHandler(factory)
	updated, err := handler.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, order.StatusAccepted, updated.Status())
	require.Len(t, updated.Timeline(), 2)
	assert.Equal(t, "kitchen-7", updated.Timeline()[1].Actor())
	uow.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
}

func TestUpdateOrderStatusCommandHandler_Handle_IllegalTransition(t *testing.T) {
	ctx := t.Context()
	o := placedOrder(t)

	cmd, err := commands.NewUpdateOrderStatusCommand(o.ID(), order.StatusReady, "kitchen-7", "")
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Maybe()
	uow.On("OrderRepository").Return(orderRepo).Once()

	orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewUpdateOrderStatusCommandHandler(factory)
	_, err = handler.Handle(ctx, cmd)
	require.Error(t, err)

	assert.Equal(t, order.StatusPlaced, o.Status())
	orderRepo.AssertNotCalled(t, "Update", ctx, mock.Anything)
	uow.AssertNotCalled(t, "Commit", ctx)
}

func TestUpdateOrderStatusCommandHandler_Handle_OrderNotFound(t *testing.T) {
	ctx := t.Context()
	missingID := kernel.NewUUID()

	cmd, err := commands.NewUpdateOrderStatusCommand(missingID, order.StatusAccepted, "kitchen-7", "")
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Maybe()
	uow.On("OrderRepository").Return(orderRepo).Once()

	orderRepo.On("Get", ctx, missingID).
		Return(nil, errs.NewObjectNotFoundError("order", missingID.String())).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewUpdateOrderStatusCommandHandler(factory)
	_, err = handler.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestUpdateOrderStatusCommandHandler_Handle_CancelDetachesFromCollectingBatch(t *testing.T) {
	ctx := t.Context()
	member := readyOrder(t, kernel.NewUUID(), kernel.NewUUID())
	b := collectingBatch(t, member.KitchenID(), member.ZoneID(), 15)
	require.NoError(t, b.AddOrder(member.ID()))
	require.NoError(t, member.AssignToBatch(b.ID()))

	cmd, err := commands.NewUpdateOrderStatusCommand(member.ID(), order.StatusCancelled, "kitchen-7", "out of stock")
	require.NoError(t, err)

	uow, orderRepo, batchRepo, assignmentRepo := adminUoW(t, ctx)
	notifier := new(MockNotifier)
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Notifier").Return(notifier).Once()
	notifier.On("Notify", ctx, mock.AnythingOfType("ports.Notification")).Return(nil).Once()

	orderRepo.On("Get", ctx, member.ID()).Return(member, nil).Once()
	orderRepo.On("Update", ctx, member).Return(nil).Times(2)
	assignmentRepo.On("GetOpenByOrder", ctx, member.ID()).
		Return(nil, errs.NewObjectNotFoundError("open assignment for order", member.ID().String())).Once()
	batchRepo.On("Get", ctx, b.ID()).Return(b, nil).Once()
	batchRepo.On("Update", ctx, b).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewUpdateOrderStatusCommandHandler(factory)
	cancelled, err := handler.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, order.StatusCancelled, cancelled.Status())
	assert.Nil(t, cancelled.BatchID())
	assert.Nil(t, cancelled.DriverID())
	assert.Equal(t, 0, b.MemberCount())
	assert.Equal(t, batch.StatusCollecting, b.Status())
	uow.AssertExpectations(t)
	batchRepo.AssertExpectations(t)
}

func TestUpdateOrderStatusCommandHandler_Handle_CancelClaimedOrderClosesAssignment(t *testing.T) {
	ctx := t.Context()
	driverID := kernel.NewUUID()
	kitchenID, zoneID := kernel.NewUUID(), kernel.NewUUID()
	member := readyOrder(t, kitchenID, zoneID)
	other := readyOrder(t, kitchenID, zoneID)
	b := claimedBatch(t, driverID, []*order.Order{member, other})
	require.NoError(t, member.AssignDriver(driverID))

	open, err := assignment.NewAssignment(
		kernel.NewUUID(), member.ID(), b.ID(), driverID, 1, fixtureTime.Add(10*time.Minute),
	)
	require.NoError(t, err)

	cmd, err := commands.NewUpdateOrderStatusCommand(member.ID(), order.StatusCancelled, "kitchen-7", "customer request")
	require.NoError(t, err)

	uow, orderRepo, batchRepo, assignmentRepo := adminUoW(t, ctx)
	notifier := new(MockNotifier)
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Notifier").Return(notifier).Once()
	notifier.On("Notify", ctx, mock.AnythingOfType("ports.Notification")).Return(nil).Once()

	orderRepo.On("Get", ctx, member.ID()).Return(member, nil).Once()
	orderRepo.On("Update", ctx, member).Return(nil).Once()
	orderRepo.On("GetAllInBatch", ctx, b.ID()).Return([]*order.Order{member, other}, nil).Once()
	assignmentRepo.On("GetOpenByOrder", ctx, member.ID()).Return(open, nil).Once()
	assignmentRepo.On("Update", ctx, open).Return(nil).Once()
	batchRepo.On("Get", ctx, b.ID()).Return(b, nil).Times(2)
	batchRepo.On("Update", ctx, b).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewUpdateOrderStatusCommandHandler(factory)
	cancelled, err := handler.Handle(ctx, cmd)
	require.NoError(t, err)

	// the trip keeps the membership for its history, but the driver's
	// assignment is closed and the batch counters reflect the loss
	assert.Equal(t, order.StatusCancelled, cancelled.Status())
	require.NotNil(t, cancelled.BatchID())
	assert.Equal(t, assignment.StatusCancelled, open.Status())
	assert.Equal(t, 2, b.MemberCount())
	assert.Equal(t, 1, b.TotalFailed())
	assert.Equal(t, batch.StatusDispatched, b.Status())
	uow.AssertExpectations(t)
	assignmentRepo.AssertExpectations(t)
}
