package orderrepo_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

// OrderRepositoryIntegrationTestSuite provides integration tests for OrderRepository
// using PostgreSQL containers to verify database persistence behavior.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}, &orderrepo.TimelineEntryDTO{}))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders, order_timeline_entries").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Maybe()
	suite.repository = orderrepo.NewGormOrderRepository(suite.db, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAddAndGet_RoundTrip() {
	ctx := context.Background()
	testOrder := suite.createTestOrder(nil)

	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	restored, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.True(restored.IsEqual(testOrder))
	suite.Equal(order.StatusPlaced, restored.Status())
	suite.Equal(testOrder.CustomerID(), restored.CustomerID())
	suite.Equal(testOrder.Address(), restored.Address())
	suite.Len(restored.Timeline(), 1)
	suite.Equal(order.StatusPlaced, restored.Timeline()[0].Status())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_AppendsTimeline() {
	ctx := context.Background()
	testOrder := suite.createTestOrder(nil)
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	now := time.Now().UTC()
	suite.Require().NoError(testOrder.TransitionTo(order.StatusAccepted, now, "kitchen-1", ""))
	suite.Require().NoError(suite.repository.Update(ctx, testOrder))
	suite.Require().NoError(testOrder.TransitionTo(order.StatusPreparing, now.Add(time.Minute), "kitchen-1", ""))
	suite.Require().NoError(suite.repository.Update(ctx, testOrder))

	restored, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.StatusPreparing, restored.Status())
	suite.Require().Len(restored.Timeline(), 3)
	suite.Equal(order.StatusAccepted, restored.Timeline()[1].Status())
	suite.Equal("kitchen-1", restored.Timeline()[1].Actor())
	suite.NotNil(restored.AcceptedAt())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_ClearsBatchOnDetach() {
	ctx := context.Background()
	window := kernel.MealWindowLunch
	testOrder := suite.createTestOrder(&window)
	suite.walkToReady(testOrder)
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	batchID := kernel.NewUUID()
	suite.Require().NoError(testOrder.AssignToBatch(batchID))
	suite.Require().NoError(suite.repository.Update(ctx, testOrder))

	testOrder.DetachFromBatch()
	suite.Require().NoError(suite.repository.Update(ctx, testOrder))

	restored, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Nil(restored.BatchID())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_MissingOrder_ReturnsNotFound() {
	ctx := context.Background()
	testOrder := suite.createTestOrder(nil)

	err := suite.repository.Update(ctx, testOrder)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_MissingOrder_ReturnsNotFound() {
	ctx := context.Background()

	_, err := suite.repository.Get(ctx, kernel.NewUUID())
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetAllBatchable_FiltersByWindowAndKitchen() {
	ctx := context.Background()
	lunch := kernel.MealWindowLunch
	dinner := kernel.MealWindowDinner

	readyLunch := suite.createTestOrder(&lunch)
	suite.walkToReady(readyLunch)
	readyDinner := suite.createTestOrder(&dinner)
	suite.walkToReady(readyDinner)
	stillPlaced := suite.createTestOrder(&lunch)

	suite.Require().NoError(suite.repository.Add(ctx, readyLunch))
	suite.Require().NoError(suite.repository.Add(ctx, readyDinner))
	suite.Require().NoError(suite.repository.Add(ctx, stillPlaced))

	batchable, err := suite.repository.GetAllBatchable(ctx, &lunch, nil)
	suite.Require().NoError(err)
	suite.Require().Len(batchable, 1)
	suite.True(batchable[0].IsEqual(readyLunch))

	otherKitchen := kernel.NewUUID()
	batchable, err = suite.repository.GetAllBatchable(ctx, &lunch, &otherKitchen)
	suite.Require().NoError(err)
	suite.Empty(batchable)
}

// TestGetAllBatchable_IncludesAllCollectableStatuses verifies the sweep
// collects orders as soon as the kitchen accepts them, not only once the
// food is ready.
func (suite *OrderRepositoryIntegrationTestSuite) TestGetAllBatchable_IncludesAllCollectableStatuses() {
	ctx := context.Background()
	lunch := kernel.MealWindowLunch
	now := time.Now().UTC()

	accepted := suite.createTestOrder(&lunch)
	suite.Require().NoError(accepted.TransitionTo(order.StatusAccepted, now, "kitchen", ""))
	preparing := suite.createTestOrder(&lunch)
	suite.Require().NoError(preparing.TransitionTo(order.StatusAccepted, now, "kitchen", ""))
	suite.Require().NoError(preparing.TransitionTo(order.StatusPreparing, now, "kitchen", ""))
	ready := suite.createTestOrder(&lunch)
	suite.walkToReady(ready)
	stillPlaced := suite.createTestOrder(&lunch)

	for _, o := range []*order.Order{accepted, preparing, ready, stillPlaced} {
		suite.Require().NoError(suite.repository.Add(ctx, o))
	}

	batchable, err := suite.repository.GetAllBatchable(ctx, &lunch, nil)
	suite.Require().NoError(err)
	suite.Require().Len(batchable, 3)

	statuses := make(map[order.Status]bool, len(batchable))
	for _, o := range batchable {
		statuses[o.Status()] = true
	}
	suite.True(statuses[order.StatusAccepted])
	suite.True(statuses[order.StatusPreparing])
	suite.True(statuses[order.StatusReady])
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetAllInBatch() {
	ctx := context.Background()
	lunch := kernel.MealWindowLunch
	batchID := kernel.NewUUID()

	first := suite.createTestOrder(&lunch)
	suite.walkToReady(first)
	suite.Require().NoError(first.AssignToBatch(batchID))
	second := suite.createTestOrder(&lunch)
	suite.walkToReady(second)
	suite.Require().NoError(second.AssignToBatch(batchID))

	suite.Require().NoError(suite.repository.Add(ctx, first))
	suite.Require().NoError(suite.repository.Add(ctx, second))

	members, err := suite.repository.GetAllInBatch(ctx, batchID)
	suite.Require().NoError(err)
	suite.Len(members, 2)
}

func (suite *OrderRepositoryIntegrationTestSuite) createTestOrder(window *kernel.MealWindow) *order.Order {
	address, err := kernel.NewAddress("12 Lake View Road", "opposite metro gate 2", "Bengaluru", "560034")
	suite.Require().NoError(err)

	customerID := kernel.NewUUID()
	testOrder, err := order.NewOrder(
		kernel.NewUUID(), customerID, kernel.NewUUID(), kernel.NewUUID(),
		window, address,
		json.RawMessage(`{"items":[{"sku":"thali-veg","qty":2}]}`),
		time.Now().UTC(), customerID.String(),
	)
	suite.Require().NoError(err)
	return testOrder
}

func (suite *OrderRepositoryIntegrationTestSuite) walkToReady(o *order.Order) {
	now := time.Now().UTC()
	suite.Require().NoError(o.TransitionTo(order.StatusAccepted, now, "kitchen", ""))
	suite.Require().NoError(o.TransitionTo(order.StatusPreparing, now, "kitchen", ""))
	suite.Require().NoError(o.TransitionTo(order.StatusReady, now, "kitchen", ""))
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
