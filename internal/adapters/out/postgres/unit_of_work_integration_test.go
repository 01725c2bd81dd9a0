package postgres_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/assignmentrepo"
	"fulfillment/internal/adapters/out/postgres/batchrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/outboxrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite verifies that repositories and the outbox
// notifier share one transaction: a rollback discards the state change and
// the notification it produced together.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *pgcontainer.PostgresContainer
	db        *gorm.DB
	factory   *postgres.GormUnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:15-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("testuser"),
		pgcontainer.WithPassword("testpass"),
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

	suite.Require().NoError(db.AutoMigrate(
		&orderrepo.OrderDTO{}, &orderrepo.TimelineEntryDTO{},
		&batchrepo.BatchDTO{}, &batchrepo.BatchMemberDTO{},
		&assignmentrepo.AssignmentDTO{}, &assignmentrepo.LocationSampleDTO{},
		&outboxrepo.OutboxMessageDTO{},
	))
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(
		"TRUNCATE TABLE orders, order_timeline_entries, batches, batch_members, assignments, assignment_locations, outbox_messages").Error)
	suite.factory = postgres.NewGormUnitOfWorkFactory(suite.db)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_PersistsOrderAndNotification() {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	testOrder := suite.createTestOrder()
	suite.Require().NoError(uow.OrderRepository().Add(ctx, testOrder))

	customerID := testOrder.CustomerID()
	suite.Require().NoError(uow.Notifier().Notify(ctx, ports.Notification{
		RecipientID: &customerID,
		Kind:        ports.NotificationKindOrderStatus,
		Title:       "Order placed",
		Body:        "Your order has been placed",
	}))

	suite.Require().NoError(uow.Commit(ctx))

	suite.Equal(int64(1), suite.count("orders"))
	suite.Equal(int64(1), suite.count("outbox_messages"))

	pending, err := outboxrepo.NewGormOutboxRepository(suite.db).GetPending(ctx, 10)
	suite.Require().NoError(err)
	suite.Require().Len(pending, 1)
	suite.Equal(ports.NotificationKindOrderStatus, pending[0].Kind)
	suite.Equal(outboxrepo.StatusPending, pending[0].Status)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollback_DiscardsOrderAndNotification() {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	testOrder := suite.createTestOrder()
	suite.Require().NoError(uow.OrderRepository().Add(ctx, testOrder))
	suite.Require().NoError(uow.Notifier().Notify(ctx, ports.Notification{
		RecipientRole: ports.RecipientRoleDrivers,
		Kind:          ports.NotificationKindBatchAvailable,
		Title:         "Batch available",
	}))

	suite.Require().NoError(uow.Rollback(ctx))

	suite.Equal(int64(0), suite.count("orders"))
	suite.Equal(int64(0), suite.count("outbox_messages"))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_WithoutBegin_Fails() {
	uow := suite.factory.Create()
	suite.ErrorIs(uow.Commit(context.Background()), gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestMarkPublished_RemovesFromPending() {
	ctx := context.Background()
	notifier := outboxrepo.NewGormOutboxNotifier(suite.db)
	suite.Require().NoError(notifier.Notify(ctx, ports.Notification{
		RecipientRole: ports.RecipientRoleDrivers,
		Kind:          ports.NotificationKindBatchAvailable,
	}))

	outbox := outboxrepo.NewGormOutboxRepository(suite.db)
	pending, err := outbox.GetPending(ctx, 10)
	suite.Require().NoError(err)
	suite.Require().Len(pending, 1)

	suite.Require().NoError(outbox.MarkPublished(ctx, pending[0].ID, time.Now().UTC()))

	pending, err = outbox.GetPending(ctx, 10)
	suite.Require().NoError(err)
	suite.Empty(pending)
}

func (suite *UnitOfWorkIntegrationTestSuite) count(table string) int64 {
	var n int64
	suite.Require().NoError(suite.db.Table(table).Count(&n).Error)
	return n
}

func (suite *UnitOfWorkIntegrationTestSuite) createTestOrder() *order.Order {
	address, err := kernel.NewAddress("4 Church Street", "", "Bengaluru", "560001")
	suite.Require().NoError(err)

	customerID := kernel.NewUUID()
	window := kernel.MealWindowDinner
	testOrder, err := order.NewOrder(
		kernel.NewUUID(), customerID, kernel.NewUUID(), kernel.NewUUID(),
		&window, address,
		json.RawMessage(`{"items":[{"sku":"biryani","qty":1}]}`),
		time.Now().UTC(), customerID.String(),
	)
	suite.Require().NoError(err)
	return testOrder
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
