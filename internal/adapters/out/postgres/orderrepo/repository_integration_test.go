package orderrepo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"buyback/internal/adapters/out/postgres/orderrepo"
	"buyback/internal/core/domain/model/order"
	"buyback/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OrderRepositoryIntegrationTestSuite runs the document store against a real
// PostgreSQL container.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
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

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}, &orderrepo.ActivityLogDTO{}))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders, order_activity_log").Error)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestCreateAndGet() {
	ctx := context.Background()
	at := time.Date(2024, 10, 2, 15, 4, 5, 0, time.UTC)
	entry := order.NewActivityLogEntry(order.LogStatus, "Status changed to order_pending", map[string]any{"status": "order_pending"}).Normalize(at)

	err := suite.repository.Create(ctx, 100001, suite.document("order_pending"), []order.ActivityLogEntry{entry})
	suite.Require().NoError(err)

	stored, err := suite.repository.Get(ctx, 100001)
	suite.Require().NoError(err)
	suite.Equal(int64(1), stored.Version)
	suite.Equal("order_pending", stored.Document["status"])
	suite.Equal("cust-1", stored.Document["customerId"])
	suite.Equal(float64(250), stored.Document["quote"])
	suite.Require().Len(stored.Log, 1)
	suite.Equal(entry.ID, stored.Log[0].ID)
	suite.Equal("order_pending", stored.Log[0].Metadata["status"])
	suite.True(at.Equal(stored.Log[0].At))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestCreate_ExistingID_VersionConflict() {
	ctx := context.Background()
	suite.Require().NoError(suite.repository.Create(ctx, 100001, suite.document("order_pending"), nil))

	err := suite.repository.Create(ctx, 100001, suite.document("order_pending"), nil)
	suite.ErrorIs(err, errs.ErrVersionConflict)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_Unknown_NotFound() {
	_, err := suite.repository.Get(context.Background(), 42)
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestCommit_AppendsLogAndBumpsVersion() {
	ctx := context.Background()
	suite.Require().NoError(suite.repository.Create(ctx, 100001, suite.document("order_pending"), []order.ActivityLogEntry{
		order.StatusChangedEntry(order.OrderPending).Normalize(time.Now()),
	}))

	err := suite.repository.Commit(ctx, 100001, 1, suite.document("label_generated"), []order.ActivityLogEntry{
		order.StatusChangedEntry(order.LabelGenerated).Normalize(time.Now()),
		order.NewActivityLogEntry(order.LogLabel, "Label created", nil).Normalize(time.Now()),
	})
	suite.Require().NoError(err)

	stored, err := suite.repository.Get(ctx, 100001)
	suite.Require().NoError(err)
	suite.Equal(int64(2), stored.Version)
	suite.Equal("label_generated", stored.Document["status"])
	suite.Require().Len(stored.Log, 3)
	suite.Equal(order.LogStatus, stored.Log[0].Type)
	suite.Equal(order.LogLabel, stored.Log[2].Type)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestCommit_StaleVersion_NothingChanges() {
	ctx := context.Background()
	suite.Require().NoError(suite.repository.Create(ctx, 100001, suite.document("order_pending"), nil))
	suite.Require().NoError(suite.repository.Commit(ctx, 100001, 1, suite.document("kit_sent"), nil))

	err := suite.repository.Commit(ctx, 100001, 1, suite.document("cancelled"), []order.ActivityLogEntry{
		order.StatusChangedEntry(order.Cancelled).Normalize(time.Now()),
	})
	suite.ErrorIs(err, errs.ErrVersionConflict)

	stored, err := suite.repository.Get(ctx, 100001)
	suite.Require().NoError(err)
	suite.Equal("kit_sent", stored.Document["status"])
	suite.Empty(stored.Log)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestCommit_Unknown_NotFound() {
	err := suite.repository.Commit(context.Background(), 7, 1, suite.document("kit_sent"), nil)
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestCommit_ConcurrentWriters_OneWinsPerVersion() {
	ctx := context.Background()
	suite.Require().NoError(suite.repository.Create(ctx, 100001, suite.document("order_pending"), nil))

	const writers = 8
	var wg sync.WaitGroup
	results := make(chan error, writers)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- suite.repository.Commit(ctx, 100001, 1, suite.document("kit_sent"), []order.ActivityLogEntry{
				order.StatusChangedEntry(order.KitSent).Normalize(time.Now()),
			})
		}()
	}
	wg.Wait()
	close(results)

	var won int
	for err := range results {
		if err == nil {
			won++
			continue
		}
		suite.ErrorIs(err, errs.ErrVersionConflict)
	}
	suite.Equal(1, won)

	stored, err := suite.repository.Get(ctx, 100001)
	suite.Require().NoError(err)
	suite.Equal(int64(2), stored.Version)
	suite.Len(stored.Log, 1)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestListByStatuses() {
	ctx := context.Background()
	suite.Require().NoError(suite.repository.Create(ctx, 100003, suite.document("kit_sent"), nil))
	suite.Require().NoError(suite.repository.Create(ctx, 100001, suite.document("kit_shipped"), nil))
	suite.Require().NoError(suite.repository.Create(ctx, 100002, suite.document("completed"), nil))

	ids, err := suite.repository.ListByStatuses(ctx, order.KitSent.Spellings(), 0)
	suite.Require().NoError(err)
	suite.Equal([]int64{100001, 100003}, ids)

	ids, err = suite.repository.ListByStatuses(ctx, order.KitSent.Spellings(), 1)
	suite.Require().NoError(err)
	suite.Equal([]int64{100001}, ids)
}

func (suite *OrderRepositoryIntegrationTestSuite) document(status string) map[string]any {
	return map[string]any{
		"status":     status,
		"customerId": "cust-1",
		"quote":      250,
	}
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
