package cmd

import (
	"context"
	"errors"
	"fmt"

	httpin "buyback/internal/adapters/in/http"
	"buyback/internal/adapters/out/carrier"
	"buyback/internal/adapters/out/kafka"
	"buyback/internal/adapters/out/memory"
	"buyback/internal/adapters/out/postgres"
	"buyback/internal/adapters/out/postgres/counterrepo"
	"buyback/internal/adapters/out/postgres/orderrepo"
	"buyback/internal/adapters/out/postgres/printjobrepo"
	"buyback/internal/adapters/out/postgres/promorepo"
	"buyback/internal/adapters/out/redis"
	"buyback/internal/core/application/recordstore"
	"buyback/internal/core/application/sequence"
	"buyback/internal/core/application/usecases/commands"
	"buyback/internal/core/application/usecases/queries"
	"buyback/internal/core/domain/model/kernel"
	"buyback/internal/core/domain/services"
	"buyback/internal/core/ports"
	"buyback/internal/jobs"

	"go.uber.org/zap"
)

// CompositionRoot owns the adapters of the process and builds the use case
// handlers on top of them.
type CompositionRoot struct {
	cfg    Config
	logger *zap.Logger
	clock  kernel.Clock

	orders    ports.OrderDocumentStore
	counters  ports.CounterStore
	promos    ports.PromoStore
	printJobs ports.PrintJobRepository
	mirror    ports.CustomerMirror
	notifier  ports.Notifier

	store     *recordstore.Store
	allocator *sequence.Allocator

	closers []func() error
}

// NewCompositionRoot connects the configured backends. Postgres, redis and
// kafka are each replaced by an in-memory adapter when their setting is
// empty.
func NewCompositionRoot(ctx context.Context, cfg Config, logger *zap.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:    cfg,
		logger: logger,
		clock:  kernel.NewSystemClock(),
	}

	if err := c.openStores(); err != nil {
		return nil, err
	}
	if err := c.openMirror(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	c.openNotifier()

	c.store = recordstore.New(c.orders, c.mirror, c.clock, logger)
	c.allocator = sequence.NewAllocator(c.counters, c.promos, c.printJobs, c.clock, logger,
		sequence.WithSeed(sequence.CounterOrders, cfg.OrderSequenceSeed))

	if err := c.seedPromoCodes(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *CompositionRoot) seedPromoCodes(ctx context.Context) error {
	for _, code := range c.cfg.PromoCodes {
		created, err := c.allocator.SeedPromo(ctx, code)
		if err != nil {
			return fmt.Errorf("seed promo code %s: %w", code.Code(), err)
		}
		if !created {
			c.logger.Debug("promo code already stored", zap.String("code", code.Code()))
		}
	}
	return nil
}

func (c *CompositionRoot) openStores() error {
	if c.cfg.DBHost == "" {
		c.logger.Warn("DB_HOST is empty, orders are kept in memory")
		c.orders = memory.NewOrderStore()
		c.counters = memory.NewCounterStore()
		c.promos = memory.NewPromoStore()
		c.printJobs = memory.NewPrintJobRepository()
		return nil
	}

	settings := postgres.ConnectionSettings{
		Host:     c.cfg.DBHost,
		Port:     c.cfg.DBPort,
		User:     c.cfg.DBUser,
		Password: c.cfg.DBPassword,
		Name:     c.cfg.DBName,
		SslMode:  c.cfg.DBSslMode,
	}
	db, err := postgres.Open(settings.DSN())
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	c.closers = append(c.closers, sqlDB.Close)

	c.orders = orderrepo.NewGormOrderRepository(db)
	c.counters = counterrepo.NewGormCounterRepository(db)
	c.promos = promorepo.NewGormPromoRepository(db)
	c.printJobs = printjobrepo.NewGormPrintJobRepository(db)
	return nil
}

func (c *CompositionRoot) openMirror(ctx context.Context) error {
	if c.cfg.RedisAddr == "" {
		c.mirror = memory.NewCustomerMirror()
		return nil
	}
	mirror, err := redis.NewCustomerMirror(ctx, c.cfg.RedisAddr, c.logger)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	c.closers = append(c.closers, mirror.Close)
	c.mirror = mirror
	return nil
}

func (c *CompositionRoot) openNotifier() {
	if len(c.cfg.KafkaBrokers) == 0 {
		c.notifier = memory.NewNotifier(c.logger)
		return
	}
	notifier := kafka.NewNotifier(c.cfg.KafkaBrokers, c.cfg.KafkaNotificationsTopic, c.logger)
	c.closers = append(c.closers, notifier.Close)
	c.notifier = notifier
}

// Close releases the connections in reverse order of opening.
func (c *CompositionRoot) Close() error {
	var err error
	for i := len(c.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, c.closers[i]())
	}
	c.closers = nil
	return err
}

func (c *CompositionRoot) primaryTracking() ports.TrackingProvider {
	return carrier.NewTrackingClient(carrier.Config{
		Name:       "tracking-primary",
		BaseURL:    c.cfg.TrackingPrimaryURL,
		APIKey:     c.cfg.TrackingPrimaryAPIKey,
		KeySetting: "TRACKING_PRIMARY_API_KEY",
		Timeout:    c.cfg.ProviderTimeout,
	}, carrier.DefaultTrackingPath, nil)
}

// fallbackTracking is nil unless a fallback endpoint is configured.
func (c *CompositionRoot) fallbackTracking() ports.TrackingProvider {
	if c.cfg.TrackingFallbackURL == "" {
		return nil
	}
	return carrier.NewTrackingClient(carrier.Config{
		Name:       "tracking-fallback",
		BaseURL:    c.cfg.TrackingFallbackURL,
		APIKey:     c.cfg.TrackingFallbackAPIKey,
		KeySetting: "TRACKING_FALLBACK_API_KEY",
		Timeout:    c.cfg.ProviderTimeout,
	}, carrier.DefaultTrackingPath, nil)
}

func (c *CompositionRoot) labelProvider() ports.LabelProvider {
	return carrier.NewLabelClient(carrier.Config{
		Name:       "labels",
		BaseURL:    c.cfg.LabelProviderURL,
		APIKey:     c.cfg.LabelProviderAPIKey,
		KeySetting: "LABEL_PROVIDER_API_KEY",
		Timeout:    c.cfg.ProviderTimeout,
	}, nil)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.store, c.allocator, c.logger)
}

func (c *CompositionRoot) CreateUpdateOrderStatusCommandHandler() commands.UpdateOrderStatusCommandHandler {
	return commands.NewUpdateOrderStatusCommandHandler(c.store, c.logger)
}

func (c *CompositionRoot) CreateGenerateLabelCommandHandler() commands.GenerateLabelCommandHandler {
	return commands.NewGenerateLabelCommandHandler(c.store, c.allocator, c.labelProvider(),
		c.cfg.LabelProfiles, c.clock, c.logger)
}

func (c *CompositionRoot) CreateVoidLabelsCommandHandler() commands.VoidLabelsCommandHandler {
	return commands.NewVoidLabelsCommandHandler(c.store, c.labelProvider(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateRefreshTrackingCommandHandler() commands.RefreshTrackingCommandHandler {
	return commands.NewRefreshTrackingCommandHandler(
		c.store,
		services.NewDirectionResolver(c.cfg.DefaultCarrierCode),
		services.NewTransitionEngine(),
		c.primaryTracking(),
		c.fallbackTracking(),
		c.notifier,
		c.clock,
		c.logger,
	)
}

func (c *CompositionRoot) CreateCreatePrintJobCommandHandler() commands.CreatePrintJobCommandHandler {
	return commands.NewCreatePrintJobCommandHandler(c.store, c.allocator, c.logger)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.orders)
}

func (c *CompositionRoot) CreateGetPromoCodeQueryHandler() queries.GetPromoCodeQueryHandler {
	return queries.NewGetPromoCodeQueryHandler(c.promos)
}

func (c *CompositionRoot) CreateGetCustomerOrdersQueryHandler() queries.GetCustomerOrdersQueryHandler {
	return queries.NewGetCustomerOrdersQueryHandler(c.mirror)
}

func (c *CompositionRoot) CreateGetPrintJobQueryHandler() queries.GetPrintJobQueryHandler {
	return queries.NewGetPrintJobQueryHandler(c.printJobs)
}

func (c *CompositionRoot) CreateListPrintJobsQueryHandler() queries.ListPrintJobsQueryHandler {
	return queries.NewListPrintJobsQueryHandler(c.printJobs)
}

func (c *CompositionRoot) CreateGetTrackableOrdersQueryHandler() queries.GetTrackableOrdersQueryHandler {
	return queries.NewGetTrackableOrdersQueryHandler(c.orders)
}

func (c *CompositionRoot) CreateServer() *httpin.Server {
	return httpin.NewServer(httpin.CommandHandlers{
		CreateOrder:       c.CreateCreateOrderCommandHandler(),
		UpdateOrderStatus: c.CreateUpdateOrderStatusCommandHandler(),
		GenerateLabel:     c.CreateGenerateLabelCommandHandler(),
		VoidLabels:        c.CreateVoidLabelsCommandHandler(),
		RefreshTracking:   c.CreateRefreshTrackingCommandHandler(),
		CreatePrintJob:    c.CreateCreatePrintJobCommandHandler(),
	}, httpin.QueryHandlers{
		GetOrder:          c.CreateGetOrderQueryHandler(),
		GetPromoCode:      c.CreateGetPromoCodeQueryHandler(),
		GetCustomerOrders: c.CreateGetCustomerOrdersQueryHandler(),
		GetPrintJob:       c.CreateGetPrintJobQueryHandler(),
		ListPrintJobs:     c.CreateListPrintJobsQueryHandler(),
	}, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	refresh := c.CreateRefreshTrackingCommandHandler()
	tracking := jobs.NewTrackingRefreshJob(
		c.CreateGetTrackableOrdersQueryHandler(),
		&refresh,
		c.cfg.TrackingPollSchedule,
		2*c.cfg.ProviderTimeout,
		c.logger,
	)
	return jobs.NewJobManager(tracking)
}
