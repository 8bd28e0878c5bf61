package cmd

import (
	"context"
	"fmt"
	"time"

	httpin "github.com/fxavier/mozdelivery-api-sub003/internal/adapters/in/http"
	awsout "github.com/fxavier/mozdelivery-api-sub003/internal/adapters/out/aws"
	"github.com/fxavier/mozdelivery-api-sub003/internal/adapters/out/eventbus"
	"github.com/fxavier/mozdelivery-api-sub003/internal/adapters/out/postgres"
	"github.com/fxavier/mozdelivery-api-sub003/internal/adapters/out/postgres/courierrepo"
	"github.com/fxavier/mozdelivery-api-sub003/internal/adapters/out/postgres/workflowrepo"
	"github.com/fxavier/mozdelivery-api-sub003/internal/adapters/out/workflowrules"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/application/dccsecurity"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/application/usecases/commands"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/application/usecases/queries"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/courier"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/services"
	"github.com/fxavier/mozdelivery-api-sub003/internal/jobs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg    Config
	logger *zap.Logger
	gormDB *gorm.DB
	clock  func() time.Time

	dispatcher   *eventbus.Dispatcher
	uowFactory   *postgres.GormUnitOfWorkFactory
	registry     *workflowrules.Registry
	security     *dccsecurity.Service
	stateMachine *services.OrderStateMachine
	codes        *services.DCCGenerationService
}

// NewCompositionRoot wires the shared services. Workflow rules are loaded
// once here so the first request already sees merchant overrides.
func NewCompositionRoot(ctx context.Context, cfg Config, gormDB *gorm.DB, log *zap.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:    cfg,
		logger: log,
		gormDB: gormDB,
		clock:  time.Now,
	}

	registry, err := workflowrules.NewRegistry(workflowrepo.NewGormWorkflowRulesRepository(gormDB), log)
	if err != nil {
		return nil, err
	}
	if err = registry.Reload(ctx); err != nil {
		return nil, fmt.Errorf("load workflow rules: %w", err)
	}
	c.registry = registry

	c.dispatcher = eventbus.NewDispatcher(log)
	c.dispatcher.AddSink(eventbus.NewLogSink(log))
	if err = c.addAWSSinks(ctx); err != nil {
		return nil, err
	}

	c.security, err = dccsecurity.NewService(
		courierrepo.NewGormCourierSecurityRepository(gormDB),
		c.dispatcher,
		courier.DefaultPolicy(),
		c.clock,
		log,
	)
	if err != nil {
		return nil, err
	}
	c.dispatcher.Subscribe(c.security)

	c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB, c.dispatcher)

	if c.stateMachine, err = services.NewOrderStateMachine(registry, c.clock); err != nil {
		return nil, err
	}
	c.codes, err = services.NewDCCGenerationService(services.CryptoRandom{}, c.clock, services.DCCPolicy{
		Expiration:  cfg.DCCDefaultExpiration,
		MaxAttempts: cfg.DCCDefaultMaxAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("delivery code defaults: %w", err)
	}

	return c, nil
}

func (c *CompositionRoot) addAWSSinks(ctx context.Context) error {
	if c.cfg.EventsQueueURL == "" && c.cfg.MetricsNamespace == "" {
		return nil
	}
	clients, err := awsout.NewClients(ctx, c.cfg.AWSRegion)
	if err != nil {
		return err
	}
	if c.cfg.EventsQueueURL != "" {
		sink, err := awsout.NewSQSSink(clients.SQS, c.cfg.EventsQueueURL)
		if err != nil {
			return err
		}
		c.dispatcher.AddSink(sink)
	}
	if c.cfg.MetricsNamespace != "" {
		sink, err := awsout.NewCloudWatchSink(clients.CloudWatch, c.cfg.MetricsNamespace, c.clock)
		if err != nil {
			return err
		}
		c.dispatcher.AddSink(sink)
	}
	return nil
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) deliveryCodeUoWFactory() commands.DeliveryCodeUoWFactory {
	return FuncDeliveryCodeUoWFactory(func() commands.DeliveryCodeUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) uoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.stateMachine, c.clock)
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() commands.ChangeOrderStatusCommandHandler {
	return commands.NewChangeOrderStatusCommandHandler(c.uoWFactory(), c.stateMachine, c.codes)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.orderUoWFactory(), c.stateMachine)
}

func (c *CompositionRoot) CreateRefundOrderCommandHandler() commands.RefundOrderCommandHandler {
	return commands.NewRefundOrderCommandHandler(c.orderUoWFactory(), c.stateMachine)
}

func (c *CompositionRoot) CreateAutoProgressOrderCommandHandler() commands.AutoProgressOrderCommandHandler {
	return commands.NewAutoProgressOrderCommandHandler(c.orderUoWFactory(), c.stateMachine)
}

func (c *CompositionRoot) CreateRegenerateDeliveryCodeCommandHandler() commands.RegenerateDeliveryCodeCommandHandler {
	return commands.NewRegenerateDeliveryCodeCommandHandler(c.uoWFactory(), c.codes)
}

func (c *CompositionRoot) CreateConfirmDeliveryCommandHandler() commands.ConfirmDeliveryCommandHandler {
	return commands.NewConfirmDeliveryCommandHandler(c.uoWFactory(), c.stateMachine, c.security, c.clock)
}

func (c *CompositionRoot) CreateForceExpireDeliveryCodeCommandHandler() commands.ForceExpireDeliveryCodeCommandHandler {
	return commands.NewForceExpireDeliveryCodeCommandHandler(c.deliveryCodeUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateClearCourierLockoutCommandHandler() commands.ClearCourierLockoutCommandHandler {
	return commands.NewClearCourierLockoutCommandHandler(c.security)
}

func (c *CompositionRoot) CreateExpireDeliveryCodesCommandHandler() commands.ExpireDeliveryCodesCommandHandler {
	return commands.NewExpireDeliveryCodesCommandHandler(c.deliveryCodeUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateHandleOrderTimeoutsCommandHandler() commands.HandleOrderTimeoutsCommandHandler {
	return commands.NewHandleOrderTimeoutsCommandHandler(c.orderUoWFactory(), c.stateMachine)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() (*queries.GetOrderQueryHandler, error) {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() (*queries.GetActiveOrdersQueryHandler, error) {
	return queries.NewGetActiveOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetCourierValidationStatsQueryHandler() (
	*queries.GetCourierValidationStatsQueryHandler, error,
) {
	return queries.NewGetCourierValidationStatsQueryHandler(c.security, c.clock)
}

// CreateRouter builds the HTTP API with every use case attached.
func (c *CompositionRoot) CreateRouter(ctx context.Context) (*echo.Echo, error) {
	getOrder, err := c.CreateGetOrderQueryHandler()
	if err != nil {
		return nil, err
	}
	activeOrders, err := c.CreateGetActiveOrdersQueryHandler()
	if err != nil {
		return nil, err
	}
	stats, err := c.CreateGetCourierValidationStatsQueryHandler()
	if err != nil {
		return nil, err
	}

	server, err := httpin.NewServer(httpin.Handlers{
		CreateOrder:               c.CreateCreateOrderCommandHandler(),
		ChangeOrderStatus:         c.CreateChangeOrderStatusCommandHandler(),
		CancelOrder:               c.CreateCancelOrderCommandHandler(),
		RefundOrder:               c.CreateRefundOrderCommandHandler(),
		AutoProgressOrder:         c.CreateAutoProgressOrderCommandHandler(),
		RegenerateDeliveryCode:    c.CreateRegenerateDeliveryCodeCommandHandler(),
		ConfirmDelivery:           c.CreateConfirmDeliveryCommandHandler(),
		ForceExpireDeliveryCode:   c.CreateForceExpireDeliveryCodeCommandHandler(),
		ClearCourierLockout:       c.CreateClearCourierLockoutCommandHandler(),
		GetOrder:                  getOrder,
		GetActiveOrders:           activeOrders,
		GetCourierValidationStats: stats,
	}, c.logger)
	if err != nil {
		return nil, err
	}

	doc, err := httpin.LoadOpenAPIDoc(ctx)
	if err != nil {
		return nil, err
	}
	return httpin.NewRouter(server, doc), nil
}

// CreateJobManager schedules order timeouts, delivery code expiry and the
// workflow rules refresh.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		jobs.NewOrderTimeoutJob(c.CreateHandleOrderTimeoutsCommandHandler(), c.cfg.OrderTimeoutSchedule, 0, c.logger),
		jobs.NewDeliveryCodeExpiryJob(c.CreateExpireDeliveryCodesCommandHandler(), c.cfg.DCCExpirySchedule, 0, c.logger),
		jobs.NewWorkflowRulesRefreshJob(c.registry, c.cfg.RulesRefreshSchedule, c.logger),
	)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncDeliveryCodeUoWFactory func() commands.DeliveryCodeUoW

func (f FuncDeliveryCodeUoWFactory) Create() commands.DeliveryCodeUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
