package cmd

import (
	"log/slog"
	"time"

	"fulfillment/internal/adapters/out/audit"
	"fulfillment/internal/adapters/out/kitchenhours"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/outboxrepo"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/ports"

	"gorm.io/gorm"
)

// CompositionRoot wires adapters into the application's command and query
// handlers. All construction happens here; handlers receive only interfaces.
type CompositionRoot struct {
	config        Config
	gormDB        *gorm.DB
	uowFactory    *postgres.GormUnitOfWorkFactory
	hoursProvider ports.KitchenHoursProvider
	auditRecorder ports.AuditRecorder
}

// NewCompositionRoot creates the wiring for the given configuration and
// database connection.
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	tz := time.UTC
	if config.DefaultTimezone != "" {
		if loc, err := time.LoadLocation(config.DefaultTimezone); err == nil {
			tz = loc
		}
	}

	return CompositionRoot{
		config:        config,
		gormDB:        gormDB,
		uowFactory:    postgres.NewGormUnitOfWorkFactory(gormDB),
		hoursProvider: kitchenhours.NewConfigProvider(tz, nil),
		auditRecorder: audit.NewSlogAuditRecorder(logger),
	}
}

func (c *CompositionRoot) CreatePlaceOrderCommandHandler() commands.PlaceOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewPlaceOrderCommandHandler(f)
}

func (c *CompositionRoot) CreateUpdateOrderStatusCommandHandler() commands.UpdateOrderStatusCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateOrderStatusCommandHandler(f)
}

func (c *CompositionRoot) CreateAutoBatchCommandHandler() commands.AutoBatchCommandHandler {
	var f commands.BatchingUoWFactory = FuncBatchingUoWFactory(func() commands.BatchingUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAutoBatchCommandHandler(f, c.hoursProvider, c.config.MaxBatchSize)
}

func (c *CompositionRoot) CreateDispatchBatchesCommandHandler() commands.DispatchBatchesCommandHandler {
	var f commands.DispatchUoWFactory = FuncDispatchUoWFactory(func() commands.DispatchUoW {
		return c.uowFactory.Create()
	})
	return commands.NewDispatchBatchesCommandHandler(f, c.hoursProvider)
}

func (c *CompositionRoot) CreateClaimBatchCommandHandler() commands.ClaimBatchCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewClaimBatchCommandHandler(f)
}

func (c *CompositionRoot) CreateUpdateDeliveryStatusCommandHandler() commands.UpdateDeliveryStatusCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateDeliveryStatusCommandHandler(f)
}

func (c *CompositionRoot) CreateReassignBatchCommandHandler() commands.ReassignBatchCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewReassignBatchCommandHandler(f, c.auditRecorder)
}

func (c *CompositionRoot) CreateCancelBatchCommandHandler() commands.CancelBatchCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelBatchCommandHandler(f, c.auditRecorder)
}

func (c *CompositionRoot) CreateGetAvailableBatchesQueryHandler() queries.GetAvailableBatchesQueryHandler {
	return queries.NewGetAvailableBatchesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetMyBatchQueryHandler() queries.GetMyBatchQueryHandler {
	return queries.NewGetMyBatchQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetBatchByIDQueryHandler() queries.GetBatchByIDQueryHandler {
	return queries.NewGetBatchByIDQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetBatchStatsQueryHandler() queries.GetBatchStatsQueryHandler {
	return queries.NewGetBatchStatsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateOutboxRepository() *outboxrepo.GormOutboxRepository {
	return outboxrepo.NewGormOutboxRepository(c.gormDB)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncBatchingUoWFactory func() commands.BatchingUoW

func (f FuncBatchingUoWFactory) Create() commands.BatchingUoW {
	return f()
}

type FuncDispatchUoWFactory func() commands.DispatchUoW

func (f FuncDispatchUoWFactory) Create() commands.DispatchUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
