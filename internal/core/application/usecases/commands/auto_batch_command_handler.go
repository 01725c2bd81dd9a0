package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// AutoBatchResult summarizes one batching sweep.
type AutoBatchResult struct {
	BatchesCreated  int
	BatchesUpdated  int
	OrdersProcessed int
}

// batchKey groups candidate orders destined for the same driver trip.
type batchKey struct {
	kitchenID  kernel.UUID
	zoneID     kernel.UUID
	mealWindow kernel.MealWindow
}

// AutoBatchCommandHandler implements the batching engine: it groups
// unbatched eligible orders by (kitchen, zone, meal window), fills the open
// collecting batch for each group, and creates one when none exists.
//
// The sweep appends only up to a batch's remaining capacity; overflow orders
// stay unbatched and are retried on the next run. It is the only writer of
// an order's batch reference.
type AutoBatchCommandHandler struct {
	uowFactory     BatchingUoWFactory
	hoursProvider  ports.KitchenHoursProvider
	cutoffResolver services.CutoffResolver
	maxBatchSize   int
}

// NewAutoBatchCommandHandler creates a handler for the batching sweep.
// maxBatchSize is snapshotted onto each batch it creates.
func NewAutoBatchCommandHandler(
	uowFactory BatchingUoWFactory,
	hoursProvider ports.KitchenHoursProvider,
	maxBatchSize int,
) AutoBatchCommandHandler {
	return AutoBatchCommandHandler{
		uowFactory:     uowFactory,
		hoursProvider:  hoursProvider,
		cutoffResolver: services.NewCutoffResolver(),
		maxBatchSize:   maxBatchSize,
	}
}

// Handle runs one sweep and reports how many batches were created, how many
// were topped up, and how many orders were placed into a batch.
func (h AutoBatchCommandHandler) Handle(ctx context.Context, command AutoBatchCommand) (AutoBatchResult, error) {
	if err := command.Validate(); err != nil {
		return AutoBatchResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return AutoBatchResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	batchRepo := uow.BatchRepository()

	candidates, err := orderRepo.GetAllBatchable(ctx, command.MealWindow(), command.KitchenID())
	if err != nil {
		return AutoBatchResult{}, err
	}

	now := time.Now().UTC()
	var result AutoBatchResult

	for key, group := range groupByBatchKey(candidates) {
		appended, created, err := h.fillBatch(ctx, orderRepo, batchRepo, key, group, now)
		if err != nil {
			return AutoBatchResult{}, err
		}

		result.OrdersProcessed += appended
		if appended == 0 {
			continue
		}
		if created {
			result.BatchesCreated++
		} else {
			result.BatchesUpdated++
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return AutoBatchResult{}, err
	}

	return result, nil
}

// fillBatch tops up the open collecting batch for the key, creating one when
// none exists, and persists both sides of each new membership.
func (h AutoBatchCommandHandler) fillBatch(
	ctx context.Context,
	orderRepo ports.OrderRepository,
	batchRepo ports.BatchRepository,
	key batchKey,
	group []*order.Order,
	now time.Time,
) (appended int, created bool, err error) {
	batchDate := now.Truncate(24 * time.Hour)

	target, err := batchRepo.GetOpenForCollection(ctx, key.kitchenID, key.zoneID, key.mealWindow, batchDate)
	if errors.Is(err, errs.ErrObjectNotFound) {
		if target, err = h.newBatch(ctx, key, batchDate, now); err != nil {
			return 0, false, err
		}
		created = true
	} else if err != nil {
		return 0, false, err
	}

	for _, candidate := range group {
		if target.RemainingCapacity() == 0 {
			break
		}

		if err = target.AddOrder(candidate.ID()); err != nil {
			return 0, false, err
		}
		if err = candidate.AssignToBatch(target.ID()); err != nil {
			return 0, false, err
		}
		if err = orderRepo.Update(ctx, candidate); err != nil {
			return 0, false, err
		}

		appended++
	}

	if appended == 0 && created {
		return 0, false, nil
	}

	if created {
		err = batchRepo.Add(ctx, target)
	} else if appended > 0 {
		err = batchRepo.Update(ctx, target)
	}
	if err != nil {
		return 0, false, err
	}

	return appended, created, nil
}

func (h AutoBatchCommandHandler) newBatch(ctx context.Context, key batchKey, batchDate, now time.Time) (*batch.Batch, error) {
	hours, err := h.hoursProvider.OperatingHours(ctx, key.kitchenID)
	if err != nil {
		return nil, err
	}

	windowEnd, err := h.cutoffResolver.Resolve(hours, key.mealWindow, now)
	if err != nil {
		return nil, err
	}

	batchID := kernel.NewUUID()
	return batch.NewBatch(
		batchID,
		newBatchNumber(batchDate, batchID),
		key.kitchenID,
		key.zoneID,
		key.mealWindow,
		batchDate,
		windowEnd,
		h.maxBatchSize,
	)
}

func groupByBatchKey(candidates []*order.Order) map[batchKey][]*order.Order {
	groups := make(map[batchKey][]*order.Order)
	for _, candidate := range candidates {
		if !candidate.IsBatchable() {
			continue
		}

		key := batchKey{
			kitchenID:  candidate.KitchenID(),
			zoneID:     candidate.ZoneID(),
			mealWindow: *candidate.MealWindow(),
		}
		groups[key] = append(groups[key], candidate)
	}
	return groups
}

func newBatchNumber(batchDate time.Time, batchID kernel.UUID) string {
	return fmt.Sprintf("B%s-%.8s", batchDate.Format("20060102"), batchID.String())
}
