package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// DispatchBatchesResult summarizes one dispatch sweep.
type DispatchBatchesResult struct {
	BatchesDispatched int
}

// DispatchBatchesCommandHandler implements the dispatch coordinator: it
// offers collecting batches to drivers once the meal window's cutoff has
// passed (or unconditionally when forced) and broadcasts availability.
//
// Empty batches are never offered. When the sweep targets an explicit
// kitchen and dispatches nothing solely because the cutoff has not been
// reached, the caller receives a precondition error rather than a silent
// zero, so an operator-triggered dispatch surfaces why nothing moved.
type DispatchBatchesCommandHandler struct {
	uowFactory     DispatchUoWFactory
	hoursProvider  ports.KitchenHoursProvider
	cutoffResolver services.CutoffResolver
}

// NewDispatchBatchesCommandHandler creates a handler for the dispatch sweep.
func NewDispatchBatchesCommandHandler(
	uowFactory DispatchUoWFactory,
	hoursProvider ports.KitchenHoursProvider,
) DispatchBatchesCommandHandler {
	return DispatchBatchesCommandHandler{
		uowFactory:     uowFactory,
		hoursProvider:  hoursProvider,
		cutoffResolver: services.NewCutoffResolver(),
	}
}

// Handle runs one sweep and reports how many batches were offered.
func (h DispatchBatchesCommandHandler) Handle(ctx context.Context, command DispatchBatchesCommand) (DispatchBatchesResult, error) {
	if err := command.Validate(); err != nil {
		return DispatchBatchesResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return DispatchBatchesResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	batchRepo := uow.BatchRepository()

	mealWindow := command.MealWindow()
	collecting, err := batchRepo.GetAllCollecting(ctx, &mealWindow, command.KitchenID())
	if err != nil {
		return DispatchBatchesResult{}, err
	}

	now := time.Now().UTC()
	var result DispatchBatchesResult
	heldByCutoff := 0

	for _, candidate := range collecting {
		if candidate.MemberCount() == 0 {
			continue
		}

		if !command.Force() {
			hours, err := h.hoursProvider.OperatingHours(ctx, candidate.KitchenID())
			if err != nil {
				return DispatchBatchesResult{}, err
			}

			passed, err := h.cutoffResolver.HasPassed(hours, candidate.MealWindow(), candidate.BatchDate(), now)
			if err != nil {
				return DispatchBatchesResult{}, err
			}
			if !passed {
				heldByCutoff++
				continue
			}
		}

		if err = candidate.Offer(); err != nil {
			return DispatchBatchesResult{}, err
		}
		if err = batchRepo.Update(ctx, candidate); err != nil {
			// A batch no longer found in COLLECTING was taken by a
			// concurrent sweep; it is not ours to dispatch.
			if errors.Is(err, errs.ErrPreconditionFailed) {
				continue
			}
			return DispatchBatchesResult{}, err
		}

		notify(ctx, uow.Notifier(), ports.Notification{
			RecipientRole: ports.RecipientRoleDrivers,
			Kind:          ports.NotificationKindBatchAvailable,
			Title:         "Batch available",
			Body:          fmt.Sprintf("Batch %s with %d orders is ready to claim.", candidate.BatchNumber(), candidate.MemberCount()),
			Payload:       batchAvailablePayload(candidate),
		})

		result.BatchesDispatched++
	}

	if command.KitchenID() != nil && result.BatchesDispatched == 0 && heldByCutoff > 0 {
		return DispatchBatchesResult{}, errs.NewPreconditionFailedError("dispatch batches",
			fmt.Sprintf("cutoff for %s has not been reached", command.MealWindow()))
	}

	if err = uow.Commit(ctx); err != nil {
		return DispatchBatchesResult{}, err
	}

	return result, nil
}
