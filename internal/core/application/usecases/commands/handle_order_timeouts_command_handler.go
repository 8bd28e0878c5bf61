package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/services"
	"github.com/fxavier/mozdelivery-api-sub003/internal/core/ports"
)

// HandleOrderTimeoutsCommandHandler applies timeout fallbacks. Each overdue
// order is handled in its own unit of work so one conflicting order does not
// hold back the rest of the batch.
type HandleOrderTimeoutsCommandHandler struct {
	uowFactory   OrderUoWFactory
	stateMachine *services.OrderStateMachine
}

func NewHandleOrderTimeoutsCommandHandler(
	uowFactory OrderUoWFactory,
	stateMachine *services.OrderStateMachine,
) HandleOrderTimeoutsCommandHandler {
	return HandleOrderTimeoutsCommandHandler{uowFactory: uowFactory, stateMachine: stateMachine}
}

// Handle returns how many orders produced timeout events. Per-order failures
// are joined into the returned error after the whole batch ran.
func (h HandleOrderTimeoutsCommandHandler) Handle(ctx context.Context, cmd HandleOrderTimeoutsCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	candidates, err := h.overdueOrders(ctx, cmd.BatchSize())
	if err != nil {
		return 0, err
	}

	handled := 0
	var failures []error
	for _, id := range candidates {
		applied, handleErr := h.handleOne(ctx, id)
		if handleErr != nil {
			failures = append(failures, fmt.Errorf("order %s: %w", id, handleErr))
			continue
		}
		if applied {
			handled++
		}
	}

	return handled, errors.Join(failures...)
}

// overdueOrders pages through the candidates until limit overdue orders
// are found. Candidates that are not yet overdue under their merchant's own
// rules are skipped, so they never hold a batch.
func (h HandleOrderTimeoutsCommandHandler) overdueOrders(ctx context.Context, limit int) ([]kernel.UUID, error) {
	scan := ports.TimeoutScan{Cutoffs: h.stateMachine.TimeoutCutoffs(), Limit: limit}
	if len(scan.Cutoffs) == 0 {
		return nil, nil
	}

	repo := h.uowFactory.Create().OrderRepository()
	ids := make([]kernel.UUID, 0, limit)
	for len(ids) < limit {
		page, err := repo.ListTimeoutCandidates(ctx, scan)
		if err != nil {
			return nil, err
		}

		for _, o := range page {
			if len(ids) < limit && h.stateMachine.IsOverdue(o) {
				ids = append(ids, o.ID())
			}
		}

		if len(page) < scan.Limit {
			break
		}
		scan.After = ports.CursorAfter(page[len(page)-1])
	}
	return ids, nil
}

// handleOne reloads the order so a status change that happened since the
// scan is respected.
func (h HandleOrderTimeoutsCommandHandler) handleOne(ctx context.Context, id kernel.UUID) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, id)
	if err != nil {
		return false, err
	}

	events, err := h.stateMachine.HandleStatusTimeout(o)
	if err != nil {
		return false, err
	}
	if len(events) == 0 {
		return false, nil
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return false, err
	}

	uow.RecordEvents(events...)
	if err = uow.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
