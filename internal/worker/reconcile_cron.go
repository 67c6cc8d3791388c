package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StaleRollupFinder reports traders whose terminal notes changed after their
// rollup was last computed. Satisfied by the performance repository.
type StaleRollupFinder interface {
	ListStaleTraderIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
}

const reconcileBatchLimit = 100

// StartReconcileCron periodically re-enqueues recompute jobs for traders
// whose rollup fell behind, e.g. when an enqueue after commit was lost.
// Catches drift within one interval instead of leaving it until the next
// terminal note.
func StartReconcileCron(ctx context.Context, finder StaleRollupFinder, dispatcher *Dispatcher, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("reconcile cron shutting down")
				return
			case <-ticker.C:
				reconcileOnce(ctx, finder, dispatcher)
			}
		}
	}()
	log.Info().Dur("interval", interval).Msg("reconcile cron started")
}

func reconcileOnce(ctx context.Context, finder StaleRollupFinder, dispatcher *Dispatcher) {
	ids, err := finder.ListStaleTraderIDs(ctx, reconcileBatchLimit)
	if err != nil {
		log.Error().Err(err).Msg("reconcile: failed to list stale rollups")
		return
	}
	for _, id := range ids {
		if err := dispatcher.EnqueuePerformance(ctx, PerformanceJobPayload{TraderID: id.String()}); err != nil {
			log.Error().Err(err).Str("trader_id", id.String()).Msg("reconcile: enqueue failed")
			continue
		}
		log.Info().Str("trader_id", id.String()).Msg("reconcile: stale rollup re-enqueued")
	}
}
