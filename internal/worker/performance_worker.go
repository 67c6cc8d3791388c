package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Recomputer rebuilds a trader's performance rollup from their terminal
// notes. Satisfied by the performance service; declared here so the worker
// package does not depend on the service layer.
type Recomputer interface {
	Recompute(ctx context.Context, traderID uuid.UUID) error
}

// PerformanceWorker consumes performance recompute jobs.
type PerformanceWorker struct {
	recomputer Recomputer
}

func NewPerformanceWorker(recomputer Recomputer) *PerformanceWorker {
	return &PerformanceWorker{recomputer: recomputer}
}

func (w *PerformanceWorker) Process(ctx context.Context, payload json.RawMessage) error {
	var job PerformanceJobPayload
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("invalid performance payload: %w", err)
	}
	traderID, err := uuid.Parse(job.TraderID)
	if err != nil {
		return fmt.Errorf("invalid trader id %q: %w", job.TraderID, err)
	}

	if err := w.recomputer.Recompute(ctx, traderID); err != nil {
		return fmt.Errorf("recompute trader %s: %w", traderID, err)
	}

	log.Info().Str("trader_id", job.TraderID).Msg("performance rollup recomputed")
	return nil
}
