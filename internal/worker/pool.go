package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueuePerformance = "jobs:performance"
	QueueSlip        = "jobs:slip"
)

const maxAttempts = 3

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// PerformanceJobPayload asks for a trader performance recompute.
type PerformanceJobPayload struct {
	TraderID string `json:"trader_id"`
}

// SlipJobPayload asks for a printable slip render for a completed note.
type SlipJobPayload struct {
	NoteID string `json:"note_id"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueuePerformance pushes a trader performance recompute job.
func (d *Dispatcher) EnqueuePerformance(ctx context.Context, payload PerformanceJobPayload) error {
	return d.enqueue(ctx, QueuePerformance, "performance", payload)
}

// EnqueueSlip pushes a slip render job.
func (d *Dispatcher) EnqueueSlip(ctx context.Context, payload SlipJobPayload) error {
	return d.enqueue(ctx, QueueSlip, "slip", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers holds the processors the pool dispatches to, wired at the
// composition root so workers get their full dependency graph.
type Handlers struct {
	Performance *PerformanceWorker
	Slip        *SlipWorker
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *Handlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *Handlers, id int) {
	queues := []string{QueuePerformance, QueueSlip}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, rdb, queue, "unknown", json.RawMessage(raw), "unmarshal failure", 0)
		return
	}

	var err error
	switch queue {
	case QueuePerformance:
		if handlers.Performance != nil {
			err = handlers.Performance.Process(ctx, job.Payload)
		}
	case QueueSlip:
		if handlers.Slip != nil {
			err = handlers.Slip.Process(ctx, job.Payload)
		}
	default:
		log.Warn().Str("queue", queue).Str("type", job.Type).Msg("job from unknown queue dropped")
		return
	}
	if err == nil {
		return
	}

	job.Attempts++
	log.Error().
		Str("queue", queue).
		Str("type", job.Type).
		Int("attempts", job.Attempts).
		Err(err).
		Msg("job failed")

	if job.Attempts >= maxAttempts {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}

	// Requeue for another attempt
	encoded, mErr := json.Marshal(job)
	if mErr != nil {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "requeue marshal failure: "+mErr.Error(), job.Attempts)
		return
	}
	if pErr := rdb.LPush(ctx, queue, encoded).Err(); pErr != nil {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "requeue push failure: "+pErr.Error(), job.Attempts)
	}
}
