package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecomputer struct {
	calls []uuid.UUID
	err   error
}

func (s *stubRecomputer) Recompute(_ context.Context, traderID uuid.UUID) error {
	s.calls = append(s.calls, traderID)
	return s.err
}

func TestPerformanceWorker_Process(t *testing.T) {
	rec := &stubRecomputer{}
	w := NewPerformanceWorker(rec)

	traderID := uuid.New()
	payload, err := json.Marshal(PerformanceJobPayload{TraderID: traderID.String()})
	require.NoError(t, err)

	require.NoError(t, w.Process(context.Background(), payload))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, traderID, rec.calls[0])
}

func TestPerformanceWorker_InvalidPayload(t *testing.T) {
	rec := &stubRecomputer{}
	w := NewPerformanceWorker(rec)

	err := w.Process(context.Background(), json.RawMessage(`{"trader_id":"not-a-uuid"}`))
	assert.Error(t, err)
	assert.Empty(t, rec.calls)
}

func TestPerformanceWorker_PropagatesFailure(t *testing.T) {
	rec := &stubRecomputer{err: errors.New("db down")}
	w := NewPerformanceWorker(rec)

	payload, _ := json.Marshal(PerformanceJobPayload{TraderID: uuid.NewString()})
	err := w.Process(context.Background(), payload)
	assert.ErrorContains(t, err, "db down")
}
