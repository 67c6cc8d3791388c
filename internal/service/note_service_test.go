package service

import (
	"context"
	"testing"
	"time"

	"github.com/colline-kooza/export-coffee-sub000/internal/config"
	"github.com/colline-kooza/export-coffee-sub000/internal/domainerr"
	"github.com/colline-kooza/export-coffee-sub000/internal/dto"
	"github.com/colline-kooza/export-coffee-sub000/internal/model"

	"github.com/colline-kooza/export-coffee-sub000/internal/worker"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteEnv struct {
	svc         NoteService
	noteRepo    *stubNoteRepo
	readingRepo *stubReadingRepo
	traderRepo  *stubTraderRepo
	qualityRepo *stubQualityRepo
	perfRepo    *stubPerfRepo
	trader      *model.Trader
	reading     *model.WeighbridgeReading
}

// buildNoteEnv seeds an ACTIVE trader, a truck entry and a 17000kg reading.
// No dispatcher wired: terminal transitions recompute synchronously.
func buildNoteEnv(t *testing.T, cfg *config.Config) *noteEnv {
	t.Helper()

	traderRepo := newStubTraderRepo()
	trader := &model.Trader{Name: "Kasese Coffee Farmers", Status: model.TraderActive, PaymentTermsDays: 7}
	require.NoError(t, traderRepo.Create(context.Background(), trader))

	entry := &model.TruckEntry{
		ID:          uuid.New(),
		TruckNumber: "UAX 123K",
		DriverName:  "Okello James",
		TraderID:    trader.ID,
		ArrivedAt:   time.Now().Add(-2 * time.Hour),
	}

	readingRepo := newStubReadingRepo()
	reading := &model.WeighbridgeReading{
		TruckEntryID:  entry.ID,
		GrossWeightKg: 25000,
		TareWeightKg:  8000,
		NetWeightKg:   17000,
		WeighedAt:     time.Now().Add(-time.Hour),
		TruckEntry:    entry,
	}
	require.NoError(t, readingRepo.CreateTx(context.Background(), nil, reading))

	noteRepo := newStubNoteRepo()
	qualityRepo := newStubQualityRepo()
	perfRepo := newStubPerfRepo()
	perfSvc := NewPerformanceService(perfRepo, noteRepo)

	svc := NewNoteService(noteRepo, readingRepo, traderRepo, qualityRepo, perfSvc, nil, cfg)

	return &noteEnv{
		svc:         svc,
		noteRepo:    noteRepo,
		readingRepo: readingRepo,
		traderRepo:  traderRepo,
		qualityRepo: qualityRepo,
		perfRepo:    perfRepo,
		trader:      trader,
		reading:     reading,
	}
}

func createNote(t *testing.T, env *noteEnv) *dto.NoteResponse {
	t.Helper()
	resp, err := env.svc.Create(context.Background(), dto.CreateNoteRequest{
		WeighbridgeReadingID: env.reading.ID.String(),
		CoffeeType:           "ARABICA",
		MoistureContent:      135,
		PricePerKgUGX:        8000,
	})
	require.NoError(t, err)
	return resp
}

func transition(t *testing.T, env *noteEnv, id string, to string) *dto.NoteResponse {
	t.Helper()
	resp, err := env.svc.Transition(context.Background(), uuid.MustParse(id), dto.TransitionNoteRequest{To: to})
	require.NoError(t, err)
	return resp
}

// ── Create ────────────────────────────────────────────────────────────────────

func TestCreateNote_DerivesAllFigures(t *testing.T) {
	env := buildNoteEnv(t, nil)
	resp := createNote(t, env)

	assert.Equal(t, int64(17000), resp.NetWeightKg)
	assert.Equal(t, int64(340), resp.DeductionKg)
	assert.Equal(t, int64(16660), resp.FinalNetWeightKg)
	assert.Equal(t, int64(133280000), resp.TotalAmountUGX)
	assert.Equal(t, "WEIGHED", resp.Status)
	assert.Equal(t, "PENDING", resp.PaymentStatus)
	assert.Equal(t, "Kasese Coffee Farmers", resp.TraderName)

	period := time.Now().Format("2006-01")
	assert.Equal(t, "BWN-"+period+"-0001", resp.NoteNumber)
}

func TestCreateNote_SequenceIncrementsWithinPeriod(t *testing.T) {
	env := buildNoteEnv(t, nil)
	createNote(t, env)

	// Second reading, second note
	entry2 := &model.TruckEntry{ID: uuid.New(), TruckNumber: "UBB 456L", DriverName: "Driver Two", TraderID: env.trader.ID, ArrivedAt: time.Now()}
	reading2 := &model.WeighbridgeReading{TruckEntryID: entry2.ID, GrossWeightKg: 20000, TareWeightKg: 9000, NetWeightKg: 11000, WeighedAt: time.Now(), TruckEntry: entry2}
	require.NoError(t, env.readingRepo.CreateTx(context.Background(), nil, reading2))

	resp, err := env.svc.Create(context.Background(), dto.CreateNoteRequest{
		WeighbridgeReadingID: reading2.ID.String(),
		CoffeeType:           "ROBUSTA",
		MoistureContent:      110,
		PricePerKgUGX:        6500,
	})
	require.NoError(t, err)

	period := time.Now().Format("2006-01")
	assert.Equal(t, "BWN-"+period+"-0002", resp.NoteNumber)
}

func TestCreateNote_ReadingAlreadyConverted(t *testing.T) {
	env := buildNoteEnv(t, nil)
	createNote(t, env)

	_, err := env.svc.Create(context.Background(), dto.CreateNoteRequest{
		WeighbridgeReadingID: env.reading.ID.String(),
		CoffeeType:           "ARABICA",
		MoistureContent:      120,
		PricePerKgUGX:        7000,
	})
	assert.Equal(t, domainerr.KindReadingConverted, domainerr.KindOf(err))
}

func TestCreateNote_SuspendedTraderRejected(t *testing.T) {
	env := buildNoteEnv(t, nil)
	env.trader.Status = model.TraderSuspended

	_, err := env.svc.Create(context.Background(), dto.CreateNoteRequest{
		WeighbridgeReadingID: env.reading.ID.String(),
		CoffeeType:           "ARABICA",
		MoistureContent:      135,
		PricePerKgUGX:        8000,
	})
	assert.Equal(t, domainerr.KindTraderNotEligible, domainerr.KindOf(err))
	// No note and no sequence consumed
	assert.Empty(t, env.noteRepo.notes)
	assert.Empty(t, env.noteRepo.seq)
}

func TestCreateNote_ReadingNotFound(t *testing.T) {
	env := buildNoteEnv(t, nil)
	_, err := env.svc.Create(context.Background(), dto.CreateNoteRequest{
		WeighbridgeReadingID: uuid.NewString(),
		CoffeeType:           "ARABICA",
		MoistureContent:      135,
		PricePerKgUGX:        8000,
	})
	assert.Equal(t, domainerr.KindReadingNotFound, domainerr.KindOf(err))
}

// ── Update ────────────────────────────────────────────────────────────────────

func TestUpdateNote_RederivesWhileWeighed(t *testing.T) {
	env := buildNoteEnv(t, nil)
	resp := createNote(t, env)

	moisture := 115
	updated, err := env.svc.Update(context.Background(), uuid.MustParse(resp.ID), dto.UpdateNoteRequest{
		MoistureContent: &moisture,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.DeductionKg)
	assert.Equal(t, int64(17000), updated.FinalNetWeightKg)
	assert.Equal(t, int64(136000000), updated.TotalAmountUGX)
}

func TestUpdateNote_LockedAfterWeighed(t *testing.T) {
	env := buildNoteEnv(t, nil)
	resp := createNote(t, env)
	transition(t, env, resp.ID, "MOISTURE_TESTED")

	price := int64(9000)
	_, err := env.svc.Update(context.Background(), uuid.MustParse(resp.ID), dto.UpdateNoteRequest{
		PricePerKgUGX: &price,
	})
	assert.Equal(t, domainerr.KindNoteLocked, domainerr.KindOf(err))
}

func TestUpdateNote_ConcurrentEditConflicts(t *testing.T) {
	env := buildNoteEnv(t, nil)
	resp := createNote(t, env)

	env.noteRepo.casFail = true
	moisture := 120
	_, err := env.svc.Update(context.Background(), uuid.MustParse(resp.ID), dto.UpdateNoteRequest{
		MoistureContent: &moisture,
	})
	assert.Equal(t, domainerr.KindConcurrencyConflict, domainerr.KindOf(err))
}

// ── Transition ────────────────────────────────────────────────────────────────

func TestTransition_LegalChainToCompleted(t *testing.T) {
	env := buildNoteEnv(t, nil)
	resp := createNote(t, env)
	id := uuid.MustParse(resp.ID)

	transition(t, env, resp.ID, "MOISTURE_TESTED")
	transition(t, env, resp.ID, "PRICE_CALCULATED")
	transition(t, env, resp.ID, "AWAITING_QC")

	require.NoError(t, env.svc.RecordQCResult(context.Background(), id, uuid.New(), dto.QCResultRequest{
		Outcome: "PASS", DefectCount: 3, Score: decimal.NewFromInt(88),
	}))

	approved := transition(t, env, resp.ID, "PAYMENT_APPROVED")
	assert.Equal(t, "APPROVED", approved.PaymentStatus)

	require.NoError(t, env.svc.RecordPayment(context.Background(), id, dto.PaymentUpdateRequest{Status: "PAID"}))

	done := transition(t, env, resp.ID, "COMPLETED")
	assert.Equal(t, "COMPLETED", done.Status)
	assert.NotNil(t, done.CompletedAt)

	// Terminal transition recomputed the trader rollup synchronously
	assert.Equal(t, 1, env.perfRepo.replaceCalls)
	rollup := env.perfRepo.rollups[env.trader.ID]
	require.NotNil(t, rollup)
	assert.Equal(t, 1, rollup.AcceptedDeliveries)
	assert.Equal(t, int64(16660), rollup.TotalVolumeKg)
}

func TestTransition_SkippingStagesIsIllegal(t *testing.T) {
	env := buildNoteEnv(t, nil)
	resp := createNote(t, env)

	_, err := env.svc.Transition(context.Background(), uuid.MustParse(resp.ID), dto.TransitionNoteRequest{To: "AWAITING_QC"})
	assert.Equal(t, domainerr.KindIllegalTransition, domainerr.KindOf(err))
}

func TestTransition_RejectRequiresReason(t *testing.T) {
	env := buildNoteEnv(t, nil)
	resp := createNote(t, env)

	_, err := env.svc.Transition(context.Background(), uuid.MustParse(resp.ID), dto.TransitionNoteRequest{To: "REJECTED"})
	assert.Equal(t, domainerr.KindValidation, domainerr.KindOf(err))

	reason := "moisture meter tampering suspected"
	rejected, err := env.svc.Transition(context.Background(), uuid.MustParse(resp.ID), dto.TransitionNoteRequest{To: "REJECTED", Reason: &reason})
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, reason, *rejected.RejectionReason)

	// Rejection is terminal: nothing moves out of it
	_, err = env.svc.Transition(context.Background(), uuid.MustParse(resp.ID), dto.TransitionNoteRequest{To: "MOISTURE_TESTED"})
	assert.Equal(t, domainerr.KindIllegalTransition, domainerr.KindOf(err))
}

func TestTransition_RejectReachableFromLateStage(t *testing.T) {
	env := buildNoteEnv(t, nil)
	resp := createNote(t, env)
	transition(t, env, resp.ID, "MOISTURE_TESTED")
	transition(t, env, resp.ID, "PRICE_CALCULATED")
	transition(t, env, resp.ID, "AWAITING_QC")

	reason := "failed cupping, excessive defects"
	rejected, err := env.svc.Transition(context.Background(), uuid.MustParse(resp.ID), dto.TransitionNoteRequest{To: "REJECTED", Reason: &reason})
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", rejected.Status)

	rollup := env.perfRepo.rollups[env.trader.ID]
	require.NotNil(t, rollup)
	assert.Equal(t, 1, rollup.RejectedDeliveries)
	assert.Equal(t, int64(0), rollup.TotalVolumeKg)
}

func TestTransition_PaymentApprovalRequiresQC(t *testing.T) {
	env := buildNoteEnv(t, nil)
	resp := createNote(t, env)
	transition(t, env, resp.ID, "MOISTURE_TESTED")
	transition(t, env, resp.ID, "PRICE_CALCULATED")
	transition(t, env, resp.ID, "AWAITING_QC")

	_, err := env.svc.Transition(context.Background(), uuid.MustParse(resp.ID), dto.TransitionNoteRequest{To: "PAYMENT_APPROVED"})
	assert.Equal(t, domainerr.KindIllegalTransition, domainerr.KindOf(err))
}

func TestTransition_QCRejectBlocksPayment(t *testing.T) {
	env := buildNoteEnv(t, nil)
	resp := createNote(t, env)
	id := uuid.MustParse(resp.ID)
	transition(t, env, resp.ID, "MOISTURE_TESTED")
	transition(t, env, resp.ID, "PRICE_CALCULATED")
	transition(t, env, resp.ID, "AWAITING_QC")

	require.NoError(t, env.svc.RecordQCResult(context.Background(), id, uuid.New(), dto.QCResultRequest{
		Outcome: "REJECT", DefectCount: 45, Score: decimal.NewFromInt(31),
	}))

	_, err := env.svc.Transition(context.Background(), id, dto.TransitionNoteRequest{To: "PAYMENT_APPROVED"})
	assert.Equal(t, domainerr.KindIllegalTransition, domainerr.KindOf(err))
}

func TestTransition_BorderlinePolicy(t *testing.T) {
	strict := &config.Config{MoistureBaseline: 115, QCBorderlineApprovable: false}
	env := buildNoteEnv(t, strict)
	resp := createNote(t, env)
	id := uuid.MustParse(resp.ID)
	transition(t, env, resp.ID, "MOISTURE_TESTED")
	transition(t, env, resp.ID, "PRICE_CALCULATED")
	transition(t, env, resp.ID, "AWAITING_QC")

	require.NoError(t, env.svc.RecordQCResult(context.Background(), id, uuid.New(), dto.QCResultRequest{
		Outcome: "BORDERLINE", DefectCount: 18, Score: decimal.NewFromInt(62),
	}))

	_, err := env.svc.Transition(context.Background(), id, dto.TransitionNoteRequest{To: "PAYMENT_APPROVED"})
	assert.Equal(t, domainerr.KindIllegalTransition, domainerr.KindOf(err))
}

func TestTransition_CompletionRequiresPaid(t *testing.T) {
	env := buildNoteEnv(t, nil)
	resp := createNote(t, env)
	id := uuid.MustParse(resp.ID)
	transition(t, env, resp.ID, "MOISTURE_TESTED")
	transition(t, env, resp.ID, "PRICE_CALCULATED")
	transition(t, env, resp.ID, "AWAITING_QC")
	require.NoError(t, env.svc.RecordQCResult(context.Background(), id, uuid.New(), dto.QCResultRequest{
		Outcome: "PASS", DefectCount: 2, Score: decimal.NewFromInt(91),
	}))
	transition(t, env, resp.ID, "PAYMENT_APPROVED")

	// Payment not yet confirmed
	_, err := env.svc.Transition(context.Background(), id, dto.TransitionNoteRequest{To: "COMPLETED"})
	assert.Equal(t, domainerr.KindIllegalTransition, domainerr.KindOf(err))
}

func TestTransition_LostRaceYieldsConflict(t *testing.T) {
	env := buildNoteEnv(t, nil)
	resp := createNote(t, env)

	env.noteRepo.casFail = true
	_, err := env.svc.Transition(context.Background(), uuid.MustParse(resp.ID), dto.TransitionNoteRequest{To: "MOISTURE_TESTED"})
	assert.Equal(t, domainerr.KindConcurrencyConflict, domainerr.KindOf(err))
}

// ── Collaborator inputs ───────────────────────────────────────────────────────

func TestRecordQCResult_OnlyWhileAwaitingQC(t *testing.T) {
	env := buildNoteEnv(t, nil)
	resp := createNote(t, env)

	err := env.svc.RecordQCResult(context.Background(), uuid.MustParse(resp.ID), uuid.New(), dto.QCResultRequest{
		Outcome: "PASS", DefectCount: 0, Score: decimal.NewFromInt(95),
	})
	assert.Equal(t, domainerr.KindIllegalTransition, domainerr.KindOf(err))
}

func TestRecordQCResult_ResubmissionOverwrites(t *testing.T) {
	env := buildNoteEnv(t, nil)
	resp := createNote(t, env)
	id := uuid.MustParse(resp.ID)
	transition(t, env, resp.ID, "MOISTURE_TESTED")
	transition(t, env, resp.ID, "PRICE_CALCULATED")
	transition(t, env, resp.ID, "AWAITING_QC")

	require.NoError(t, env.svc.RecordQCResult(context.Background(), id, uuid.New(), dto.QCResultRequest{
		Outcome: "BORDERLINE", DefectCount: 20, Score: decimal.NewFromInt(60),
	}))
	require.NoError(t, env.svc.RecordQCResult(context.Background(), id, uuid.New(), dto.QCResultRequest{
		Outcome: "PASS", DefectCount: 8, Score: decimal.NewFromInt(80),
	}))

	qa, err := env.qualityRepo.FindByNoteID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.QCPass, qa.Outcome)
	assert.Equal(t, 8, qa.DefectCount)
}

func TestRecordPayment_RequiresApprovedStatus(t *testing.T) {
	env := buildNoteEnv(t, nil)
	resp := createNote(t, env)

	err := env.svc.RecordPayment(context.Background(), uuid.MustParse(resp.ID), dto.PaymentUpdateRequest{Status: "PAID"})
	assert.Equal(t, domainerr.KindIllegalTransition, domainerr.KindOf(err))
}

func TestTransition_EnqueueFailureDoesNotBlockCompletion(t *testing.T) {
	env := buildNoteEnv(t, nil)

	// Dispatcher over an unreachable broker: every enqueue fails. Transitions
	// must still commit; the rollup catches up via the reconcile cron later.
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	perfSvc := NewPerformanceService(env.perfRepo, env.noteRepo)
	env.svc = NewNoteService(env.noteRepo, env.readingRepo, env.traderRepo, env.qualityRepo,
		perfSvc, worker.NewDispatcher(rdb), nil)

	resp := createNote(t, env)
	id := uuid.MustParse(resp.ID)

	transition(t, env, resp.ID, "MOISTURE_TESTED")
	transition(t, env, resp.ID, "PRICE_CALCULATED")
	transition(t, env, resp.ID, "AWAITING_QC")
	require.NoError(t, env.svc.RecordQCResult(context.Background(), id, uuid.New(), dto.QCResultRequest{
		Outcome: "PASS", DefectCount: 3, Score: decimal.NewFromInt(88),
	}))
	transition(t, env, resp.ID, "PAYMENT_APPROVED")
	require.NoError(t, env.svc.RecordPayment(context.Background(), id, dto.PaymentUpdateRequest{Status: "PAID"}))

	done := transition(t, env, resp.ID, "COMPLETED")
	assert.Equal(t, "COMPLETED", done.Status)

	// Recompute was deferred to the queue (and lost), not run synchronously
	assert.Equal(t, 0, env.perfRepo.replaceCalls)
}
