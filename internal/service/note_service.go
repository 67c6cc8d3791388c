package service

import (
	"context"
	"errors"
	"time"

	"github.com/colline-kooza/export-coffee-sub000/internal/config"
	"github.com/colline-kooza/export-coffee-sub000/internal/domainerr"
	"github.com/colline-kooza/export-coffee-sub000/internal/dto"
	"github.com/colline-kooza/export-coffee-sub000/internal/model"
	"github.com/colline-kooza/export-coffee-sub000/internal/repository"
	"github.com/colline-kooza/export-coffee-sub000/internal/weightcalc"
	"github.com/colline-kooza/export-coffee-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// NoteService owns the buying weight note lifecycle: creation from a
// weighbridge reading, pre-lock edits, and the status state machine through
// quality control, payment approval and completion or rejection.
type NoteService interface {
	Create(ctx context.Context, req dto.CreateNoteRequest) (*dto.NoteResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	Transition(ctx context.Context, id uuid.UUID, req dto.TransitionNoteRequest) (*dto.NoteResponse, error)
	RecordQCResult(ctx context.Context, id, analystID uuid.UUID, req dto.QCResultRequest) error
	RecordPayment(ctx context.Context, id uuid.UUID, req dto.PaymentUpdateRequest) error
	Get(ctx context.Context, id uuid.UUID) (*dto.NoteResponse, error)
	List(ctx context.Context, filter dto.NoteFilter) (*dto.NoteListResponse, error)
	// SlipPath returns the stored slip file path, empty until rendered.
	SlipPath(ctx context.Context, id uuid.UUID) (string, error)
}

type noteService struct {
	repo        repository.NoteRepository
	readingRepo repository.WeighbridgeRepository
	traderRepo  repository.TraderRepository
	qualityRepo repository.QualityRepository
	performance PerformanceService
	dispatcher  *worker.Dispatcher
	cfg         *config.Config
}

func NewNoteService(
	repo repository.NoteRepository,
	readingRepo repository.WeighbridgeRepository,
	traderRepo repository.TraderRepository,
	qualityRepo repository.QualityRepository,
	performance PerformanceService,
	dispatcher *worker.Dispatcher,
	cfg *config.Config,
) NoteService {
	return &noteService{
		repo:        repo,
		readingRepo: readingRepo,
		traderRepo:  traderRepo,
		qualityRepo: qualityRepo,
		performance: performance,
		dispatcher:  dispatcher,
		cfg:         cfg,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────
// Implicit PENDING_WEIGHING → WEIGHED: takes an unconverted reading plus the
// coffee-type / moisture / price inputs, runs the full weight derivation, and
// persists the note with its per-period sequence number in one transaction.

func (s *noteService) Create(ctx context.Context, req dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	readingID, err := uuid.Parse(req.WeighbridgeReadingID)
	if err != nil {
		return nil, domainerr.New(domainerr.KindValidation, "weighbridge_reading_id is not a valid UUID")
	}
	if req.MoistureContent < 0 || req.MoistureContent > 1000 {
		return nil, domainerr.New(domainerr.KindValidation, "moisture_content must be within [0, 1000] tenths")
	}
	if req.PricePerKgUGX <= 0 {
		return nil, domainerr.New(domainerr.KindValidation, "price_per_kg_ugx must be positive")
	}
	coffeeType := model.CoffeeType(req.CoffeeType)
	if coffeeType != model.CoffeeArabica && coffeeType != model.CoffeeRobusta {
		return nil, domainerr.Newf(domainerr.KindValidation, "unknown coffee type %q", req.CoffeeType)
	}

	reading, err := s.readingRepo.FindByID(ctx, readingID)
	if err != nil {
		return nil, domainerr.Newf(domainerr.KindReadingNotFound, "weighbridge reading %s not found", req.WeighbridgeReadingID)
	}
	if reading.TruckEntry == nil {
		return nil, domainerr.Newf(domainerr.KindEntryNotFound, "truck entry for reading %s not found", req.WeighbridgeReadingID)
	}

	// Pre-flight uniqueness check; the unique index on weighbridge_reading_id
	// is the real guard under concurrent creation.
	if _, err := s.repo.FindByReadingID(ctx, readingID); err == nil {
		return nil, domainerr.Newf(domainerr.KindReadingConverted, "reading %s already has a note", req.WeighbridgeReadingID)
	}

	trader, err := s.traderRepo.FindByID(ctx, reading.TruckEntry.TraderID)
	if err != nil {
		return nil, domainerr.Newf(domainerr.KindTraderNotFound, "trader %s not found", reading.TruckEntry.TraderID)
	}
	if trader.Status != model.TraderActive {
		return nil, domainerr.Newf(domainerr.KindTraderNotEligible, "trader %s is %s, only ACTIVE traders may deliver", trader.Name, trader.Status)
	}

	derived := weightcalc.DeriveFromNet(reading.NetWeightKg, req.MoistureContent, s.moistureBaseline(), req.PricePerKgUGX)

	var deliveryDate *time.Time
	if req.DeliveryDate != nil {
		d, err := time.Parse("2006-01-02", *req.DeliveryDate)
		if err != nil {
			return nil, domainerr.New(domainerr.KindValidation, "delivery_date must be YYYY-MM-DD")
		}
		deliveryDate = &d
	}

	var note model.BuyingWeightNote
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		period := repository.Period(time.Now())
		seq, err := s.repo.NextNoteNumber(ctx, tx, period)
		if err != nil {
			return err
		}

		note = model.BuyingWeightNote{
			NoteNumber:           repository.FormatNoteNumber(period, seq),
			WeighbridgeReadingID: readingID,
			TraderID:             trader.ID,
			CoffeeType:           coffeeType,
			MoistureContent:      req.MoistureContent,
			PricePerKgUGX:        req.PricePerKgUGX,
			NetWeightKg:          derived.NetWeightKg,
			DeductionKg:          derived.DeductionKg,
			FinalNetWeightKg:     derived.FinalNetWeightKg,
			TotalAmountUGX:       derived.TotalAmountUGX,
			Status:               model.StatusWeighed,
			PaymentStatus:        model.PaymentPending,
			OutturnGrade:         req.OutturnGrade,
			QualityAnalysisNo:    req.QualityAnalysisNo,
			BuyingCentre:         req.BuyingCentre,
			DeliveryDate:         deliveryDate,
		}
		return s.repo.CreateTx(ctx, tx, &note)
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			return nil, domainerr.Newf(domainerr.KindReadingConverted, "reading %s already has a note", req.WeighbridgeReadingID)
		}
		return nil, txErr
	}

	resp := noteToResponse(&note)
	resp.TraderName = trader.Name
	return resp, nil
}

// ── Update ────────────────────────────────────────────────────────────────────
// Moisture/price edits are only legal while the note is WEIGHED; each accepted
// edit re-runs the full derivation and overwrites all derived fields in one
// compare-and-set write.

func (s *noteService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domainerr.Newf(domainerr.KindNoteNotFound, "note %s not found", id)
	}
	if note.Status != model.StatusWeighed {
		return nil, domainerr.Newf(domainerr.KindNoteLocked, "note %s is %s, moisture/price are locked after WEIGHED", note.NoteNumber, note.Status)
	}

	moisture := note.MoistureContent
	if req.MoistureContent != nil {
		moisture = *req.MoistureContent
	}
	if moisture < 0 || moisture > 1000 {
		return nil, domainerr.New(domainerr.KindValidation, "moisture_content must be within [0, 1000] tenths")
	}
	price := note.PricePerKgUGX
	if req.PricePerKgUGX != nil {
		price = *req.PricePerKgUGX
	}
	if price <= 0 {
		return nil, domainerr.New(domainerr.KindValidation, "price_per_kg_ugx must be positive")
	}

	derived := weightcalc.DeriveFromNet(note.NetWeightKg, moisture, s.moistureBaseline(), price)

	rows, err := s.repo.CompareAndSwap(ctx, id, model.StatusWeighed, map[string]interface{}{
		"moisture_content":    moisture,
		"price_per_kg_ugx":    price,
		"deduction_kg":        derived.DeductionKg,
		"final_net_weight_kg": derived.FinalNetWeightKg,
		"total_amount_ugx":    derived.TotalAmountUGX,
	})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domainerr.Newf(domainerr.KindConcurrencyConflict, "note %s changed concurrently, re-read and retry", note.NoteNumber)
	}

	note.MoistureContent = moisture
	note.PricePerKgUGX = price
	note.DeductionKg = derived.DeductionKg
	note.FinalNetWeightKg = derived.FinalNetWeightKg
	note.TotalAmountUGX = derived.TotalAmountUGX
	return noteToResponse(note), nil
}

// ── Transition ────────────────────────────────────────────────────────────────
// The status write is a compare-and-set on (id, current status): of two
// concurrent transitions from the same source state exactly one wins; the
// loser gets ConcurrencyConflict and must re-read. Terminal transitions
// trigger the trader performance recompute after the write is committed.

func (s *noteService) Transition(ctx context.Context, id uuid.UUID, req dto.TransitionNoteRequest) (*dto.NoteResponse, error) {
	to := model.NoteStatus(req.To)
	if !to.Valid() {
		return nil, domainerr.Newf(domainerr.KindValidation, "unknown status %q", req.To)
	}

	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domainerr.Newf(domainerr.KindNoteNotFound, "note %s not found", id)
	}
	from := note.Status

	if !model.CanTransition(from, to) {
		return nil, domainerr.IllegalTransition(string(from), string(to))
	}

	updates := map[string]interface{}{"status": to}

	switch to {
	case model.StatusRejected:
		if req.Reason == nil || *req.Reason == "" {
			return nil, domainerr.New(domainerr.KindValidation, "a rejection reason is required")
		}
		updates["rejection_reason"] = *req.Reason

	case model.StatusPaymentApproved:
		qa, err := s.qualityRepo.FindByNoteID(ctx, id)
		if err != nil {
			return nil, domainerr.Newf(domainerr.KindIllegalTransition, "note %s has no recorded QC outcome", note.NoteNumber)
		}
		if qa.Outcome == model.QCReject {
			return nil, domainerr.Newf(domainerr.KindIllegalTransition, "note %s was rejected by QC", note.NoteNumber)
		}
		if qa.Outcome == model.QCBorderline && !s.borderlineApprovable() {
			return nil, domainerr.Newf(domainerr.KindIllegalTransition, "borderline QC outcome is not approvable under current policy")
		}
		updates["payment_status"] = model.PaymentApproved

	case model.StatusCompleted:
		if note.PaymentStatus != model.PaymentPaid {
			return nil, domainerr.Newf(domainerr.KindIllegalTransition, "note %s is not paid yet", note.NoteNumber)
		}
		updates["completed_at"] = time.Now()
	}

	rows, err := s.repo.CompareAndSwap(ctx, id, from, updates)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domainerr.Newf(domainerr.KindConcurrencyConflict, "note %s changed concurrently, re-read and retry", note.NoteNumber)
	}

	if to.IsTerminal() {
		s.triggerRecompute(ctx, note.TraderID)
	}
	if to == model.StatusCompleted && s.dispatcher != nil {
		// Nothing re-enqueues slip jobs, so a lost one must at least leave a trace.
		if err := s.dispatcher.EnqueueSlip(ctx, worker.SlipJobPayload{NoteID: note.ID.String()}); err != nil {
			log.Warn().Err(err).Str("note_id", note.ID.String()).Msg("failed to enqueue slip render job")
		}
	}

	note.Status = to
	if reason, ok := updates["rejection_reason"].(string); ok {
		note.RejectionReason = &reason
	}
	if ps, ok := updates["payment_status"].(model.PaymentStatus); ok {
		note.PaymentStatus = ps
	}
	if done, ok := updates["completed_at"].(time.Time); ok {
		note.CompletedAt = &done
	}
	return noteToResponse(note), nil
}

// ── Collaborator inputs ───────────────────────────────────────────────────────

// RecordQCResult stores the external QC module's verdict. Only meaningful
// while the note is awaiting quality control.
func (s *noteService) RecordQCResult(ctx context.Context, id, analystID uuid.UUID, req dto.QCResultRequest) error {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domainerr.Newf(domainerr.KindNoteNotFound, "note %s not found", id)
	}
	if note.Status != model.StatusAwaitingQC {
		return domainerr.Newf(domainerr.KindIllegalTransition, "note %s is %s, QC results are only accepted while AWAITING_QC", note.NoteNumber, note.Status)
	}
	outcome := model.QCOutcome(req.Outcome)
	if !outcome.Valid() {
		return domainerr.Newf(domainerr.KindValidation, "unknown QC outcome %q", req.Outcome)
	}

	return s.qualityRepo.Upsert(ctx, &model.QualityAnalysis{
		NoteID:      id,
		Outcome:     outcome,
		DefectCount: req.DefectCount,
		Score:       req.Score,
		AnalystID:   analystID,
		AnalyzedAt:  time.Now(),
	})
}

// RecordPayment marks the note PAID on confirmation from the external
// payments module. Guarded by compare-and-set on PAYMENT_APPROVED.
func (s *noteService) RecordPayment(ctx context.Context, id uuid.UUID, req dto.PaymentUpdateRequest) error {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domainerr.Newf(domainerr.KindNoteNotFound, "note %s not found", id)
	}
	if note.Status != model.StatusPaymentApproved {
		return domainerr.Newf(domainerr.KindIllegalTransition, "note %s is %s, payment confirmation requires PAYMENT_APPROVED", note.NoteNumber, note.Status)
	}

	rows, err := s.repo.CompareAndSwap(ctx, id, model.StatusPaymentApproved, map[string]interface{}{
		"payment_status": model.PaymentPaid,
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return domainerr.Newf(domainerr.KindConcurrencyConflict, "note %s changed concurrently, re-read and retry", note.NoteNumber)
	}
	return nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *noteService) Get(ctx context.Context, id uuid.UUID) (*dto.NoteResponse, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domainerr.Newf(domainerr.KindNoteNotFound, "note %s not found", id)
	}
	return noteToResponse(note), nil
}

func (s *noteService) List(ctx context.Context, filter dto.NoteFilter) (*dto.NoteListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	notes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.NoteResponse, 0, len(notes))
	for i := range notes {
		items = append(items, *noteToResponse(&notes[i]))
	}
	return &dto.NoteListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *noteService) SlipPath(ctx context.Context, id uuid.UUID) (string, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", domainerr.Newf(domainerr.KindNoteNotFound, "note %s not found", id)
	}
	if note.SlipPath == nil {
		return "", nil
	}
	return *note.SlipPath, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *noteService) moistureBaseline() int {
	if s.cfg != nil && s.cfg.MoistureBaseline > 0 {
		return s.cfg.MoistureBaseline
	}
	return weightcalc.DefaultMoistureBaseline
}

func (s *noteService) borderlineApprovable() bool {
	if s.cfg == nil {
		return true
	}
	return s.cfg.QCBorderlineApprovable
}

// triggerRecompute enqueues the trader performance recompute after the
// terminal transition is durably committed. Falls back to a synchronous
// recompute when no dispatcher is wired.
func (s *noteService) triggerRecompute(ctx context.Context, traderID uuid.UUID) {
	if s.dispatcher != nil {
		// The reconcile cron re-enqueues stale rollups, so this is recoverable.
		if err := s.dispatcher.EnqueuePerformance(ctx, worker.PerformanceJobPayload{TraderID: traderID.String()}); err != nil {
			log.Warn().Err(err).Str("trader_id", traderID.String()).Msg("failed to enqueue performance recompute")
		}
		return
	}
	if s.performance != nil {
		if err := s.performance.Recompute(ctx, traderID); err != nil {
			log.Warn().Err(err).Str("trader_id", traderID.String()).Msg("synchronous performance recompute failed")
		}
	}
}

func noteToResponse(n *model.BuyingWeightNote) *dto.NoteResponse {
	traderName := ""
	if n.Trader != nil {
		traderName = n.Trader.Name
	}
	var qcOutcome *string
	if n.QualityAnalysis != nil {
		o := string(n.QualityAnalysis.Outcome)
		qcOutcome = &o
	}
	var delivery *string
	if n.DeliveryDate != nil {
		d := n.DeliveryDate.Format("2006-01-02")
		delivery = &d
	}
	var completed *string
	if n.CompletedAt != nil {
		c := n.CompletedAt.Format(time.RFC3339)
		completed = &c
	}
	return &dto.NoteResponse{
		ID:                   n.ID.String(),
		NoteNumber:           n.NoteNumber,
		WeighbridgeReadingID: n.WeighbridgeReadingID.String(),
		TraderID:             n.TraderID.String(),
		TraderName:           traderName,
		CoffeeType:           string(n.CoffeeType),
		MoistureContent:      n.MoistureContent,
		PricePerKgUGX:        n.PricePerKgUGX,
		NetWeightKg:          n.NetWeightKg,
		DeductionKg:          n.DeductionKg,
		FinalNetWeightKg:     n.FinalNetWeightKg,
		TotalAmountUGX:       n.TotalAmountUGX,
		Status:               string(n.Status),
		PaymentStatus:        string(n.PaymentStatus),
		OutturnGrade:         n.OutturnGrade,
		QualityAnalysisNo:    n.QualityAnalysisNo,
		BuyingCentre:         n.BuyingCentre,
		DeliveryDate:         delivery,
		RejectionReason:      n.RejectionReason,
		QCOutcome:            qcOutcome,
		CreatedAt:            n.CreatedAt.Format(time.RFC3339),
		CompletedAt:          completed,
	}
}
