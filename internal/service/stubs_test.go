package service

import (
	"context"
	"errors"
	"time"

	"github.com/colline-kooza/export-coffee-sub000/internal/dto"
	"github.com/colline-kooza/export-coffee-sub000/internal/model"
	"github.com/colline-kooza/export-coffee-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errNotFound = errors.New("not found")

// ── Trader repo stub ─────────────────────────────────────────────────────────

type stubTraderRepo struct {
	traders map[uuid.UUID]*model.Trader
}

func newStubTraderRepo() *stubTraderRepo {
	return &stubTraderRepo{traders: make(map[uuid.UUID]*model.Trader)}
}

func (r *stubTraderRepo) Create(_ context.Context, t *model.Trader) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now()
	r.traders[t.ID] = t
	return nil
}

func (r *stubTraderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Trader, error) {
	t, ok := r.traders[id]
	if !ok {
		return nil, errNotFound
	}
	return t, nil
}

func (r *stubTraderRepo) List(_ context.Context, _ dto.TraderFilter) ([]model.Trader, int64, error) {
	out := make([]model.Trader, 0, len(r.traders))
	for _, t := range r.traders {
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r *stubTraderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.TraderStatus) (int64, error) {
	t, ok := r.traders[id]
	if !ok {
		return 0, nil
	}
	t.Status = status
	return 1, nil
}

var _ repository.TraderRepository = (*stubTraderRepo)(nil)

// ── Truck entry repo stub ────────────────────────────────────────────────────

type stubEntryRepo struct {
	entries map[uuid.UUID]*model.TruckEntry
}

func newStubEntryRepo() *stubEntryRepo {
	return &stubEntryRepo{entries: make(map[uuid.UUID]*model.TruckEntry)}
}

func (r *stubEntryRepo) Create(_ context.Context, e *model.TruckEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.entries[e.ID] = e
	return nil
}

func (r *stubEntryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.TruckEntry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, errNotFound
	}
	return e, nil
}

func (r *stubEntryRepo) MarkConsumedTx(_ *gorm.DB, id uuid.UUID) (int64, error) {
	e, ok := r.entries[id]
	if !ok || e.Consumed {
		return 0, nil
	}
	e.Consumed = true
	return 1, nil
}

func (r *stubEntryRepo) List(_ context.Context, filter dto.TruckEntryFilter) ([]model.TruckEntry, int64, error) {
	out := make([]model.TruckEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if filter.Pending && e.Consumed {
			continue
		}
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

var _ repository.TruckEntryRepository = (*stubEntryRepo)(nil)

// ── Weighbridge repo stub ────────────────────────────────────────────────────

type stubReadingRepo struct {
	readings map[uuid.UUID]*model.WeighbridgeReading
}

func newStubReadingRepo() *stubReadingRepo {
	return &stubReadingRepo{readings: make(map[uuid.UUID]*model.WeighbridgeReading)}
}

func (r *stubReadingRepo) CreateTx(_ context.Context, _ *gorm.DB, rd *model.WeighbridgeReading) error {
	if rd.ID == uuid.Nil {
		rd.ID = uuid.New()
	}
	r.readings[rd.ID] = rd
	return nil
}

func (r *stubReadingRepo) FindByID(_ context.Context, id uuid.UUID) (*model.WeighbridgeReading, error) {
	rd, ok := r.readings[id]
	if !ok {
		return nil, errNotFound
	}
	return rd, nil
}

func (r *stubReadingRepo) FindByEntryID(_ context.Context, entryID uuid.UUID) (*model.WeighbridgeReading, error) {
	for _, rd := range r.readings {
		if rd.TruckEntryID == entryID {
			return rd, nil
		}
	}
	return nil, errNotFound
}

func (r *stubReadingRepo) List(_ context.Context, _ dto.ReadingFilter) ([]model.WeighbridgeReading, int64, error) {
	out := make([]model.WeighbridgeReading, 0, len(r.readings))
	for _, rd := range r.readings {
		out = append(out, *rd)
	}
	return out, int64(len(out)), nil
}

func (r *stubReadingRepo) DB() *gorm.DB { return nil }

var _ repository.WeighbridgeRepository = (*stubReadingRepo)(nil)

// ── Note repo stub ───────────────────────────────────────────────────────────

type stubNoteRepo struct {
	notes map[uuid.UUID]*model.BuyingWeightNote
	seq   map[string]int
	// casFail forces the next CompareAndSwap to affect zero rows, simulating
	// a lost optimistic lock.
	casFail bool
}

func newStubNoteRepo() *stubNoteRepo {
	return &stubNoteRepo{
		notes: make(map[uuid.UUID]*model.BuyingWeightNote),
		seq:   make(map[string]int),
	}
}

func (r *stubNoteRepo) CreateTx(_ context.Context, _ *gorm.DB, n *model.BuyingWeightNote) error {
	for _, existing := range r.notes {
		if existing.WeighbridgeReadingID == n.WeighbridgeReadingID {
			return gorm.ErrDuplicatedKey
		}
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	r.notes[n.ID] = n
	return nil
}

func (r *stubNoteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.BuyingWeightNote, error) {
	n, ok := r.notes[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *stubNoteRepo) FindByReadingID(_ context.Context, readingID uuid.UUID) (*model.BuyingWeightNote, error) {
	for _, n := range r.notes {
		if n.WeighbridgeReadingID == readingID {
			cp := *n
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (r *stubNoteRepo) NextNoteNumber(_ context.Context, _ *gorm.DB, period string) (int, error) {
	r.seq[period]++
	return r.seq[period], nil
}

func (r *stubNoteRepo) CompareAndSwap(_ context.Context, id uuid.UUID, expected model.NoteStatus, updates map[string]interface{}) (int64, error) {
	if r.casFail {
		r.casFail = false
		return 0, nil
	}
	n, ok := r.notes[id]
	if !ok || n.Status != expected {
		return 0, nil
	}
	if v, ok := updates["status"].(model.NoteStatus); ok {
		n.Status = v
	}
	if v, ok := updates["payment_status"].(model.PaymentStatus); ok {
		n.PaymentStatus = v
	}
	if v, ok := updates["rejection_reason"].(string); ok {
		n.RejectionReason = &v
	}
	if v, ok := updates["completed_at"].(time.Time); ok {
		n.CompletedAt = &v
	}
	if v, ok := updates["moisture_content"].(int); ok {
		n.MoistureContent = v
	}
	if v, ok := updates["price_per_kg_ugx"].(int64); ok {
		n.PricePerKgUGX = v
	}
	if v, ok := updates["deduction_kg"].(int64); ok {
		n.DeductionKg = v
	}
	if v, ok := updates["final_net_weight_kg"].(int64); ok {
		n.FinalNetWeightKg = v
	}
	if v, ok := updates["total_amount_ugx"].(int64); ok {
		n.TotalAmountUGX = v
	}
	n.UpdatedAt = time.Now()
	return 1, nil
}

func (r *stubNoteRepo) List(_ context.Context, _ dto.NoteFilter) ([]model.BuyingWeightNote, int64, error) {
	out := make([]model.BuyingWeightNote, 0, len(r.notes))
	for _, n := range r.notes {
		out = append(out, *n)
	}
	return out, int64(len(out)), nil
}

func (r *stubNoteRepo) ListTerminalByTrader(_ context.Context, traderID uuid.UUID) ([]model.BuyingWeightNote, error) {
	var out []model.BuyingWeightNote
	for _, n := range r.notes {
		if n.TraderID == traderID && n.Status.IsTerminal() {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *stubNoteRepo) UpdateSlipPath(_ context.Context, id uuid.UUID, path string) error {
	n, ok := r.notes[id]
	if !ok {
		return errNotFound
	}
	n.SlipPath = &path
	return nil
}

func (r *stubNoteRepo) DB() *gorm.DB { return nil }

var _ repository.NoteRepository = (*stubNoteRepo)(nil)

// ── Quality repo stub ────────────────────────────────────────────────────────

type stubQualityRepo struct {
	byNote map[uuid.UUID]*model.QualityAnalysis
}

func newStubQualityRepo() *stubQualityRepo {
	return &stubQualityRepo{byNote: make(map[uuid.UUID]*model.QualityAnalysis)}
}

func (r *stubQualityRepo) Upsert(_ context.Context, qa *model.QualityAnalysis) error {
	if qa.ID == uuid.Nil {
		qa.ID = uuid.New()
	}
	r.byNote[qa.NoteID] = qa
	return nil
}

func (r *stubQualityRepo) FindByNoteID(_ context.Context, noteID uuid.UUID) (*model.QualityAnalysis, error) {
	qa, ok := r.byNote[noteID]
	if !ok {
		return nil, errNotFound
	}
	return qa, nil
}

var _ repository.QualityRepository = (*stubQualityRepo)(nil)

// ── Performance repo stub ────────────────────────────────────────────────────

type stubPerfRepo struct {
	rollups map[uuid.UUID]*model.TraderPerformance
	// replaceCalls counts Replace invocations for recompute assertions.
	replaceCalls int
}

func newStubPerfRepo() *stubPerfRepo {
	return &stubPerfRepo{rollups: make(map[uuid.UUID]*model.TraderPerformance)}
}

func (r *stubPerfRepo) Replace(_ context.Context, p *model.TraderPerformance) error {
	r.replaceCalls++
	r.rollups[p.TraderID] = p
	return nil
}

func (r *stubPerfRepo) FindByTrader(_ context.Context, traderID uuid.UUID) (*model.TraderPerformance, error) {
	p, ok := r.rollups[traderID]
	if !ok {
		return nil, errNotFound
	}
	return p, nil
}

func (r *stubPerfRepo) ListStaleTraderIDs(_ context.Context, _ int) ([]uuid.UUID, error) {
	return nil, nil
}

var _ repository.PerformanceRepository = (*stubPerfRepo)(nil)
