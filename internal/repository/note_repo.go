package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/colline-kooza/export-coffee-sub000/internal/dto"
	"github.com/colline-kooza/export-coffee-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, n *model.BuyingWeightNote) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.BuyingWeightNote, error)
	FindByReadingID(ctx context.Context, readingID uuid.UUID) (*model.BuyingWeightNote, error)
	// NextNoteNumber atomically increments the per-period counter inside the
	// creation transaction and returns the sequence value for that period.
	NextNoteNumber(ctx context.Context, tx *gorm.DB, period string) (int, error)
	// CompareAndSwap applies updates only when the note is still in expected
	// status. Returns the number of rows affected: 0 means the optimistic
	// lock was lost (or the note does not exist).
	CompareAndSwap(ctx context.Context, id uuid.UUID, expected model.NoteStatus, updates map[string]interface{}) (int64, error)
	List(ctx context.Context, filter dto.NoteFilter) ([]model.BuyingWeightNote, int64, error)
	// ListTerminalByTrader returns all COMPLETED/REJECTED notes for one
	// trader, QC analyses preloaded, for the performance recompute.
	ListTerminalByTrader(ctx context.Context, traderID uuid.UUID) ([]model.BuyingWeightNote, error)
	UpdateSlipPath(ctx context.Context, id uuid.UUID, path string) error
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type noteRepo struct{ db *gorm.DB }

func NewNoteRepository(db *gorm.DB) NoteRepository { return &noteRepo{db: db} }

func (r *noteRepo) DB() *gorm.DB { return r.db }

func (r *noteRepo) CreateTx(ctx context.Context, tx *gorm.DB, n *model.BuyingWeightNote) error {
	return tx.WithContext(ctx).Create(n).Error
}

func (r *noteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.BuyingWeightNote, error) {
	var n model.BuyingWeightNote
	err := r.db.WithContext(ctx).
		Preload("WeighbridgeReading.TruckEntry").
		Preload("Trader").
		Preload("QualityAnalysis").
		First(&n, id).Error
	return &n, err
}

func (r *noteRepo) FindByReadingID(ctx context.Context, readingID uuid.UUID) (*model.BuyingWeightNote, error) {
	var n model.BuyingWeightNote
	err := r.db.WithContext(ctx).Where("weighbridge_reading_id = ?", readingID).First(&n).Error
	return &n, err
}

func (r *noteRepo) NextNoteNumber(ctx context.Context, tx *gorm.DB, period string) (int, error) {
	// Upsert into bwn_sequences holds a row lock on the period for the rest
	// of the transaction, so numbers within a period never collide or repeat.
	var num int
	err := tx.WithContext(ctx).Raw(`
		INSERT INTO bwn_sequences (period, value) VALUES (?, 1)
		ON CONFLICT (period) DO UPDATE SET value = bwn_sequences.value + 1
		RETURNING value`, period).Scan(&num).Error
	return num, err
}

func (r *noteRepo) CompareAndSwap(ctx context.Context, id uuid.UUID, expected model.NoteStatus, updates map[string]interface{}) (int64, error) {
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	res := r.db.WithContext(ctx).Model(&model.BuyingWeightNote{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *noteRepo) List(ctx context.Context, filter dto.NoteFilter) ([]model.BuyingWeightNote, int64, error) {
	var notes []model.BuyingWeightNote
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.BuyingWeightNote{})

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.TraderID != "" {
		q = q.Where("trader_id = ?", filter.TraderID)
	}
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Trader").Preload("QualityAnalysis").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&notes).Error

	return notes, total, err
}

func (r *noteRepo) ListTerminalByTrader(ctx context.Context, traderID uuid.UUID) ([]model.BuyingWeightNote, error) {
	var notes []model.BuyingWeightNote
	err := r.db.WithContext(ctx).
		Where("trader_id = ? AND status IN ?", traderID,
			[]model.NoteStatus{model.StatusCompleted, model.StatusRejected}).
		Preload("QualityAnalysis").
		Preload("WeighbridgeReading.TruckEntry").
		Order("updated_at ASC").
		Find(&notes).Error
	return notes, err
}

func (r *noteRepo) UpdateSlipPath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).Model(&model.BuyingWeightNote{}).
		Where("id = ?", id).Update("slip_path", path).Error
}

// FormatNoteNumber renders the human-readable sequence, e.g. BWN-2025-10-0042.
func FormatNoteNumber(period string, seq int) string {
	return fmt.Sprintf("BWN-%s-%04d", period, seq)
}

// Period returns the YYYY-MM bucket a note number belongs to.
func Period(t time.Time) string { return t.Format("2006-01") }
