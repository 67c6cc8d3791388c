package repository

import (
	"context"

	"github.com/colline-kooza/export-coffee-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QualityRepository interface {
	// Upsert keeps one analysis per note; a re-submitted verdict overwrites
	// the previous one while the note is still in QC.
	Upsert(ctx context.Context, qa *model.QualityAnalysis) error
	FindByNoteID(ctx context.Context, noteID uuid.UUID) (*model.QualityAnalysis, error)
}

type qualityRepo struct{ db *gorm.DB }

func NewQualityRepository(db *gorm.DB) QualityRepository { return &qualityRepo{db: db} }

func (r *qualityRepo) Upsert(ctx context.Context, qa *model.QualityAnalysis) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "note_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"outcome", "defect_count", "score", "analyst_id", "analyzed_at"}),
	}).Create(qa).Error
}

func (r *qualityRepo) FindByNoteID(ctx context.Context, noteID uuid.UUID) (*model.QualityAnalysis, error) {
	var qa model.QualityAnalysis
	err := r.db.WithContext(ctx).Where("note_id = ?", noteID).First(&qa).Error
	return &qa, err
}
