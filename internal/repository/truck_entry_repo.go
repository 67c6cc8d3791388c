package repository

import (
	"context"

	"github.com/colline-kooza/export-coffee-sub000/internal/dto"
	"github.com/colline-kooza/export-coffee-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TruckEntryRepository interface {
	Create(ctx context.Context, e *model.TruckEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TruckEntry, error)
	// MarkConsumedTx flips the consumed flag inside the reading-creation
	// transaction. Guarded on consumed=false so a concurrent second weighing
	// attempt affects zero rows.
	MarkConsumedTx(tx *gorm.DB, id uuid.UUID) (int64, error)
	List(ctx context.Context, filter dto.TruckEntryFilter) ([]model.TruckEntry, int64, error)
}

type truckEntryRepo struct{ db *gorm.DB }

func NewTruckEntryRepository(db *gorm.DB) TruckEntryRepository { return &truckEntryRepo{db: db} }

func (r *truckEntryRepo) Create(ctx context.Context, e *model.TruckEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *truckEntryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.TruckEntry, error) {
	var e model.TruckEntry
	err := r.db.WithContext(ctx).Preload("Trader").First(&e, id).Error
	return &e, err
}

func (r *truckEntryRepo) MarkConsumedTx(tx *gorm.DB, id uuid.UUID) (int64, error) {
	res := tx.Model(&model.TruckEntry{}).
		Where("id = ? AND consumed = false", id).
		Update("consumed", true)
	return res.RowsAffected, res.Error
}

func (r *truckEntryRepo) List(ctx context.Context, filter dto.TruckEntryFilter) ([]model.TruckEntry, int64, error) {
	var entries []model.TruckEntry
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.TruckEntry{})
	if filter.Pending {
		q = q.Where("consumed = false")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Trader").
		Order("arrived_at ASC").
		Offset(offset).Limit(filter.Limit).
		Find(&entries).Error

	return entries, total, err
}
