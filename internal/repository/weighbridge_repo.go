package repository

import (
	"context"

	"github.com/colline-kooza/export-coffee-sub000/internal/dto"
	"github.com/colline-kooza/export-coffee-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WeighbridgeRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, rd *model.WeighbridgeReading) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.WeighbridgeReading, error)
	FindByEntryID(ctx context.Context, entryID uuid.UUID) (*model.WeighbridgeReading, error)
	List(ctx context.Context, filter dto.ReadingFilter) ([]model.WeighbridgeReading, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type weighbridgeRepo struct{ db *gorm.DB }

func NewWeighbridgeRepository(db *gorm.DB) WeighbridgeRepository { return &weighbridgeRepo{db: db} }

func (r *weighbridgeRepo) DB() *gorm.DB { return r.db }

func (r *weighbridgeRepo) CreateTx(ctx context.Context, tx *gorm.DB, rd *model.WeighbridgeReading) error {
	return tx.WithContext(ctx).Create(rd).Error
}

func (r *weighbridgeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.WeighbridgeReading, error) {
	var rd model.WeighbridgeReading
	err := r.db.WithContext(ctx).Preload("TruckEntry").First(&rd, id).Error
	return &rd, err
}

func (r *weighbridgeRepo) FindByEntryID(ctx context.Context, entryID uuid.UUID) (*model.WeighbridgeReading, error) {
	var rd model.WeighbridgeReading
	err := r.db.WithContext(ctx).Where("truck_entry_id = ?", entryID).First(&rd).Error
	return &rd, err
}

func (r *weighbridgeRepo) List(ctx context.Context, filter dto.ReadingFilter) ([]model.WeighbridgeReading, int64, error) {
	var readings []model.WeighbridgeReading
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.WeighbridgeReading{})
	if filter.Unconverted {
		q = q.Where(`NOT EXISTS (
			SELECT 1 FROM buying_weight_notes n
			WHERE n.weighbridge_reading_id = weighbridge_readings.id)`)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("TruckEntry").
		Order("weighed_at ASC").
		Offset(offset).Limit(filter.Limit).
		Find(&readings).Error

	return readings, total, err
}
