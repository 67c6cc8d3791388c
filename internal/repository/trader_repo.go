package repository

import (
	"context"

	"github.com/colline-kooza/export-coffee-sub000/internal/dto"
	"github.com/colline-kooza/export-coffee-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TraderRepository interface {
	Create(ctx context.Context, t *model.Trader) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Trader, error)
	List(ctx context.Context, filter dto.TraderFilter) ([]model.Trader, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.TraderStatus) (int64, error)
}

type traderRepo struct{ db *gorm.DB }

func NewTraderRepository(db *gorm.DB) TraderRepository { return &traderRepo{db: db} }

func (r *traderRepo) Create(ctx context.Context, t *model.Trader) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *traderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Trader, error) {
	var t model.Trader
	err := r.db.WithContext(ctx).First(&t, id).Error
	return &t, err
}

func (r *traderRepo) List(ctx context.Context, filter dto.TraderFilter) ([]model.Trader, int64, error) {
	var traders []model.Trader
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Trader{})
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("name ASC").
		Offset(offset).Limit(filter.Limit).
		Find(&traders).Error

	return traders, total, err
}

func (r *traderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TraderStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Trader{}).
		Where("id = ?", id).Update("status", status)
	return res.RowsAffected, res.Error
}
