package repository

import (
	"context"

	"github.com/colline-kooza/export-coffee-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PerformanceRepository interface {
	// Replace writes the full rollup, inserting or overwriting the trader's
	// row in one statement. Last writer wins — safe because every write is a
	// complete recomputation, never a delta.
	Replace(ctx context.Context, p *model.TraderPerformance) error
	FindByTrader(ctx context.Context, traderID uuid.UUID) (*model.TraderPerformance, error)
	// ListStaleTraderIDs returns traders whose newest terminal note postdates
	// their rollup (or who have terminal notes but no rollup at all). Used by
	// the reconcile cron to catch recompute jobs lost between commit and
	// enqueue.
	ListStaleTraderIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
}

type performanceRepo struct{ db *gorm.DB }

func NewPerformanceRepository(db *gorm.DB) PerformanceRepository { return &performanceRepo{db: db} }

func (r *performanceRepo) Replace(ctx context.Context, p *model.TraderPerformance) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "trader_id"}},
		UpdateAll: true,
	}).Create(p).Error
}

func (r *performanceRepo) FindByTrader(ctx context.Context, traderID uuid.UUID) (*model.TraderPerformance, error) {
	var p model.TraderPerformance
	err := r.db.WithContext(ctx).Where("trader_id = ?", traderID).First(&p).Error
	return &p, err
}

func (r *performanceRepo) ListStaleTraderIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Raw(`
		SELECT n.trader_id
		FROM buying_weight_notes n
		LEFT JOIN trader_performances p ON p.trader_id = n.trader_id
		WHERE n.status IN ('COMPLETED', 'REJECTED')
		GROUP BY n.trader_id, p.computed_at
		HAVING p.computed_at IS NULL OR MAX(n.updated_at) > p.computed_at
		LIMIT ?`, limit).Scan(&ids).Error
	return ids, err
}
