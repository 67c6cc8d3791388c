package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TraderPerformance is the one-per-trader rollup recomputed from scratch
// whenever a note reaches a terminal state. Full replacement, never patched
// incrementally, so a missed update can never leave drift behind.
type TraderPerformance struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TraderID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	TotalDeliveries     int   `gorm:"not null"`
	TotalVolumeKg       int64 `gorm:"not null"`
	AcceptedDeliveries  int   `gorm:"not null"`
	RejectedDeliveries  int   `gorm:"not null"`
	BorderlineDeliveries int  `gorm:"not null"`

	// Ratios and scores carry two decimal places
	AcceptanceRatePct       decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	QualityConsistencyScore decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	AvgDefectCount          decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	AvgMoistureTenths       decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	OnTimeRatePct           decimal.Decimal `gorm:"type:decimal(5,2);not null"`

	LastDeliveryAt *time.Time
	ComputedAt     time.Time `gorm:"not null"`

	Trader *Trader `gorm:"foreignKey:TraderID"`
}

// TableName overrides GORM's default pluralization.
func (TraderPerformance) TableName() string { return "trader_performances" }
