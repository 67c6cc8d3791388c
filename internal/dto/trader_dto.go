package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateTraderRequest struct {
	Name             string  `json:"name"  validate:"required,min=2,max=150"`
	Phone            *string `json:"phone" validate:"omitempty,min=7,max=20"`
	PaymentTermsDays int     `json:"payment_terms_days" validate:"min=0,max=90"`
	Region           *string `json:"region" validate:"omitempty,max=100"`
}

type UpdateTraderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE SUSPENDED BLACKLISTED UNDER_REVIEW"`
}

// TraderFilter is bound from the query string of GET /v1/traders.
type TraderFilter struct {
	Status string `form:"status"` // trader status or "all"
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TraderResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Phone            *string `json:"phone"`
	Status           string  `json:"status"`
	PaymentTermsDays int     `json:"payment_terms_days"`
	Region           *string `json:"region"`
	CreatedAt        string  `json:"created_at"`
}

type TraderListResponse struct {
	Data  []TraderResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// PerformanceResponse mirrors the TraderPerformance rollup.
type PerformanceResponse struct {
	TraderID                string          `json:"trader_id"`
	TotalDeliveries         int             `json:"total_deliveries"`
	TotalVolumeKg           int64           `json:"total_volume_kg"`
	AcceptedDeliveries      int             `json:"accepted_deliveries"`
	RejectedDeliveries      int             `json:"rejected_deliveries"`
	BorderlineDeliveries    int             `json:"borderline_deliveries"`
	AcceptanceRatePct       decimal.Decimal `json:"acceptance_rate_pct"`
	QualityConsistencyScore decimal.Decimal `json:"quality_consistency_score"`
	AvgDefectCount          decimal.Decimal `json:"avg_defect_count"`
	AvgMoistureTenths       decimal.Decimal `json:"avg_moisture_tenths"`
	OnTimeRatePct           decimal.Decimal `json:"on_time_rate_pct"`
	LastDeliveryAt          *string         `json:"last_delivery_at"`
	ComputedAt              string          `json:"computed_at"`
}
