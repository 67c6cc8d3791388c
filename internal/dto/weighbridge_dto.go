package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RecordReadingRequest struct {
	TruckEntryID  string  `json:"truck_entry_id"  validate:"required,uuid"`
	GrossWeightKg int64   `json:"gross_weight_kg" validate:"required,gt=0"`
	TareWeightKg  int64   `json:"tare_weight_kg"  validate:"required,gt=0"`
	Notes         *string `json:"notes"           validate:"omitempty,max=500"`
}

// ReadingFilter is bound from the query string of GET /v1/weighbridge-readings.
type ReadingFilter struct {
	Unconverted bool `form:"unconverted"` // true = readings without a note yet
	Page        int  `form:"page,default=1"   validate:"min=1"`
	Limit       int  `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ReadingResponse struct {
	ID            string  `json:"id"`
	TruckEntryID  string  `json:"truck_entry_id"`
	TruckNumber   string  `json:"truck_number,omitempty"`
	TraderID      string  `json:"trader_id,omitempty"`
	GrossWeightKg int64   `json:"gross_weight_kg"`
	TareWeightKg  int64   `json:"tare_weight_kg"`
	NetWeightKg   int64   `json:"net_weight_kg"`
	OperatorID    string  `json:"operator_id"`
	Notes         *string `json:"notes"`
	WeighedAt     string  `json:"weighed_at"`
}

type ReadingListResponse struct {
	Data  []ReadingResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
