package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegisterTruckEntryRequest struct {
	TruckNumber string  `json:"truck_number" validate:"required,min=3,max=20"`
	DriverName  string  `json:"driver_name"  validate:"required,min=2,max=100"`
	DriverPhone *string `json:"driver_phone" validate:"omitempty,min=7,max=20"`
	TraderID    string  `json:"trader_id"    validate:"required,uuid"`
}

// TruckEntryFilter is bound from the query string of GET /v1/truck-entries.
type TruckEntryFilter struct {
	Pending bool `form:"pending"` // true = only entries awaiting a reading
	Page    int  `form:"page,default=1"   validate:"min=1"`
	Limit   int  `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TruckEntryResponse struct {
	ID          string  `json:"id"`
	TruckNumber string  `json:"truck_number"`
	DriverName  string  `json:"driver_name"`
	DriverPhone *string `json:"driver_phone"`
	TraderID    string  `json:"trader_id"`
	TraderName  string  `json:"trader_name,omitempty"`
	Consumed    bool    `json:"consumed"`
	ArrivedAt   string  `json:"arrived_at"`
}

type TruckEntryListResponse struct {
	Data  []TruckEntryResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
