package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateNoteRequest struct {
	WeighbridgeReadingID string `json:"weighbridge_reading_id" validate:"required,uuid"`
	CoffeeType           string `json:"coffee_type"            validate:"required,oneof=ARABICA ROBUSTA"`
	// MoistureContent in tenths of a percent: 115 = 11.5%
	MoistureContent   int     `json:"moisture_content"  validate:"min=0,max=1000"`
	PricePerKgUGX     int64   `json:"price_per_kg_ugx"  validate:"required,gt=0"`
	OutturnGrade      *string `json:"outturn_grade"     validate:"omitempty,max=10"`
	QualityAnalysisNo *string `json:"quality_analysis_no" validate:"omitempty,max=40"`
	BuyingCentre      *string `json:"buying_centre"     validate:"omitempty,max=100"`
	DeliveryDate      *string `json:"delivery_date"     validate:"omitempty,datetime=2006-01-02"`
}

// UpdateNoteRequest edits moisture and/or price. Only legal while the note is
// still WEIGHED; each accepted edit re-runs the full derivation.
type UpdateNoteRequest struct {
	MoistureContent *int   `json:"moisture_content" validate:"omitempty,min=0,max=1000"`
	PricePerKgUGX   *int64 `json:"price_per_kg_ugx" validate:"omitempty,gt=0"`
}

type TransitionNoteRequest struct {
	To string `json:"to" validate:"required"`
	// Reason is mandatory and non-empty when to=REJECTED; the service enforces
	// presence, the tag only bounds length.
	Reason *string `json:"reason" validate:"omitempty,min=1,max=500"`
}

type QCResultRequest struct {
	Outcome     string          `json:"outcome"      validate:"required,oneof=PASS BORDERLINE REJECT"`
	DefectCount int             `json:"defect_count" validate:"min=0"`
	Score       decimal.Decimal `json:"score"        validate:"min=0,max=100"`
}

type PaymentUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=PAID"`
}

// NoteFilter is bound from the query string of GET /v1/buying-weight-notes.
type NoteFilter struct {
	Status   string `form:"status"`    // note status or "all"
	TraderID string `form:"trader_id"` // optional UUID
	Date     string `form:"date"`      // YYYY-MM-DD on created_at
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type NoteResponse struct {
	ID                   string  `json:"id"`
	NoteNumber           string  `json:"note_number"`
	WeighbridgeReadingID string  `json:"weighbridge_reading_id"`
	TraderID             string  `json:"trader_id"`
	TraderName           string  `json:"trader_name,omitempty"`
	CoffeeType           string  `json:"coffee_type"`
	MoistureContent      int     `json:"moisture_content"`
	PricePerKgUGX        int64   `json:"price_per_kg_ugx"`
	NetWeightKg          int64   `json:"net_weight_kg"`
	DeductionKg          int64   `json:"deduction_kg"`
	FinalNetWeightKg     int64   `json:"final_net_weight_kg"`
	TotalAmountUGX       int64   `json:"total_amount_ugx"`
	Status               string  `json:"status"`
	PaymentStatus        string  `json:"payment_status"`
	OutturnGrade         *string `json:"outturn_grade"`
	QualityAnalysisNo    *string `json:"quality_analysis_no"`
	BuyingCentre         *string `json:"buying_centre"`
	DeliveryDate         *string `json:"delivery_date"`
	RejectionReason      *string `json:"rejection_reason"`
	QCOutcome            *string `json:"qc_outcome,omitempty"`
	CreatedAt            string  `json:"created_at"`
	CompletedAt          *string `json:"completed_at"`
}

type NoteListResponse struct {
	Data  []NoteResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
