package model

import (
	"time"

	"github.com/google/uuid"
)

// NoteStatus is the closed set of buying weight note states. Transitions are
// governed exclusively by the noteTransitions table below — callers never
// compare or assign raw strings.
type NoteStatus string

const (
	StatusPendingWeighing NoteStatus = "PENDING_WEIGHING"
	StatusWeighed         NoteStatus = "WEIGHED"
	StatusMoistureTested  NoteStatus = "MOISTURE_TESTED"
	StatusPriceCalculated NoteStatus = "PRICE_CALCULATED"
	StatusAwaitingQC      NoteStatus = "AWAITING_QC"
	StatusPaymentApproved NoteStatus = "PAYMENT_APPROVED"
	StatusCompleted       NoteStatus = "COMPLETED"
	StatusRejected        NoteStatus = "REJECTED"
)

// PaymentStatus tracks the note's payment leg, driven by the external
// payments collaborator.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentApproved PaymentStatus = "APPROVED"
	PaymentPaid     PaymentStatus = "PAID"
)

// CoffeeType: the two traded species.
type CoffeeType string

const (
	CoffeeArabica CoffeeType = "ARABICA"
	CoffeeRobusta CoffeeType = "ROBUSTA"
)

// noteTransitions is the single source of truth for legal status moves.
// REJECTED is additionally reachable from every non-terminal state.
var noteTransitions = map[NoteStatus][]NoteStatus{
	StatusPendingWeighing: {StatusWeighed},
	StatusWeighed:         {StatusMoistureTested},
	StatusMoistureTested:  {StatusPriceCalculated},
	StatusPriceCalculated: {StatusAwaitingQC},
	StatusAwaitingQC:      {StatusPaymentApproved},
	StatusPaymentApproved: {StatusCompleted},
	StatusCompleted:       {},
	StatusRejected:        {},
}

// IsTerminal reports whether no further transition is possible.
func (s NoteStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// Valid reports whether s is one of the defined statuses.
func (s NoteStatus) Valid() bool {
	_, ok := noteTransitions[s]
	return ok
}

// CanTransition reports whether from → to is a legal move.
func CanTransition(from, to NoteStatus) bool {
	if to == StatusRejected {
		return !from.IsTerminal()
	}
	for _, next := range noteTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// BuyingWeightNote is the priced purchase record derived from a weighbridge
// reading. Created in WEIGHED state; mutated only through legal status
// transitions; never deleted — rejection is a terminal state, not a removal.
type BuyingWeightNote struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// NoteNumber is the human-readable sequence, e.g. BWN-2025-10-0042,
	// monotonically increasing within its year-month period.
	NoteNumber           string    `gorm:"uniqueIndex;not null"`
	WeighbridgeReadingID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	TraderID             uuid.UUID `gorm:"type:uuid;index;not null"`
	CoffeeType           CoffeeType `gorm:"type:varchar(10);not null"`
	// MoistureContent in tenths of a percent: 115 = 11.5%
	MoistureContent int `gorm:"not null"`
	// PricePerKgUGX and all amounts are whole UGX — exact integers, no floats
	PricePerKgUGX int64 `gorm:"not null"`

	// Derived by weightcalc at creation and on pre-lock edits
	NetWeightKg      int64 `gorm:"not null"`
	DeductionKg      int64 `gorm:"not null"`
	FinalNetWeightKg int64 `gorm:"not null"`
	TotalAmountUGX   int64 `gorm:"not null"`

	Status        NoteStatus    `gorm:"type:varchar(20);not null;default:'WEIGHED'"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(10);not null;default:'PENDING'"`

	OutturnGrade      *string `gorm:"type:varchar(10)"`
	QualityAnalysisNo *string `gorm:"type:varchar(40)"`
	BuyingCentre      *string
	DeliveryDate      *time.Time
	RejectionReason   *string
	SlipPath          *string `gorm:"column:slip_path"`
	CompletedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	WeighbridgeReading *WeighbridgeReading `gorm:"foreignKey:WeighbridgeReadingID"`
	Trader             *Trader             `gorm:"foreignKey:TraderID"`
	QualityAnalysis    *QualityAnalysis    `gorm:"foreignKey:NoteID"`
}

// TableName overrides GORM's default pluralization.
func (BuyingWeightNote) TableName() string { return "buying_weight_notes" }
