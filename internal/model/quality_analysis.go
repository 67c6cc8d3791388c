package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QCOutcome is the verdict supplied by the external quality-control module.
type QCOutcome string

const (
	QCPass       QCOutcome = "PASS"
	QCBorderline QCOutcome = "BORDERLINE"
	QCReject     QCOutcome = "REJECT"
)

// Valid reports whether o is a defined outcome.
func (o QCOutcome) Valid() bool {
	switch o {
	case QCPass, QCBorderline, QCReject:
		return true
	}
	return false
}

// QualityAnalysis records the QC collaborator's verdict for one note.
// Consumed read-only by the performance aggregator.
type QualityAnalysis struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NoteID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Outcome     QCOutcome `gorm:"type:varchar(10);not null"`
	DefectCount int       `gorm:"not null"`
	// Score 0-100 with two decimals
	Score      decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	AnalystID  uuid.UUID       `gorm:"type:uuid;not null"`
	AnalyzedAt time.Time       `gorm:"not null"`
	CreatedAt  time.Time
}

// TableName overrides GORM's default pluralization.
func (QualityAnalysis) TableName() string { return "quality_analyses" }
