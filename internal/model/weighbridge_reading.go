package model

import (
	"time"

	"github.com/google/uuid"
)

// WeighbridgeReading stores one gross/tare measurement per truck entry.
// NetWeightKg is persisted redundantly but must always equal gross - tare;
// the repository never writes it independently of the other two.
type WeighbridgeReading struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// One reading per entry, enforced by the unique index.
	TruckEntryID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	GrossWeightKg int64     `gorm:"not null"`
	TareWeightKg  int64     `gorm:"not null"`
	NetWeightKg   int64     `gorm:"not null"`
	OperatorID    uuid.UUID `gorm:"type:uuid;not null"`
	WeighedAt     time.Time `gorm:"not null"`
	Notes         *string
	CreatedAt     time.Time

	TruckEntry *TruckEntry `gorm:"foreignKey:TruckEntryID"`
}

// TableName overrides GORM's default pluralization.
func (WeighbridgeReading) TableName() string { return "weighbridge_readings" }
