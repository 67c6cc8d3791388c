package model

import (
	"time"

	"github.com/google/uuid"
)

// TruckEntry is the gate registration of an arriving truck. Immutable after
// creation except for the Consumed flag, which flips exactly once when a
// weighbridge reading is recorded against it.
type TruckEntry struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TruckNumber       string    `gorm:"not null;index"`
	DriverName        string    `gorm:"not null"`
	DriverPhone       *string   `gorm:"type:varchar(20)"`
	TraderID          uuid.UUID `gorm:"type:uuid;index;not null"`
	SecurityOfficerID uuid.UUID `gorm:"type:uuid;not null"`
	ArrivedAt         time.Time `gorm:"not null"`
	Consumed          bool      `gorm:"not null;default:false;index"`
	CreatedAt         time.Time

	Trader *Trader `gorm:"foreignKey:TraderID"`
}

// TableName overrides GORM's default pluralization.
func (TruckEntry) TableName() string { return "truck_entries" }
