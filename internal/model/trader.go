package model

import (
	"time"

	"github.com/google/uuid"
)

// TraderStatus gates note creation: only ACTIVE traders may deliver.
type TraderStatus string

const (
	TraderActive      TraderStatus = "ACTIVE"
	TraderSuspended   TraderStatus = "SUSPENDED"
	TraderBlacklisted TraderStatus = "BLACKLISTED"
	TraderUnderReview TraderStatus = "UNDER_REVIEW"
)

// Valid reports whether s is a defined trader status.
func (s TraderStatus) Valid() bool {
	switch s {
	case TraderActive, TraderSuspended, TraderBlacklisted, TraderUnderReview:
		return true
	}
	return false
}

// Trader is a registered coffee supplier.
type Trader struct {
	ID     uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name   string       `gorm:"not null;index"`
	Phone  *string      `gorm:"type:varchar(20)"`
	Status TraderStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	// PaymentTermsDays: agreed settlement window, e.g. 7 = net-7
	PaymentTermsDays int `gorm:"not null;default:7"`
	Region           *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
