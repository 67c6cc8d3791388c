package infra

import (
	"fmt"
	"time"

	"github.com/colline-kooza/export-coffee-sub000/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the postgres connection pool and runs migrations.
// TranslateError is required so unique violations surface as
// gorm.ErrDuplicatedKey instead of driver-specific errors.
func NewDatabase(databaseURL string, env string) (*gorm.DB, error) {
	logLevel := logger.Warn
	if env == "development" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Msg("database connected and migrated")
	return db, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Trader{},
		&model.TruckEntry{},
		&model.WeighbridgeReading{},
		&model.BuyingWeightNote{},
		&model.QualityAnalysis{},
		&model.TraderPerformance{},
	); err != nil {
		return err
	}

	for _, p := range migrationPatches {
		if err := db.Exec(p).Error; err != nil {
			return err
		}
	}
	return nil
}

// Schema pieces AutoMigrate cannot express. All idempotent.
var migrationPatches = []string{
	// Per-period note number counters, bumped inside the creation
	// transaction via upsert.
	`CREATE TABLE IF NOT EXISTS bwn_sequences (
		period VARCHAR(7) PRIMARY KEY,
		value  INTEGER NOT NULL DEFAULT 0
	)`,
	// Speeds up the "unconverted readings" listing on the operator screen.
	`CREATE INDEX IF NOT EXISTS idx_readings_weighed_at
		ON weighbridge_readings (weighed_at)`,
}
