package database

import (
	"fmt"

	"github.com/yeremiapane/venue-booking/models"
	"github.com/yeremiapane/venue-booking/utils"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema and installs the change-feed triggers.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Table{},
		&models.Booking{},
		&models.DBChange{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	if err := ExecuteTriggers(db); err != nil {
		return fmt.Errorf("install triggers: %w", err)
	}
	return nil
}
