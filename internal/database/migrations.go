package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"datadesigner/internal/models"
)

// RunMigrations creates or updates every table the API uses.
func RunMigrations(db *gorm.DB, log logrus.FieldLogger) error {
	migrations := []any{
		&models.User{},
		&models.Project{},
		&models.Element{},
		&models.Connection{},
	}

	for i, m := range migrations {
		log.Debugf("Running migration %d/%d", i+1, len(migrations))
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Info("All migrations completed successfully")
	return nil
}
