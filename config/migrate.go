package config

import (
	"quizsystem/models"

	"gorm.io/gorm"
)

// Migrate creates the schema and the uniqueness guarantees the
// participation engine relies on. Concurrent starts and double submits
// race on check-then-act reads; the unique indexes below make the store
// the arbiter, and violations surface as conflicts.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Quiz{},
		&models.Question{},
		&models.Answer{},
		&models.Participation{},
		&models.UserResponse{},
		&models.Admin{},
	)
	if err != nil {
		return err
	}

	// Partial indexes: one incomplete and one completed attempt per
	// (user, quiz) pair. AutoMigrate cannot express these.
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_participations_one_incomplete
			ON participations (user_id, quiz_id) WHERE NOT completed`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_participations_one_completed
			ON participations (user_id, quiz_id) WHERE completed`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
