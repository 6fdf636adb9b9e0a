// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"timetracker/models"

	"gorm.io/gorm"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("Running database migrations...")

	if err := Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed")
}

// Migrate creates the schema on the given connection. Split out from
// RunMigrations so tests can migrate an in-memory database.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Category{},
		&models.Task{},
	); err != nil {
		return err
	}

	return createIndexes(db)
}

// createIndexes adds indexes AutoMigrate does not cover.
func createIndexes(db *gorm.DB) error {
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_teams_manager ON teams(manager_id)",
		"CREATE INDEX IF NOT EXISTS idx_tasks_team_created ON tasks(team_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_tasks_owner ON tasks(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_tasks_start_time ON tasks(start_time)",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
