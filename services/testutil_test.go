package services

import (
	"testing"
	"time"

	"timetracker/database"
	"timetracker/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory database with the full schema. The
// pool is pinned to one connection so every query sees the same
// in-memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Password: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// createTeam creates a team with the given manager and members.
func createTeam(t *testing.T, db *gorm.DB, name string, managerID uint, memberIDs ...uint) *models.Team {
	t.Helper()
	team := &models.Team{Name: name, ManagerID: managerID}
	if err := db.Create(team).Error; err != nil {
		t.Fatalf("create team %s: %v", name, err)
	}
	for _, id := range memberIDs {
		member := &models.TeamMember{TeamID: team.ID, UserID: id, JoinedAt: time.Now()}
		if err := db.Create(member).Error; err != nil {
			t.Fatalf("add member %d to %s: %v", id, name, err)
		}
	}
	return team
}

func createCategory(t *testing.T, db *gorm.DB, teamID uint, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, TeamID: teamID}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return category
}

func createTask(t *testing.T, db *gorm.DB, teamID, ownerID, categoryID uint, title string, start, end *time.Time) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:      title,
		TeamID:     teamID,
		OwnerID:    ownerID,
		CategoryID: categoryID,
		StartTime:  start,
		EndTime:    end,
		Status:     models.StatusFor(start, end),
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("create task %s: %v", title, err)
	}
	return task
}
