// handlers/handlers.go - Handler wiring
package handlers

import (
	"timetracker/services"

	"gorm.io/gorm"
)

var (
	db              *gorm.DB
	teamService     *services.TeamService
	taskService     *services.TaskService
	categoryService *services.CategoryService
	exportService   *services.ExportService
)

// InitHandlers wires every handler's service against the given
// connection. Tests call this with an in-memory database.
func InitHandlers(conn *gorm.DB) {
	db = conn
	teamService = services.NewTeamService(conn)
	taskService = services.NewTaskService(conn)
	categoryService = services.NewCategoryService(conn)
	exportService = services.NewExportService(conn)
}
