// handlers/export.go - Excel report download
package handlers

import (
	"timetracker/middleware"
	"timetracker/services"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportTasks returns the xlsx report for the actor's managed teams
// GET /api/export
func ExportTasks(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	data, err := exportService.Export(userID)
	if err != nil {
		return serviceError(c, err)
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename=`+services.ExportFilename)
	return c.Send(data)
}
