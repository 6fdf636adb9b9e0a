// handlers/tasks.go - Task listing and lifecycle HTTP handlers
package handlers

import (
	"strconv"
	"time"

	"timetracker/middleware"
	"timetracker/services"

	"github.com/gofiber/fiber/v2"
)

const dateFormat = "2006-01-02"

// ListTasks returns one page of the actor's visible tasks
// GET /api/tasks?team=&start_date=&end_date=&page=
func ListTasks(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var params services.ListParams
	badTeam := false

	if raw := c.Query("team"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			badTeam = true
		} else {
			params.TeamID = uint(id)
		}
	}

	if raw := c.Query("start_date"); raw != "" {
		d, err := time.Parse(dateFormat, raw)
		if err != nil {
			return fail(c, 400, "Invalid start_date, expected YYYY-MM-DD")
		}
		params.StartDate = &d
	}
	if raw := c.Query("end_date"); raw != "" {
		d, err := time.Parse(dateFormat, raw)
		if err != nil {
			return fail(c, 400, "Invalid end_date, expected YYYY-MM-DD")
		}
		params.EndDate = &d
	}

	// Non-numeric pages clamp to the first page, out-of-range pages
	// clamp inside the service.
	params.Page, _ = strconv.Atoi(c.Query("page"))

	page, err := taskService.List(userID, params)
	if err != nil {
		return serviceError(c, err)
	}
	if badTeam {
		page.Warning = "Invalid team selected."
	}

	return c.JSON(fiber.Map{
		"success": true,
		"page":    page,
	})
}

// CreateTask creates a task in a team the actor belongs to
// POST /api/teams/:id/tasks
func CreateTask(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	teamID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return fail(c, 400, "Invalid team ID")
	}

	var input services.TaskInput
	if err := c.BodyParser(&input); err != nil {
		return fail(c, 400, "Invalid request body")
	}

	task, err := taskService.Create(userID, uint(teamID), input)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"message": "Task created successfully!",
		"task":    task,
	})
}

// GetTask returns a single task for editing
// GET /api/tasks/:id
func GetTask(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	taskID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return fail(c, 400, "Invalid task ID")
	}

	task, err := taskService.Get(userID, uint(taskID))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"task":    task,
	})
}

// UpdateTask applies a manual edit
// PUT /api/tasks/:id
func UpdateTask(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	taskID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return fail(c, 400, "Invalid task ID")
	}

	var input services.TaskInput
	if err := c.BodyParser(&input); err != nil {
		return fail(c, 400, "Invalid request body")
	}

	task, err := taskService.Update(userID, uint(taskID), input)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Task updated successfully!",
		"task":    task,
	})
}

// DeleteTask removes a task
// DELETE /api/tasks/:id
func DeleteTask(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	taskID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return fail(c, 400, "Invalid task ID")
	}

	if err := taskService.Delete(userID, uint(taskID)); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Task deleted successfully!",
	})
}

// StartTask starts the stopwatch (owner only)
// POST /api/tasks/:id/start
func StartTask(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	taskID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return fail(c, 400, "Invalid task ID")
	}

	task, err := taskService.Start(userID, uint(taskID))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"start_time": task.StartTime,
		"status":     task.Status,
		"duration":   task.Duration(time.Now()),
	})
}

// StopTask stops the stopwatch (owner only)
// POST /api/tasks/:id/stop
func StopTask(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	taskID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return fail(c, 400, "Invalid task ID")
	}

	task, err := taskService.Stop(userID, uint(taskID))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"end_time": task.EndTime,
		"status":   task.Status,
		"duration": task.Duration(time.Now()),
	})
}
