// handlers/categories.go - Category management HTTP handlers
package handlers

import (
	"strconv"

	"timetracker/middleware"

	"github.com/gofiber/fiber/v2"
)

// ListCategories returns a team's categories (manager only)
// GET /api/teams/:id/categories
func ListCategories(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	teamID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return fail(c, 400, "Invalid team ID")
	}

	categories, err := categoryService.ListForTeam(userID, uint(teamID))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"categories": categories,
	})
}

// ManageCategory dispatches category mutations on the action field
// POST /api/teams/:id/categories {action: add|edit|delete, ...}
func ManageCategory(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	teamID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return fail(c, 400, "Invalid team ID")
	}

	var req struct {
		Action      string `json:"action"`
		CategoryID  uint   `json:"category_id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "Invalid request body")
	}

	switch req.Action {
	case "add":
		category, err := categoryService.Add(userID, uint(teamID), req.Name, req.Description)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(201).JSON(fiber.Map{
			"success":  true,
			"message":  "Category added successfully.",
			"category": category,
		})

	case "edit":
		category, err := categoryService.Update(userID, uint(teamID), req.CategoryID, req.Name, req.Description)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":  true,
			"message":  "Category updated successfully.",
			"category": category,
		})

	case "delete":
		if err := categoryService.Delete(userID, uint(teamID), req.CategoryID); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Category deleted successfully.",
		})
	}

	return fail(c, 400, "Unknown action, expected add, edit or delete")
}
