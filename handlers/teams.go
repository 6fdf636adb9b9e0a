// handlers/teams.go - Team selector and provisioning HTTP handlers
package handlers

import (
	"strconv"

	"timetracker/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetTeams lists every team the actor belongs to or manages
// GET /api/teams
func GetTeams(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	teams, err := teamService.TeamsFor(userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"teams":   teams,
		"count":   len(teams),
	})
}

// GetManagedTeams lists the actor's managed teams (category selector,
// export scope)
// GET /api/teams/managed
func GetManagedTeams(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	teams, err := teamService.ManagedTeams(userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"teams":   teams,
		"count":   len(teams),
	})
}

// CreateTeam creates a team with the actor as its manager
// POST /api/teams
func CreateTeam(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "Invalid request body")
	}

	team, err := teamService.CreateTeam(req.Name, userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"message": "Team created successfully",
		"team":    team,
	})
}

// AddTeamMember adds a user to the team (manager only)
// POST /api/teams/:id/members
func AddTeamMember(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	teamID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return fail(c, 400, "Invalid team ID")
	}

	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, 400, "Invalid request body")
	}

	if err := teamService.AddMember(uint(teamID), userID, req.UserID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Member added successfully",
	})
}

// RemoveTeamMember removes a user from the team (manager only)
// DELETE /api/teams/:id/members/:userId
func RemoveTeamMember(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	teamID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return fail(c, 400, "Invalid team ID")
	}
	memberID, err := strconv.ParseUint(c.Params("userId"), 10, 32)
	if err != nil {
		return fail(c, 400, "Invalid user ID")
	}

	if err := teamService.RemoveMember(uint(teamID), userID, uint(memberID)); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Member removed successfully",
	})
}

// DeleteTeam removes a team with its categories and tasks (manager only)
// DELETE /api/teams/:id
func DeleteTeam(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	teamID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return fail(c, 400, "Invalid team ID")
	}

	if err := teamService.DeleteTeam(uint(teamID), userID); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Team deleted successfully",
	})
}
