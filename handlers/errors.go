// handlers/errors.go - Service error to HTTP response mapping
package handlers

import (
	"errors"
	"log"

	"timetracker/services"

	"github.com/gofiber/fiber/v2"
)

// serviceError maps the service error taxonomy onto HTTP responses in
// the standard envelope. One place, so every handler agrees on codes.
func serviceError(c *fiber.Ctx, err error) error {
	var ve *services.ValidationError

	switch {
	case errors.Is(err, services.ErrForbidden):
		return fail(c, 403, "You do not have permission to perform this action.")
	case errors.Is(err, services.ErrNotFound):
		return fail(c, 404, "Not found.")
	case errors.Is(err, services.ErrInvalidState):
		return fail(c, 400, "Operation not applicable in the task's current state.")
	case errors.Is(err, services.ErrInUse):
		return fail(c, 409, "Cannot delete: it is still being used.")
	case errors.Is(err, services.ErrDuplicateName):
		return fail(c, 409, "A category with this name already exists in this team.")
	case errors.As(err, &ve):
		return fail(c, 400, ve.Message)
	}

	log.Printf("internal error: %v", err)
	return fail(c, 500, "Internal server error")
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
