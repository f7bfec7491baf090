package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/statutecheck/statutecheck/internal/auth"
	"github.com/statutecheck/statutecheck/internal/service"
)

// pageParams reads the page query param and derives limit/offset
func pageParams(c *fiber.Ctx, perPage int) (page, limit, offset int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	return page, perPage, (page - 1) * perPage
}

// totalPages is ceil(total / perPage)
func totalPages(total, perPage int) int {
	if total == 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// requireActor returns the actor resolved by the auth middleware
func requireActor(c *fiber.Ctx) (auth.Actor, bool) {
	actor, ok := auth.ActorFromCtx(c)
	return actor, ok
}

// accessDenied is the shared forbidden response for failed permission checks
func accessDenied(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
}

// serviceError converts a change-queue error into a user-facing response
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		return accessDenied(c)
	case errors.Is(err, service.ErrDuplicateKey):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A live record already exists for this key"})
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Record not found"})
	case errors.Is(err, service.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Invalid approval request"})
	case errors.Is(err, service.ErrInvalidPayload):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Operation failed"})
	}
}
