package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const actorLocalsKey = "actor"

// ActorLoader resolves a user id to a fully populated Actor, including
// the role's parsed permission matrix
type ActorLoader func(ctx context.Context, userID int) (*Actor, error)

// Protected requires a valid bearer token and resolves the actor for the
// request. Handlers retrieve it with ActorFromCtx and pass it explicitly
// into service calls.
func Protected(secret string, loadActor ActorLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authorization header required"})
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization header format"})
		}

		claims, err := ValidateToken(parts[1], secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		actor, err := loadActor(c.Context(), claims.UserID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load user"})
		}
		if actor == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "account no longer exists"})
		}

		c.Locals(actorLocalsKey, *actor)
		return c.Next()
	}
}

// ActorFromCtx returns the actor resolved by Protected
func ActorFromCtx(c *fiber.Ctx) (Actor, bool) {
	actor, ok := c.Locals(actorLocalsKey).(Actor)
	return actor, ok
}
