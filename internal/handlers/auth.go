package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/statutecheck/statutecheck/internal/auth"
	"github.com/statutecheck/statutecheck/internal/store"
)

// LoginHandler checks credentials, records the attempt, and issues a
// session token on success
func LoginHandler(userStore *store.UserStore, logStore *store.LoginLogStore, jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		ctx := c.Context()
		ip := c.IP()
		userAgent := c.Get("User-Agent")

		user, err := userStore.GetByUsername(ctx, body.Username)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Login failed"})
		}

		if user == nil || !auth.CheckPassword(user.PasswordHash, body.Password) {
			if err := logStore.Record(ctx, body.Username, "FAILURE", ip, userAgent); err != nil {
				log.Printf("Error recording login failure: %v", err)
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid username or password"})
		}

		if err := logStore.Record(ctx, body.Username, "SUCCESS", ip, userAgent); err != nil {
			log.Printf("Error recording login success: %v", err)
		}

		token, err := auth.GenerateToken(user.ID, user.Username, jwtSecret)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to issue session token"})
		}

		return c.JSON(fiber.Map{
			"token":    token,
			"username": user.Username,
			"role":     user.RoleName,
		})
	}
}
