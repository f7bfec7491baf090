package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/statutecheck/statutecheck/internal/auth"
	"github.com/statutecheck/statutecheck/internal/store"
)

const logsPerPage = 20

// LoginLogsHandler lists login attempts with username, status, and
// date-range filters
func LoginLogsHandler(logStore *store.LoginLogStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok || !actor.Can(auth.ResourceLogs, auth.ActionRead) {
			return accessDenied(c)
		}

		page, limit, offset := pageParams(c, logsPerPage)
		filter := store.LoginLogFilter{
			Username:  c.Query("username"),
			Status:    c.Query("status"),
			StartDate: c.Query("start_date"),
			EndDate:   c.Query("end_date"),
		}

		logs, total, err := logStore.List(c.Context(), filter, limit, offset)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error loading login logs"})
		}

		out := make([]fiber.Map, 0, len(logs))
		for _, l := range logs {
			out = append(out, fiber.Map{
				"id":         l.ID,
				"username":   l.UsernameAttempted,
				"status":     l.Status,
				"ip_address": nullableString(l.IPAddress),
				"user_agent": nullableString(l.UserAgent),
				"login_at":   l.LoginAt,
			})
		}

		return c.JSON(fiber.Map{
			"logs":        out,
			"page":        page,
			"total_pages": totalPages(total, logsPerPage),
		})
	}
}
