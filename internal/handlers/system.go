package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/statutecheck/statutecheck/internal/auth"
	"github.com/statutecheck/statutecheck/internal/model"
	"github.com/statutecheck/statutecheck/internal/store"
)

// UsersListHandler lists console accounts and the available roles
func UsersListHandler(userStore *store.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok || !actor.Can(auth.ResourceUsers, auth.ActionRead) {
			return accessDenied(c)
		}

		users, err := userStore.GetAll(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error loading users"})
		}
		roles, err := userStore.GetRoles(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error loading roles"})
		}

		userList := make([]fiber.Map, 0, len(users))
		for _, u := range users {
			userList = append(userList, fiber.Map{
				"id":       u.ID,
				"username": u.Username,
				"email":    u.Email,
				"role_id":  u.RoleID,
				"role":     u.RoleName,
			})
		}

		return c.JSON(fiber.Map{
			"users": userList,
			"roles": rolesJSON(roles),
		})
	}
}

// UserCreateHandler adds a console account
func UserCreateHandler(userStore *store.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok || !actor.Can(auth.ResourceUsers, auth.ActionCreate) {
			return accessDenied(c)
		}

		var body struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
			RoleID   int    `json:"role_id"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if strings.TrimSpace(body.Username) == "" || body.Password == "" || body.RoleID == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username, password, and role are required"})
		}

		hash, err := auth.HashPassword(body.Password)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
		}

		user := &model.User{
			Username:     body.Username,
			Email:        body.Email,
			PasswordHash: hash,
			RoleID:       body.RoleID,
		}
		if err := userStore.Create(c.Context(), user, actor.Username); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add user"})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": user.ID, "message": "User added successfully"})
	}
}

// UserDeleteHandler removes a console account; self-deletion is refused
func UserDeleteHandler(userStore *store.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok || !actor.Can(auth.ResourceUsers, auth.ActionDelete) {
			return accessDenied(c)
		}

		id, err := c.ParamsInt("id")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
		}
		if id == actor.ID {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "You cannot delete yourself"})
		}

		if err := userStore.Delete(c.Context(), id); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete user"})
		}
		return c.JSON(fiber.Map{"message": "User deleted"})
	}
}

// RolesListHandler lists roles with their permission matrices
func RolesListHandler(userStore *store.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok || !actor.Can(auth.ResourceRoles, auth.ActionRead) {
			return accessDenied(c)
		}

		roles, err := userStore.GetRoles(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error loading roles"})
		}
		return c.JSON(fiber.Map{"roles": rolesJSON(roles)})
	}
}

// RoleUpdateHandler replaces a role's permission matrix. The matrix is
// validated against the closed resource/action sets before saving.
func RoleUpdateHandler(userStore *store.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := requireActor(c)
		if !ok || !actor.Can(auth.ResourceRoles, auth.ActionUpdate) {
			return accessDenied(c)
		}

		id, err := c.ParamsInt("id")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid role id"})
		}

		var body struct {
			Permissions map[string]map[string]int `json:"permissions"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		raw, err := json.Marshal(body.Permissions)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid permissions"})
		}
		perms, err := auth.ParsePermissions(string(raw))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		normalized, err := auth.MarshalPermissions(perms)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to encode permissions"})
		}

		if err := userStore.UpdateRolePermissions(c.Context(), id, normalized, actor.Username); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update role"})
		}
		return c.JSON(fiber.Map{"message": "Role permissions updated"})
	}
}

func rolesJSON(roles []model.Role) []fiber.Map {
	out := make([]fiber.Map, 0, len(roles))
	for _, r := range roles {
		m := fiber.Map{"id": r.ID, "name": r.Name}
		var perms map[string]map[string]int
		if err := json.Unmarshal([]byte(r.Permissions), &perms); err == nil {
			m["permissions"] = perms
		}
		out = append(out, m)
	}
	return out
}
