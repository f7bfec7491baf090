package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedApp(loadActor ActorLoader) *fiber.App {
	app := fiber.New()
	app.Get("/admin/ping", Protected(testSecret, loadActor), func(c *fiber.Ctx) error {
		actor, ok := ActorFromCtx(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"username": actor.Username})
	})
	return app
}

func loadTestActor(_ context.Context, userID int) (*Actor, error) {
	if userID != 7 {
		return nil, nil
	}
	return &Actor{ID: 7, Username: "jsmith", Role: "Editor"}, nil
}

func TestProtected(t *testing.T) {
	app := protectedApp(loadTestActor)

	token, err := GenerateToken(7, "jsmith", testSecret)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestProtected_Rejections(t *testing.T) {
	app := protectedApp(loadTestActor)

	badToken, err := GenerateToken(7, "jsmith", "wrong-secret")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"malformed", "Bearer"},
		{"bad signature", "Bearer " + badToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

// A token whose account was removed fails with 401, not 500
func TestProtected_DeletedAccount(t *testing.T) {
	app := protectedApp(loadTestActor)

	token, err := GenerateToken(99, "ghost", testSecret)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
