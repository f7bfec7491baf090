package handlers

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/statutecheck/statutecheck/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, perPage, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{45, 15, 3},
		{46, 15, 4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, totalPages(tt.total, tt.perPage), "total=%d perPage=%d", tt.total, tt.perPage)
	}
}

func TestPageParams(t *testing.T) {
	app := fiber.New()
	var page, limit, offset int
	app.Get("/x", func(c *fiber.Ctx) error {
		page, limit, offset = pageParams(c, 10)
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		url        string
		wantPage   int
		wantOffset int
	}{
		{"/x", 1, 0},
		{"/x?page=3", 3, 20},
		{"/x?page=0", 1, 0},
		{"/x?page=-2", 1, 0},
		{"/x?page=junk", 1, 0},
	}

	for _, tt := range tests {
		_, err := app.Test(httptest.NewRequest("GET", tt.url, nil))
		require.NoError(t, err)
		assert.Equal(t, tt.wantPage, page, tt.url)
		assert.Equal(t, 10, limit, tt.url)
		assert.Equal(t, tt.wantOffset, offset, tt.url)
	}
}

func TestServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"permission denied", service.ErrPermissionDenied, fiber.StatusForbidden},
		{"duplicate", service.ErrDuplicateKey, fiber.StatusConflict},
		{"not found", service.ErrNotFound, fiber.StatusNotFound},
		{"invalid state", service.ErrInvalidState, fiber.StatusConflict},
		{"invalid payload", service.ErrInvalidPayload, fiber.StatusBadRequest},
		{"matching text but not the sentinel", errors.New(service.ErrInvalidState.Error()), fiber.StatusInternalServerError},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/x", func(c *fiber.Ctx) error {
				return serviceError(c, tt.err)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
