package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("IMPORT_MAX_ROWS", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 500, cfg.ImportMaxRows)
	assert.NotEmpty(t, cfg.DatabaseURL)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example/db")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("IMPORT_MAX_ROWS", "100")

	cfg := Load()
	assert.Equal(t, "postgres://example/db", cfg.DatabaseURL)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "secret", cfg.JWTSecret)
	assert.Equal(t, 100, cfg.ImportMaxRows)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("IMPORT_MAX_ROWS", "lots")

	cfg := Load()
	assert.Equal(t, 500, cfg.ImportMaxRows)
}
