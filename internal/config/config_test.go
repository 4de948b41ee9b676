package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/compsec")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 10, cfg.DBConnectAttempts)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 20.0, cfg.RateLimitRPS)
	assert.Equal(t, 40, cfg.RateLimitBurst)
	assert.True(t, cfg.SeedFrameworks)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/compsec")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("SEED_FRAMEWORKS", "false")
	t.Setenv("DB_CONNECT_ATTEMPTS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.False(t, cfg.SeedFrameworks)
	assert.Equal(t, 1, cfg.DBConnectAttempts)
}

func TestLoad_RequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")

	_, err := Load()
	assert.EqualError(t, err, "DB_DSN is not set")
}
