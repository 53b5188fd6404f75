package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("APP_PORT", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_HOURS", "")
	t.Setenv("AUTH_BCRYPT_COST", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.App.Port)
	require.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	require.Equal(t, 168, cfg.Auth.AccessTokenTTLHours)
	require.Equal(t, 12, cfg.Auth.BcryptCost)
	require.True(t, cfg.Postgres.RunMigrations)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("APP_HOST", "10.0.0.1")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_HOURS", "24")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1:9090", cfg.App.Addr())
	require.Equal(t, 24, cfg.Auth.AccessTokenTTLHours)
	require.False(t, cfg.Postgres.RunMigrations)
	require.Equal(t, "5s", cfg.App.RequestTimeout().String())
}

func TestGetEnvAsIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")

	require.Equal(t, 7, getEnvAsInt("SOME_INT", 7))
}
