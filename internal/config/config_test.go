package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	require.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, 5, cfg.Database.MaxIdleConns)
	require.Equal(t, 10, cfg.Database.MaxOpenConns)
	require.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	require.Equal(t, "redis:6379", cfg.Redis.Addr)
	require.Equal(t, 30*time.Second, cfg.DLP.CallTimeout)
	require.Equal(t, "dev-secret", cfg.Auth.JWTSecret)
	require.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("DATABASE_DSN", "host=localhost dbname=test")
	t.Setenv("REDIS_ADDR", "localhost:6380")
	t.Setenv("DLP_PROJECT", "acme-prod")
	t.Setenv("DLP_ENDPOINT", "dlp.example.com:443")
	t.Setenv("DLP_CALL_TIMEOUT", "5s")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_AUDIENCE", "inspection-api")
	t.Setenv("LOGGER_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9191", cfg.Server.Addr())
	require.Equal(t, "host=localhost dbname=test", cfg.Database.DSN)
	require.Equal(t, "localhost:6380", cfg.Redis.Addr)
	require.Equal(t, "acme-prod", cfg.DLP.Project)
	require.Equal(t, "dlp.example.com:443", cfg.DLP.Endpoint)
	require.Equal(t, 5*time.Second, cfg.DLP.CallTimeout)
	require.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	require.Equal(t, "inspection-api", cfg.Auth.JWTAudience)
	require.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadFallsBackOnBadDuration(t *testing.T) {
	t.Setenv("SERVER_SHUTDOWN_TIMEOUT", "soon")
	t.Setenv("DATABASE_CONN_MAX_LIFETIME", "-")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
}
