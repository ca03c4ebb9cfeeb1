package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "POSTGRES_DSN", "REDIS_ADDR", "REDIS_PASSWORD", "MONGO_URI",
		"MONGO_DB", "JWT_SECRET", "TOKEN_TTL", "USER_CACHE_TTL",
		"FETCH_BASE_URL", "FETCH_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "redis:6379", cfg.RedisAddr)
	require.Equal(t, "task_tracker", cfg.MongoDB)
	require.Equal(t, 60*time.Minute, cfg.TokenTTL)
	require.Equal(t, time.Hour, cfg.UserCacheTTL)
	require.Equal(t, "https://jsonplaceholder.typicode.com", cfg.FetchBaseURL)
	require.Equal(t, time.Minute, cfg.FetchInterval)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "topsecret")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("USER_CACHE_TTL", "30s")
	t.Setenv("FETCH_INTERVAL", "2h")

	cfg := Load()
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "topsecret", cfg.JWTSecret)
	require.Equal(t, 15*time.Minute, cfg.TokenTTL)
	require.Equal(t, 30*time.Second, cfg.UserCacheTTL)
	require.Equal(t, 2*time.Hour, cfg.FetchInterval)
}

func TestLoadBadDuration(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")
	cfg := Load()
	require.Equal(t, 60*time.Minute, cfg.TokenTTL)
}
