package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port          string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	MongoURI      string
	MongoDB       string
	JWTSecret     string
	TokenTTL      time.Duration
	UserCacheTTL  time.Duration
	FetchBaseURL  string
	FetchInterval time.Duration
}

func Load() *Config {
	// A missing .env is fine; deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		Port:          getenv("PORT", "8080"),
		PostgresDSN:   getenv("POSTGRES_DSN", ""),
		RedisAddr:     getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		MongoURI:      getenv("MONGO_URI", ""),
		MongoDB:       getenv("MONGO_DB", "task_tracker"),
		JWTSecret:     getenv("JWT_SECRET", ""),
		TokenTTL:      getduration("TOKEN_TTL", 60*time.Minute),
		UserCacheTTL:  getduration("USER_CACHE_TTL", time.Hour),
		FetchBaseURL:  getenv("FETCH_BASE_URL", "https://jsonplaceholder.typicode.com"),
		FetchInterval: getduration("FETCH_INTERVAL", time.Minute),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
