package cli

import (
	"fmt"
	"os"
	"strconv"
)

// Store backends accepted by OpenStore.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreLoam   = "loam"
)

// Config holds the settings shared by the serve and mcp commands.
// Every field has a FORMFLOW_* environment variable that provides its default.
type Config struct {
	Store         string
	DataDir       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LogLevel      string
}

// ConfigFromEnv reads the defaults from the environment.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Store:         envOr("FORMFLOW_STORE", StoreMemory),
		DataDir:       envOr("FORMFLOW_DATA_DIR", "./services"),
		RedisAddr:     envOr("FORMFLOW_REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("FORMFLOW_REDIS_PASSWORD"),
		LogLevel:      envOr("FORMFLOW_LOG_LEVEL", "info"),
	}
	if db := os.Getenv("FORMFLOW_REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return cfg, fmt.Errorf("FORMFLOW_REDIS_DB: %w", err)
		}
		cfg.RedisDB = n
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
