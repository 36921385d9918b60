package config

import (
	"os"
	"strconv"
)

type Config struct {
	DBDriver      string // mysql, postgres or sqlite
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPath        string // sqlite only
	RedisAddr     string // empty disables the Redis-backed token revocation store
	JWTSecret     string
	TokenTTLHours int
	GinMode       string
	ListenAddr    string
}

func Load() *Config {
	return &Config{
		DBDriver:      getEnv("DB_DRIVER", "mysql"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBUser:        getEnv("DB_USER", "cogniboard"),
		DBPassword:    getEnv("DB_PASSWORD", "cogniboard"),
		DBName:        getEnv("DB_NAME", "cogniboard"),
		DBPath:        getEnv("DB_PATH", "cogniboard.db"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		JWTSecret:     getEnv("JWT_SECRET", "default-secret-key-change-me"),
		TokenTTLHours: getEnvAsInt("TOKEN_TTL_HOURS", 24),
		GinMode:       getEnv("GIN_MODE", "debug"),
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}
