package config

import (
	"fmt"
	"os"
)

type Config struct {
	HTTPAddr   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	RedisAddr  string
	JWTSecret  string
	DevMode    bool
}

func Load() *Config {
	return &Config{
		HTTPAddr:   getEnv("HTTP_ADDR", ":8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "icebreaker"),
		RedisAddr:  getEnv("REDIS_ADDR", ""),
		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),
		DevMode:    getEnv("DEV_MODE", "") == "1",
	}
}

// DSN builds the postgres connection string for gorm.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
