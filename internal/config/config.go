package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	RedisURL       string
	OrderAPIURL    string
	LineAPIURL     string
	LiffID         string
	DeliveryFee    int
	ServerPort     string
	SessionTimeout int
	MenuCacheTTL   int
}

func Load() *Config {
	// Load .env file if exists
	godotenv.Load()

	return &Config{
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
		OrderAPIURL:    getEnv("ORDER_API_URL", "https://script.google.com/macros/s/your_deployment_id/exec"),
		LineAPIURL:     getEnv("LINE_API_URL", "https://api.line.me"),
		LiffID:         getEnv("LIFF_ID", "your_liff_id"),
		DeliveryFee:    getEnvAsInt("DELIVERY_FEE", 30),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		SessionTimeout: getEnvAsInt("SESSION_TIMEOUT", 3600),
		MenuCacheTTL:   getEnvAsInt("MENU_CACHE_TTL", 1800),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
