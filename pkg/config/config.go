package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultJWTSecret = "your-secret-key-change-this-in-production"

type Config struct {
	APIPort     string
	FrontendURL string
	JWTSecret   string

	StoreDriver  string
	DBPath       string
	BadgerPath   string
	StoreTimeout time.Duration

	LogLevel  string
	LogFormat string

	RecommendThreshold int
	RateLimitRPS       float64
	RateLimitBurst     int
}

// Load reads .env when present, then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		APIPort:     getEnvOrDefault("API_PORT", "8080"),
		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
		JWTSecret:   getEnvOrDefault("JWT_SECRET", DefaultJWTSecret),

		StoreDriver:  strings.ToLower(getEnvOrDefault("STORE_DRIVER", "sqlite")),
		DBPath:       getEnvOrDefault("DB_PATH", "./data/bookhub.db"),
		BadgerPath:   getEnvOrDefault("BADGER_PATH", "./data/badger"),
		StoreTimeout: time.Duration(GetEnvInt("STORE_TIMEOUT_MS", 5000)) * time.Millisecond,

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		RecommendThreshold: GetEnvInt("RECOMMEND_THRESHOLD", 4),
		RateLimitRPS:       GetEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     GetEnvInt("RATE_LIMIT_BURST", 10),
	}
}

func (c *Config) UsingDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func GetEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func GetEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
