package config

import (
	"os"
	"strconv"
	"time"

	"pipeline_rescue/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	DataDir       string
	AllowedOrigin string

	// Round timing
	TotalDuration time.Duration
	Penalty       time.Duration

	// Rate limiting
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	APIRateLimit  int
	APIRateWindow time.Duration

	LogLevel string
	LogJSON  bool
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	totalDuration := 1800 * time.Second // 30 minutes per round
	if v := os.Getenv("TOTAL_DURATION_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			totalDuration = time.Duration(n) * time.Second
		} else {
			logger.Warn("invalid TOTAL_DURATION_SECONDS, using default", "value", v)
		}
	}

	penalty := 5 * time.Minute
	if v := os.Getenv("PENALTY_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			penalty = time.Duration(n) * time.Second
		} else {
			logger.Warn("invalid PENALTY_SECONDS, using default", "value", v)
		}
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	apiRateLimit := 60
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateLimit = n
		}
	}

	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	return &Config{
		AppPort:       port,
		DataDir:       dataDir,
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
		TotalDuration: totalDuration,
		Penalty:       penalty,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		APIRateLimit:  apiRateLimit,
		APIRateWindow: apiRateWindow,
		LogLevel:      os.Getenv("LOG_LEVEL"),
		LogJSON:       os.Getenv("LOG_JSON") == "true",
	}
}
