package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Providers    ProvidersConfig
	Cancellation CancellationConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

// ProvidersConfig points at the external cancellation collaborators.
type ProvidersConfig struct {
	APICancelBaseURL  string
	APICancelToken    string
	AutomationBaseURL string
	AutomationToken   string
	SupportURL        string
}

// CancellationConfig holds the engine tuning knobs.
type CancellationConfig struct {
	FallbackBackoff time.Duration
	SessionTTL      time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Providers: ProvidersConfig{
			APICancelBaseURL:  getEnv("API_CANCEL_BASE_URL", "http://localhost:8081"),
			APICancelToken:    getEnv("API_CANCEL_TOKEN", ""),
			AutomationBaseURL: getEnv("AUTOMATION_BASE_URL", "http://localhost:8082"),
			AutomationToken:   getEnv("AUTOMATION_TOKEN", ""),
			SupportURL:        getEnv("SUPPORT_URL", "https://help.unsubly.app"),
		},
		Cancellation: CancellationConfig{
			FallbackBackoff: getEnvAsDuration("CANCELLATION_FALLBACK_BACKOFF", 2*time.Second),
			SessionTTL:      getEnvAsDuration("CANCELLATION_SESSION_TTL", 30*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
