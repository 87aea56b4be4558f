package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	FirebaseProject string
	FirebaseApiKey  string
	StorageBucket   string
	Environment     string
	LogLevel        string

	// Service account. JSON wins over the file path when both are set.
	ServiceAccountJSON string
	ServiceAccountPath string

	ImageMaxDimension int
	ImageJPEGQuality  int

	MarkReadConcurrency  int
	TradeRatePerMinute   int
	MessageRatePerMinute int
	AllowedOrigins       string
	WebSocketSendBuffer  int

	StorageMaxFailures       int
	StorageBreakerTimeoutSec int

	NameCacheTTLSec int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		FirebaseProject:    getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseApiKey:     getEnv("FIREBASE_API_KEY", ""),
		StorageBucket:      getEnv("STORAGE_BUCKET", ""),
		Environment:        getEnv("ENVIRONMENT", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		ServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),

		ImageMaxDimension: getEnvAsInt("IMAGE_MAX_DIMENSION", 800),
		ImageJPEGQuality:  getEnvAsInt("IMAGE_JPEG_QUALITY", 75),

		MarkReadConcurrency:  getEnvAsInt("MARK_READ_CONCURRENCY", 8),
		TradeRatePerMinute:   getEnvAsInt("TRADE_RATE_PER_MINUTE", 10),
		MessageRatePerMinute: getEnvAsInt("MESSAGE_RATE_PER_MINUTE", 30),
		AllowedOrigins:       getEnv("ALLOWED_ORIGINS", "*"),
		WebSocketSendBuffer:  getEnvAsInt("WEBSOCKET_SEND_BUFFER", 256),

		StorageMaxFailures:       getEnvAsInt("STORAGE_MAX_FAILURES", 5),
		StorageBreakerTimeoutSec: getEnvAsInt("STORAGE_BREAKER_TIMEOUT_SEC", 30),

		NameCacheTTLSec: getEnvAsInt("NAME_CACHE_TTL_SEC", 300),
	}

	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
