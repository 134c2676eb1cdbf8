package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	Environment     string
	FirebaseProject string
	FirebaseApiKey  string
	StorageBucket   string
	FunctionsURL    string

	// Photo pipeline limits
	MaxUploadBytes     int64
	PhotoTargetBytes   int64
	PhotoMaxDimension  int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseApiKey:  getEnv("FIREBASE_API_KEY", ""),
		StorageBucket:   getEnv("STORAGE_BUCKET", ""),
		FunctionsURL:    getEnv("FUNCTIONS_BASE_URL", ""),

		MaxUploadBytes:    getEnvAsInt64("MAX_UPLOAD_BYTES", 10*1024*1024),
		PhotoTargetBytes:  getEnvAsInt64("PHOTO_TARGET_BYTES", 400*1024),
		PhotoMaxDimension: int(getEnvAsInt64("PHOTO_MAX_DIMENSION", 2048)),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
