package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	// Server
	HTTPAddr string
	LogLevel string

	// API auth. When empty the /v1 API is open (local single-user studio).
	APIToken string

	// Gemini API
	GeminiAPIKey      string
	GeminiAPIEndpoint string // if set, overrides the default Gemini API base URL
	GeminiModelImage  string // image generation, e.g. gemini-3-pro-image-preview
	GeminiModelFlash  string // prompt suggestions, e.g. gemini-2.5-flash-lite

	// Upload limits
	MaxUploadBytes int64 // max size of an attached reference image

	// S3/Gallery (optional; gallery save is disabled without a bucket)
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool
	S3PublicURL string
	S3LinkTTL   time.Duration // presigned download link lifetime
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIToken: getEnv("STUDIO_API_TOKEN", ""),

		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiAPIEndpoint: getEnv("GEMINI_API_ENDPOINT", ""),
		GeminiModelImage:  getEnv("GEMINI_MODEL_IMAGE", "gemini-3-pro-image-preview"),
		GeminiModelFlash:  getEnv("GEMINI_MODEL_FLASH", "gemini-2.5-flash-lite"),

		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 10*1024*1024), // 10MB

		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3UseSSL:    getEnvBool("S3_USE_SSL", false),
		S3PublicURL: getEnv("S3_PUBLIC_URL", ""),
		S3LinkTTL:   getEnvDuration("S3_LINK_TTL", 24*time.Hour),
	}
}

// GalleryEnabled reports whether a gallery bucket is configured.
func (c *Config) GalleryEnabled() bool {
	return c.S3Bucket != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
