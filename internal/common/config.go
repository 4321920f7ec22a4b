package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Convert  ConvertConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
	TempDir  string
}

// DatabaseConfig holds database-related configuration. The DSN is optional:
// when empty, the archive store is disabled and requests are served without it.
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// OCRConfig holds document-analysis service configuration
type OCRConfig struct {
	Endpoint     string
	APIKey       string
	APIVersion   string
	ModelID      string
	PollInterval time.Duration
	Timeout      time.Duration
}

// LLMConfig holds chat-completion service configuration
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	Concurrency int
}

// ConvertConfig holds document-conversion configuration
type ConvertConfig struct {
	Soffice string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8000"),
			TempDir:  getEnv("UPLOAD_TEMP_DIR", os.TempDir()),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		OCR: OCRConfig{
			Endpoint:     getEnv("AZURE_OCR_ENDPOINT", ""),
			APIKey:       getEnv("AZURE_OCR_KEY", ""),
			APIVersion:   getEnv("AZURE_OCR_API_VERSION", "2023-07-31"),
			ModelID:      getEnv("AZURE_OCR_MODEL_ID", "prebuilt-document"),
			PollInterval: getEnvAsDuration("AZURE_OCR_POLL_INTERVAL", 2*time.Second),
			Timeout:      getEnvAsDuration("AZURE_OCR_TIMEOUT", 2*time.Minute),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			MaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 1500),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
			Concurrency: getEnvAsInt("CORRECTION_CONCURRENCY", 4),
		},
		Convert: ConvertConfig{
			Soffice: getEnv("SOFFICE_PATH", "soffice"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.OCR.Endpoint == "" {
		return NewAppError("CONFIG_ERROR", "AZURE_OCR_ENDPOINT is required", ErrInvalidInput)
	}
	if c.OCR.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "AZURE_OCR_KEY is required", ErrInvalidInput)
	}
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	return nil
}
