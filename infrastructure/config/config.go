package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	StorageModeAWS    = "aws"
	StorageModeMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `validate:"required"`
	Environment   string `validate:"required,oneof=development staging production test"`

	// AWS configuration
	AWSRegion     string `validate:"required"`
	DynamoDBTable string `validate:"required_if=StorageMode aws"`
	S3Bucket      string `validate:"required_if=StorageMode aws"`
	EventBusName  string
	StorageMode   string `validate:"oneof=aws memory"`

	// Upstream feed and live-update endpoint
	SessionizeURL string        `validate:"omitempty,url"`
	AppSyncURL    string        `validate:"omitempty,url"`
	AppSyncAPIKey string
	HTTPTimeout   time.Duration `validate:"gt=0"`
	UserAgent     string
	RulesFile     string
	SyncInterval  time.Duration `validate:"gte=0"`
	LockTTL       time.Duration `validate:"gte=0"`
	LockName      string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// Logging
	LogLevel string `validate:"oneof=debug info warn error"`

	// Metrics
	MetricsNamespace string `validate:"required"`

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool
	EnableRunLock bool
	EnableEvents  bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		DynamoDBTable: getEnv("DYNAMODB_TABLE_NAME", getEnv("TABLE_NAME", "")),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		EventBusName:  getEnv("EVENT_BUS_NAME", "default"),
		StorageMode:   getEnv("STORAGE_MODE", StorageModeAWS),

		SessionizeURL: getEnv("SESSIONIZE_API_URL", ""),
		AppSyncURL:    getEnv("APPSYNC_ENDPOINT", ""),
		AppSyncAPIKey: getEnv("APPSYNC_API_KEY", ""),
		HTTPTimeout:   getEnvDuration("HTTP_TIMEOUT", 10*time.Second),
		UserAgent:     getEnv("USER_AGENT", "AgendaFetcher/1.0"),
		RulesFile:     getEnv("RULES_FILE", ""),
		SyncInterval:  getEnvDuration("SYNC_INTERVAL", 0),
		LockTTL:       getEnvDuration("LOCK_TTL", 5*time.Minute),
		LockName:      getEnv("LOCK_NAME", "agenda-sync"),

		IsLambda:           getEnv("AWS_LAMBDA_FUNCTION_NAME", "") != "",
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "AgendaFetcher"),

		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
		EnableRunLock: getEnvBool("ENABLE_RUN_LOCK", true),
		EnableEvents:  getEnvBool("ENABLE_EVENTS", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field-level constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidateFetcher checks the settings only the sync pipeline needs: the
// feed URL and the live-update endpoint.
func (c *Config) ValidateFetcher() error {
	v := validator.New()
	if err := v.Var(c.SessionizeURL, "required,url"); err != nil {
		return fmt.Errorf("SESSIONIZE_API_URL: %w", err)
	}
	if err := v.Var(c.AppSyncURL, "required,url"); err != nil {
		return fmt.Errorf("APPSYNC_ENDPOINT: %w", err)
	}
	if err := v.Var(c.AppSyncAPIKey, "required"); err != nil {
		return fmt.Errorf("APPSYNC_API_KEY: %w", err)
	}
	return nil
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UsesMemoryStorage reports whether adapters are in-process.
func (c *Config) UsesMemoryStorage() bool {
	return c.StorageMode == StorageModeMemory
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or bare seconds ("90").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs := getEnvInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
