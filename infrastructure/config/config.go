package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Build variants. Only debug builds keep analytics local.
const (
	BuildVariantDebug   = "debug"
	BuildVariantBeta    = "beta"
	BuildVariantRelease = "release"
)

// Preferences backends
const (
	PreferencesBackendFile     = "file"
	PreferencesBackendDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Application identity
	AppName    string `validate:"required"`
	AppVersion string
	DataDir    string `validate:"required"`

	// Build configuration
	BuildVariant string `validate:"oneof=debug beta release"`

	// Analytics
	AnalyticsKey            string
	AnalyticsEndpoint       string `validate:"omitempty,url"`
	AnalyticsSessionTimeout time.Duration

	// Database
	DatabaseURL         string `validate:"required"`
	DatabaseAutoMigrate bool

	// Preferences
	PreferencesBackend string `validate:"oneof=file dynamodb"`
	PreferencesTable   string

	// AWS configuration
	AWSRegion    string
	EventBusName string

	// WebSocket notifications
	WebSocketEndpoint string
	ConnectionsTable  string

	// Remote web service
	RemoteBaseURL string `validate:"omitempty,url"`

	// Locks table for cross-instance job locks; empty keeps locks in process
	LocksTable string

	// Server configuration
	ServerAddress string

	// Logging
	LogLevel string `validate:"oneof=debug info warn error"`

	// Authentication
	JWTSecret          string
	JWTIssuer          string
	RateLimitPerMinute int `validate:"gte=0"`

	// CORS
	CORSAllowedOrigins []string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is read first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppName:    getEnv("APP_NAME", "template"),
		AppVersion: getEnv("APP_VERSION", "dev"),
		DataDir:    getEnv("DATA_DIR", defaultDataDir()),

		BuildVariant: strings.ToLower(getEnv("BUILD_VARIANT", BuildVariantDebug)),

		AnalyticsKey:            getEnv("ANALYTICS_KEY", ""),
		AnalyticsEndpoint:       getEnv("ANALYTICS_ENDPOINT", "https://www.google-analytics.com/collect"),
		AnalyticsSessionTimeout: getEnvDuration("ANALYTICS_SESSION_TIMEOUT", 30*time.Second),

		DatabaseURL:         getEnv("DATABASE_URL", "postgres://localhost:5432/main?sslmode=disable"),
		DatabaseAutoMigrate: getEnvBool("DATABASE_AUTO_MIGRATE", true),

		PreferencesBackend: strings.ToLower(getEnv("PREFERENCES_BACKEND", PreferencesBackendFile)),
		PreferencesTable:   getEnv("PREFERENCES_TABLE", "template-preferences"),

		AWSRegion:    getEnv("AWS_REGION", "us-west-2"),
		EventBusName: getEnv("EVENT_BUS_NAME", ""),

		WebSocketEndpoint: getEnv("WEBSOCKET_ENDPOINT", ""),
		ConnectionsTable:  getEnv("CONNECTIONS_TABLE", "template-connections"),

		RemoteBaseURL: getEnv("REMOTE_BASE_URL", ""),
		LocksTable:    getEnv("LOCKS_TABLE", ""),

		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "template-backend"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var validate = validator.New()

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !c.IsDebug() && c.AnalyticsKey == "" {
		return fmt.Errorf("ANALYTICS_KEY is required for %s builds", c.BuildVariant)
	}
	if c.PreferencesBackend == PreferencesBackendDynamoDB && c.PreferencesTable == "" {
		return fmt.Errorf("PREFERENCES_TABLE is required for the dynamodb preferences backend")
	}

	return nil
}

// IsDebug reports whether this is a debuggable build
func (c *Config) IsDebug() bool {
	return c.BuildVariant == BuildVariantDebug
}

// IsRelease reports whether this is a release build
func (c *Config) IsRelease() bool {
	return c.BuildVariant == BuildVariantRelease
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + string(os.PathSeparator) + "template"
	}
	return "data"
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

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvDuration accepts either a Go duration ("45s") or whole seconds ("45")
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
