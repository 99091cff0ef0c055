package config

import (
	"fmt"
	"os"
	"strconv"
)

// Provider selects the storage backend family. It is read exactly
// once at startup and the binding is immutable for the process
// lifetime; there is no per-request backend switching.
type Provider string

const (
	// ProviderDynamoDB selects the key-value drivers.
	ProviderDynamoDB Provider = "DYNAMODB"
	// ProviderSurrealDB selects the document-store drivers.
	ProviderSurrealDB Provider = "SURREALDB"
)

// ParseProvider validates a configured provider value. Unrecognized
// values are an error: a silent default would mask a misconfiguration
// and hand requests to the wrong uniqueness/consistency model.
func ParseProvider(value string) (Provider, error) {
	switch Provider(value) {
	case ProviderDynamoDB, ProviderSurrealDB:
		return Provider(value), nil
	}
	return "", fmt.Errorf("unknown DATABASE_PROVIDER %q (expected %q or %q)",
		value, ProviderDynamoDB, ProviderSurrealDB)
}

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Storage backend selection
	DatabaseProvider Provider

	// DynamoDB configuration
	AWSRegion     string
	DynamoDBTable string
	IndexName     string // GSI1 - per-user queries
	GSI2IndexName string // GSI2 - per-target queries

	// SurrealDB configuration
	SurrealURL       string
	SurrealNamespace string
	SurrealDatabase  string
	SurrealUsername  string
	SurrealPassword  string

	// Lambda configuration
	IsLambda bool

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Feature flags
	EnableCORS bool

	// Pagination bound for list endpoints
	MaxPageSize int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	environment := getEnv("ENVIRONMENT", "development")

	// The DYNAMODB default is a development convenience only. In
	// production an unset provider is a misconfiguration, same as an
	// unrecognized one.
	providerValue := os.Getenv("DATABASE_PROVIDER")
	if providerValue == "" {
		if environment == "production" {
			return nil, fmt.Errorf("DATABASE_PROVIDER must be set explicitly in production (expected %q or %q)",
				ProviderDynamoDB, ProviderSurrealDB)
		}
		providerValue = string(ProviderDynamoDB)
	}
	provider, err := ParseProvider(providerValue)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   environment,

		DatabaseProvider: provider,

		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		DynamoDBTable: getEnv("DYNAMODB_TABLE", "blog"),
		IndexName:     getEnv("INDEX_NAME", "UserIndex"),
		GSI2IndexName: getEnv("GSI2_INDEX_NAME", "TargetIndex"),

		SurrealURL:       getEnv("SURREAL_URL", "ws://localhost:8000/rpc"),
		SurrealNamespace: getEnv("SURREAL_NAMESPACE", "blog"),
		SurrealDatabase:  getEnv("SURREAL_DATABASE", "blog"),
		SurrealUsername:  getEnv("SURREAL_USERNAME", "root"),
		SurrealPassword:  getEnv("SURREAL_PASSWORD", ""),

		IsLambda: getEnvBool("IS_LAMBDA", os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "blog-backend"),

		EnableCORS:  getEnvBool("ENABLE_CORS", true),
		MaxPageSize: getEnvInt("MAX_PAGE_SIZE", 100),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig for backwards compatibility
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if _, err := ParseProvider(string(c.DatabaseProvider)); err != nil {
		return err
	}

	switch c.DatabaseProvider {
	case ProviderDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required when DATABASE_PROVIDER=%s", ProviderDynamoDB)
		}
	case ProviderSurrealDB:
		if c.SurrealURL == "" {
			return fmt.Errorf("SURREAL_URL is required when DATABASE_PROVIDER=%s", ProviderSurrealDB)
		}
	}

	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
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
