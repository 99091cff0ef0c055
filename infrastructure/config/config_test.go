package config_test

import (
	"os"
	"testing"

	"blog-backend/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfig tests basic configuration loading from environment variables.
func TestLoadConfig(t *testing.T) {
	os.Setenv("ENVIRONMENT", "development")
	os.Setenv("DATABASE_PROVIDER", "SURREALDB")
	os.Setenv("SURREAL_URL", "ws://surreal.test:8000/rpc")
	defer func() {
		os.Unsetenv("ENVIRONMENT")
		os.Unsetenv("DATABASE_PROVIDER")
		os.Unsetenv("SURREAL_URL")
	}()

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.ProviderSurrealDB, cfg.DatabaseProvider)
	assert.Equal(t, "ws://surreal.test:8000/rpc", cfg.SurrealURL)
	assert.True(t, cfg.IsDevelopment())
}

// TestLoadConfigDefaultsToDynamoDB checks the documented default
// provider for development runs.
func TestLoadConfigDefaultsToDynamoDB(t *testing.T) {
	os.Unsetenv("DATABASE_PROVIDER")
	os.Unsetenv("ENVIRONMENT")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.ProviderDynamoDB, cfg.DatabaseProvider)
}

// TestLoadConfigProductionRequiresExplicitProvider verifies that the
// development default does not apply in production.
func TestLoadConfigProductionRequiresExplicitProvider(t *testing.T) {
	os.Setenv("ENVIRONMENT", "production")
	os.Setenv("JWT_SECRET", "test-secret")
	os.Unsetenv("DATABASE_PROVIDER")
	defer func() {
		os.Unsetenv("ENVIRONMENT")
		os.Unsetenv("JWT_SECRET")
	}()

	_, err := config.LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_PROVIDER must be set explicitly")

	os.Setenv("DATABASE_PROVIDER", "DYNAMODB")
	defer os.Unsetenv("DATABASE_PROVIDER")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.ProviderDynamoDB, cfg.DatabaseProvider)
}

// TestLoadConfigRejectsUnknownProvider verifies that an unrecognized
// provider fails startup instead of silently defaulting.
func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	os.Setenv("DATABASE_PROVIDER", "MONGODB")
	defer os.Unsetenv("DATABASE_PROVIDER")

	_, err := config.LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown DATABASE_PROVIDER")
}

// TestParseProvider covers the accepted and rejected values.
func TestParseProvider(t *testing.T) {
	tests := []struct {
		value   string
		want    config.Provider
		wantErr bool
	}{
		{value: "DYNAMODB", want: config.ProviderDynamoDB},
		{value: "SURREALDB", want: config.ProviderSurrealDB},
		{value: "", wantErr: true},
		{value: "dynamodb", wantErr: true},
		{value: "PRISMA", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := config.ParseProvider(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestValidateRequiresBackendSettings checks per-provider requirements.
func TestValidateRequiresBackendSettings(t *testing.T) {
	cfg := &config.Config{
		DatabaseProvider: config.ProviderSurrealDB,
		Environment:      "development",
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SURREAL_URL")
}
