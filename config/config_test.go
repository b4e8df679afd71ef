package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("CI", "")
	t.Setenv("ENV", "")
	for _, key := range []string{
		KeyConnectionString, KeyRabbitHost, KeyRabbitVirtualHost, KeyRabbitUsername,
		KeyRabbitPassword, KeyRabbitPort, "SERVER_PORT", "DB_DRIVER", "REDIS_URL", "LOG_LEVEL",
		"RATE_LIMIT_WRITES", "RATE_LIMIT_WINDOW", "CORS_ORIGINS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfig(t *testing.T) {
	isolateEnv(t)
	t.Setenv(KeyConnectionString, "host=localhost port=5432 user=postgres password=postgres dbname=recipes sslmode=disable")
	t.Setenv(KeyRabbitHost, "localhost")
	t.Setenv(KeyRabbitPort, "35672")
	t.Setenv(KeyRabbitUsername, "guest")
	t.Setenv(KeyRabbitPassword, "guest")
	t.Setenv(KeyRabbitVirtualHost, "/")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("REDIS_TTL", "30s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Contains(t, cfg.Database.ConnectionString, "dbname=recipes")
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)

	assert.True(t, cfg.RabbitMQ.Enabled())
	assert.Equal(t, "localhost", cfg.RabbitMQ.Host)
	assert.Equal(t, "35672", cfg.RabbitMQ.Port)
	assert.Equal(t, "/", cfg.RabbitMQ.VirtualHost)
	assert.Equal(t, "recipe-management", cfg.RabbitMQ.Exchange)

	assert.Equal(t, "redis://localhost:6379", cfg.Redis.URL)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_DRIVER=sqlite\n"+KeyConnectionString+"=file:recipes.db\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Cleanup(func() {
		os.Unsetenv("DB_DRIVER")
		os.Unsetenv(KeyConnectionString)
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:recipes.db", cfg.Database.ConnectionString)
	assert.False(t, cfg.RabbitMQ.Enabled())
}

func TestLoadConfigRequiresConnectionString(t *testing.T) {
	isolateEnv(t)

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), KeyConnectionString)
}

func TestValidateConfigAggregatesErrors(t *testing.T) {
	cfg := &Config{
		ServerPort: "not-a-port",
		Database:   DatabaseConfig{Driver: "oracle"},
		RabbitMQ:   RabbitMQConfig{Host: "localhost", Port: "0"},
	}

	err := ValidateConfig(cfg)
	require.Error(t, err)

	errs := multierr.Errors(err)
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		var ve ValidationError
		require.True(t, errors.As(e, &ve))
		fields = append(fields, ve.Field)
	}
	assert.ElementsMatch(t, []string{"SERVER_PORT", "DB_DRIVER", KeyConnectionString, KeyRabbitPort, KeyRabbitUsername}, fields)
}

func TestValidateConfigRejectsGuestInProduction(t *testing.T) {
	cfg := &Config{
		Environment: Production,
		ServerPort:  "8080",
		Database:    DatabaseConfig{Driver: "postgres", ConnectionString: "dsn"},
		RabbitMQ:    RabbitMQConfig{Host: "mq", Port: "5672", Username: "guest", Password: "guest"},
	}

	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), KeyRabbitPassword)
}

func TestGetEnvironment(t *testing.T) {
	tests := []struct {
		name string
		env  string
		ci   string
		want Environment
	}{
		{name: "default", want: Development},
		{name: "production", env: "production", want: Production},
		{name: "ci", ci: "true", want: CI},
		{name: "integration wins over ci", env: "IntegrationTesting", ci: "true", want: IntegrationTesting},
		{name: "functional case insensitive", env: "functionaltesting", want: FunctionalTesting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", tt.env)
			t.Setenv("CI", tt.ci)
			assert.Equal(t, tt.want, GetEnvironment())
		})
	}
}

func TestEnvironmentIsTesting(t *testing.T) {
	assert.True(t, IntegrationTesting.IsTesting())
	assert.True(t, FunctionalTesting.IsTesting())
	assert.True(t, CI.IsTesting())
	assert.False(t, Production.IsTesting())
	assert.False(t, Development.IsTesting())
}

func TestLoadConfigRateLimitAndOrigins(t *testing.T) {
	isolateEnv(t)
	t.Setenv(KeyConnectionString, "file::memory:")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("RATE_LIMIT_WRITES", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "1h")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.RateLimit.Writes)
	assert.Equal(t, time.Hour, cfg.RateLimit.Window)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
}

func TestOriginsEmpty(t *testing.T) {
	cfg := &Config{}
	assert.Nil(t, cfg.Origins())
}
