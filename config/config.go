package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Keys shared with the test environment provisioner. The double underscore
// mirrors the hierarchical key style the deployment tooling already uses.
const (
	KeyConnectionString  = "ConnectionStrings__RecipeManagement"
	KeyRabbitHost        = "RabbitMq__Host"
	KeyRabbitVirtualHost = "RabbitMq__VirtualHost"
	KeyRabbitUsername    = "RabbitMq__Username"
	KeyRabbitPassword    = "RabbitMq__Password"
	KeyRabbitPort        = "RabbitMq__Port"
	KeyEnvironment       = "ENV"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment `mapstructure:"-"`

	// Server configuration
	ServerPort string `mapstructure:"server_port"`
	ServerHost string `mapstructure:"server_host"`
	LogLevel   string `mapstructure:"log_level"`

	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	// CORSOrigins is a comma separated list of allowed browser origins.
	CORSOrigins string `mapstructure:"cors_origins"`
}

// DatabaseConfig describes the relational store.
type DatabaseConfig struct {
	Driver           string        `mapstructure:"driver"`
	ConnectionString string        `mapstructure:"connection_string"`
	MaxOpenConns     int           `mapstructure:"max_open_conns"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig configures the optional recipe read cache. An empty URL
// disables caching.
type RedisConfig struct {
	URL string        `mapstructure:"url"`
	TTL time.Duration `mapstructure:"ttl"`
}

// RabbitMQConfig configures the event publisher. An empty host disables
// publishing.
type RabbitMQConfig struct {
	Host        string `mapstructure:"host"`
	VirtualHost string `mapstructure:"virtual_host"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	Port        string `mapstructure:"port"`
	Exchange    string `mapstructure:"exchange"`
}

// RateLimitConfig limits recipe writes per caller. It needs Redis; a zero
// Writes disables it.
type RateLimitConfig struct {
	Writes int           `mapstructure:"writes"`
	Window time.Duration `mapstructure:"window"`
}

// Origins splits CORSOrigins. Nil means the middleware defaults apply.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Enabled reports whether a broker was configured.
func (r RabbitMQConfig) Enabled() bool {
	return r.Host != ""
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.Environment = GetEnvironment()

	if cfg.Environment == Production {
		loadProdSecrets(cfg)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("log_level", "info")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.connection_string", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.ttl", 10*time.Minute)

	v.SetDefault("rabbitmq.host", "")
	v.SetDefault("rabbitmq.virtual_host", "/")
	v.SetDefault("rabbitmq.username", "guest")
	v.SetDefault("rabbitmq.password", "guest")
	v.SetDefault("rabbitmq.port", "5672")
	v.SetDefault("rabbitmq.exchange", "recipe-management")

	v.SetDefault("rate_limit.writes", 60)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("cors_origins", "")
}

func bindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"server_port":                "SERVER_PORT",
		"server_host":                "SERVER_HOST",
		"log_level":                  "LOG_LEVEL",
		"database.driver":            "DB_DRIVER",
		"database.connection_string": KeyConnectionString,
		"database.max_open_conns":    "DB_MAX_OPEN_CONNS",
		"database.max_idle_conns":    "DB_MAX_IDLE_CONNS",
		"database.conn_max_lifetime": "DB_CONN_MAX_LIFETIME",
		"redis.url":                  "REDIS_URL",
		"redis.ttl":                  "REDIS_TTL",
		"rabbitmq.host":              KeyRabbitHost,
		"rabbitmq.virtual_host":      KeyRabbitVirtualHost,
		"rabbitmq.username":          KeyRabbitUsername,
		"rabbitmq.password":          KeyRabbitPassword,
		"rabbitmq.port":              KeyRabbitPort,
		"rabbitmq.exchange":          "RABBITMQ_EXCHANGE",
		"rate_limit.writes":          "RATE_LIMIT_WRITES",
		"rate_limit.window":          "RATE_LIMIT_WINDOW",
		"cors_origins":               "CORS_ORIGINS",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

// loadDotEnv loads a .env file when present. Variables already set in the
// process environment are not overridden.
func loadDotEnv() error {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// loadProdSecrets fills credentials from Docker secrets when the environment
// left them empty.
func loadProdSecrets(cfg *Config) {
	if cfg.Database.ConnectionString == "" {
		cfg.Database.ConnectionString = readSecret("connection_string")
	}
	if secret := readSecret("rabbitmq_password"); secret != "" {
		cfg.RabbitMQ.Password = secret
	}
	if cfg.Redis.URL == "" {
		cfg.Redis.URL = readSecret("redis_url")
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
