// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	JWTSecret                string  `mapstructure:"JWT_SECRET"`
	JWTIssuer                string  `mapstructure:"JWT_ISSUER"`
	JWTAudience              string  `mapstructure:"JWT_AUDIENCE"`
	Port                     string  `mapstructure:"PORT"`
	DBDriver                 string  `mapstructure:"DB_DRIVER"`
	DBSQLitePath             string  `mapstructure:"DB_SQLITE_PATH"`
	DBHost                   string  `mapstructure:"DB_HOST"`
	DBPort                   string  `mapstructure:"DB_PORT"`
	DBUser                   string  `mapstructure:"DB_USER"`
	DBPassword               string  `mapstructure:"DB_PASSWORD"`
	DBName                   string  `mapstructure:"DB_NAME"`
	DBSSLMode                string  `mapstructure:"DB_SSLMODE"`
	DBSchemaMode             string  `mapstructure:"DB_SCHEMA_MODE"`
	DBMaxOpenConns           int     `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int     `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int     `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	RedisURL                 string  `mapstructure:"REDIS_URL"`
	AllowedOrigins           string  `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags             string  `mapstructure:"FEATURE_FLAGS"`
	Env                      string  `mapstructure:"APP_ENV"`
	TracingEnabled           bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter          string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint             string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSamplerRatio      float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
	DevBootstrapModerator    bool    `mapstructure:"DEV_BOOTSTRAP_MODERATOR"`
	DevModeratorEmail        string  `mapstructure:"DEV_MODERATOR_EMAIL"`
	DevModeratorPassword     string  `mapstructure:"DEV_MODERATOR_PASSWORD"`
}

// LoadConfig loads application configuration from file and environment variables.
// A .env file in the working directory is loaded first; it never overrides
// variables already present in the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base file is optional; env vars and defaults are enough to boot.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8400")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_SQLITE_PATH", "interu.db")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "interu")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_SCHEMA_MODE", "hybrid")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_ISSUER", "interu-api")
	viper.SetDefault("JWT_AUDIENCE", "interu-client")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("FEATURE_FLAGS", "")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)
	viper.SetDefault("DEV_BOOTSTRAP_MODERATOR", false)
	viper.SetDefault("DEV_MODERATOR_EMAIL", "moderator@interu.local")
	viper.SetDefault("DEV_MODERATOR_PASSWORD", "")
}

func (c *Config) normalize() {
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.DBSchemaMode = strings.ToLower(strings.TrimSpace(c.DBSchemaMode))
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
}

// IsProduction reports whether the config targets a production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBMaxOpenConns < 0 || c.DBMaxIdleConns < 0 || c.DBConnMaxLifetimeMinutes < 0 {
		return errors.New("database pool settings must not be negative")
	}
	if c.TracingSamplerRatio < 0 || c.TracingSamplerRatio > 1 {
		return errors.New("TRACING_SAMPLER_RATIO must be between 0 and 1")
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBDriver == "sqlite" {
			return errors.New("DB_DRIVER=sqlite is not supported in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable TLS in production")
		}
		if c.DevBootstrapModerator {
			return errors.New("DEV_BOOTSTRAP_MODERATOR cannot be enabled in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
