package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProductionConfig() *Config {
	return &Config{
		Env:        "production",
		DBDriver:   "postgres",
		DBSSLMode:  "require",
		JWTSecret:  "secure-secret-at-least-32-chars-long",
		DBPassword: "secure-password",
		Port:       "8080",
		RedisURL:   "redis://localhost:6379",
	}
}

func TestConfig_ValidateProduction(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid production config", func(*Config) {}, false},
		{"default secret", func(c *Config) { c.JWTSecret = defaultJWTSecret }, true},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, true},
		{"weak db password", func(c *Config) { c.DBPassword = "password" }, true},
		{"ssl disabled", func(c *Config) { c.DBSSLMode = "disable" }, true},
		{"sqlite driver", func(c *Config) { c.DBDriver = "sqlite" }, true},
		{"dev moderator bootstrap", func(c *Config) { c.DevBootstrapModerator = true }, true},
		{"prod alias", func(c *Config) { c.Env = "prod" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validProductionConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateGeneral(t *testing.T) {
	c := &Config{Env: "development", Port: "8400", JWTSecret: "x"}
	assert.NoError(t, c.Validate())

	c.DBDriver = "mysql"
	assert.Error(t, c.Validate())

	c.DBDriver = "sqlite"
	c.TracingSamplerRatio = 1.5
	assert.Error(t, c.Validate())

	c.TracingSamplerRatio = 0.5
	c.DBMaxOpenConns = -1
	assert.Error(t, c.Validate())

	c.Port = ""
	assert.Error(t, c.Validate())
}

func TestLoadConfig_NormalizesEnvironment(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("DB_DRIVER", " SQLite ")
	t.Setenv("FEATURE_FLAGS", "rating_requires_completion=on")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "rating_requires_completion=on", c.FeatureFlags)
	assert.Equal(t, "interu-api", c.JWTIssuer)
	assert.Equal(t, 25, c.DBMaxOpenConns)
	assert.False(t, c.IsProduction())
}

func TestLoadConfig_ReadsDotEnv(t *testing.T) {
	defer viper.Reset()

	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(".env",
		[]byte("DEV_MODERATOR_PASSWORD=from-dotenv\nJWT_ISSUER=from-dotenv\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("DEV_MODERATOR_PASSWORD") })

	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_ISSUER", "from-process")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", c.DevModeratorPassword)
	assert.Equal(t, "from-process", c.JWTIssuer)
}
