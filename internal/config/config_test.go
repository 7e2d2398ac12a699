package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "./data/missal.db", cfg.DatabasePath)
	assert.True(t, cfg.CacheEnabled)
	assert.Empty(t, cfg.RulesPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)

	rules := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte("blocks: {}\n"), 0o644))

	t.Setenv("PORT", "3000")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_PATH", "/data/test.db")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("RULES_PATH", rules)
	t.Setenv("API_KEY", "secret-key-123")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, "/data/test.db", cfg.DatabasePath)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, rules, cfg.RulesPath)
	assert.Equal(t, "secret-key-123", cfg.APIKey)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)

	t.Setenv("PORT", "not-a-number")
	t.Setenv("CACHE_ENABLED", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.CacheEnabled)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)

	t.Setenv("ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_KEY is required in production")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:         8080,
			Env:          EnvDevelopment,
			DatabasePath: "./data/test.db",
			CacheEnabled: true,
			LogLevel:     "info",
			LogFormat:    "text",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid development config",
			mutate: func(c *Config) {},
		},
		{
			name: "valid production config",
			mutate: func(c *Config) {
				c.Env = EnvProduction
				c.APIKey = "required-in-prod"
				c.LogFormat = "json"
			},
		},
		{
			name:    "production requires API key",
			mutate:  func(c *Config) { c.Env = EnvProduction },
			wantErr: "API_KEY",
		},
		{
			name:    "invalid port - too low",
			mutate:  func(c *Config) { c.Port = 0 },
			wantErr: "PORT",
		},
		{
			name:    "invalid port - too high",
			mutate:  func(c *Config) { c.Port = 70000 },
			wantErr: "PORT",
		},
		{
			name:    "invalid environment",
			mutate:  func(c *Config) { c.Env = "invalid" },
			wantErr: "ENV",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: "LOG_FORMAT",
		},
		{
			name:    "empty database path with cache",
			mutate:  func(c *Config) { c.DatabasePath = "" },
			wantErr: "DATABASE_PATH",
		},
		{
			name: "empty database path without cache",
			mutate: func(c *Config) {
				c.DatabasePath = ""
				c.CacheEnabled = false
			},
		},
		{
			name:    "missing rules file",
			mutate:  func(c *Config) { c.RulesPath = "/nonexistent/rules.yaml" },
			wantErr: "RULES_PATH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Validate_CollectsAllErrors(t *testing.T) {
	cfg := Config{Port: 0, Env: "nope", LogLevel: "loud", LogFormat: "xml", CacheEnabled: true}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"PORT", "ENV", "DATABASE_PATH", "LOG_LEVEL", "LOG_FORMAT"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	cfg := &Config{Env: EnvDevelopment}
	assert.True(t, cfg.IsDevelopment())

	cfg.Env = EnvProduction
	assert.False(t, cfg.IsDevelopment())
}

func TestConfig_IsProduction(t *testing.T) {
	cfg := &Config{Env: EnvProduction}
	assert.True(t, cfg.IsProduction())

	cfg.Env = EnvDevelopment
	assert.False(t, cfg.IsProduction())
}

// clearEnv blanks every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	vars := []string{
		"PORT", "ENV", "DATABASE_PATH", "CACHE_ENABLED", "RULES_PATH",
		"API_KEY", "LOG_LEVEL", "LOG_FORMAT",
	}
	for _, v := range vars {
		t.Setenv(v, "")
	}
}
