package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	// Sandbox config
	assert.Equal(t, 1000, cfg.Sandbox.MaxIterations)
	assert.Equal(t, 5*time.Second, cfg.Sandbox.Timeout.Std())
	assert.Equal(t, 1024, cfg.Sandbox.MaxCallStackSize)
	assert.Equal(t, 1<<20, cfg.Sandbox.MaxOutputBytes)
	assert.Equal(t, 4, cfg.Sandbox.PoolSize)
	assert.Equal(t, 5, cfg.Sandbox.BreakerThreshold)
	assert.Equal(t, 10*time.Second, cfg.Sandbox.BreakerCooldown.Std())

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.NoError(t, cfg.Validate())
}

func TestLoadOrDefault(t *testing.T) {
	// Should return default when no env vars set
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                   "9000",
		"HOST":                   "127.0.0.1",
		"SANDBOX_MAX_ITERATIONS": "50",
		"SANDBOX_TIMEOUT":        "250ms",
		"SANDBOX_MAX_STACK":      "128",
		"SANDBOX_MAX_OUTPUT":     "4096",
		"SANDBOX_MAX_SOURCE":     "2048",
		"SANDBOX_POOL_SIZE":      "8",
		"LOG_LEVEL":              "debug",
		"LOG_DEV":                "true",
		"RATE_LIMIT_RPS":         "500",
		"RATE_LIMIT_BURST":       "1000",
		"RATE_LIMIT_ENABLED":     "false",
	}

	for key, value := range envVars {
		err := os.Setenv(key, value)
		require.NoError(t, err)
		defer os.Unsetenv(key)
	}

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	assert.Equal(t, 50, cfg.Sandbox.MaxIterations)
	assert.Equal(t, 250*time.Millisecond, cfg.Sandbox.Timeout.Std())
	assert.Equal(t, 128, cfg.Sandbox.MaxCallStackSize)
	assert.Equal(t, 4096, cfg.Sandbox.MaxOutputBytes)
	assert.Equal(t, 2048, cfg.Sandbox.MaxSourceBytes)
	assert.Equal(t, 8, cfg.Sandbox.PoolSize)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	err := os.Setenv("PORT", "3000")
	require.NoError(t, err)
	defer os.Unsetenv("PORT")

	err = os.Setenv("LOG_LEVEL", "warn")
	require.NoError(t, err)
	defer os.Unsetenv("LOG_LEVEL")

	cfg, err := Load("")
	require.NoError(t, err)

	// Verify overridden values
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Verify default values still apply
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 1000, cfg.Sandbox.MaxIterations)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadFileFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "playground.toml",
			content: `
[server]
port = "7000"

[sandbox]
max_iterations = 25
timeout = "2s"
`,
		},
		{
			name: "yaml",
			file: "playground.yaml",
			content: `
server:
  port: "7000"
sandbox:
  max_iterations: 25
  timeout: 2s
`,
		},
		{
			name:    "json",
			file:    "playground.json",
			content: `{"server": {"port": "7000"}, "sandbox": {"max_iterations": 25, "timeout": "2s"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)

			assert.Equal(t, "7000", cfg.Server.Port)
			assert.Equal(t, 25, cfg.Sandbox.MaxIterations)
			assert.Equal(t, 2*time.Second, cfg.Sandbox.Timeout.Std())

			// Untouched sections keep defaults
			assert.Equal(t, "0.0.0.0", cfg.Server.Host)
			assert.Equal(t, 4, cfg.Sandbox.PoolSize)
			assert.Equal(t, "info", cfg.Logging.Level)
		})
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "playground.toml", "[sandbox]\nmax_iterations = 25\n")

	err := os.Setenv("SANDBOX_MAX_ITERATIONS", "75")
	require.NoError(t, err)
	defer os.Unsetenv("SANDBOX_MAX_ITERATIONS")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 75, cfg.Sandbox.MaxIterations)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
		assert.Error(t, err)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Load(writeFile(t, "playground.ini", "port=1"))
		assert.ErrorContains(t, err, "unsupported config file extension")
	})

	t.Run("malformed file", func(t *testing.T) {
		_, err := Load(writeFile(t, "playground.json", "{"))
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		err := os.Setenv("SANDBOX_TIMEOUT", "soon")
		require.NoError(t, err)
		defer os.Unsetenv("SANDBOX_TIMEOUT")

		_, err = Load("")
		assert.Error(t, err)
	})

	t.Run("invalid value", func(t *testing.T) {
		err := os.Setenv("SANDBOX_POOL_SIZE", "0")
		require.NoError(t, err)
		defer os.Unsetenv("SANDBOX_POOL_SIZE")

		_, err = Load("")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty port", mutate: func(c *Config) { c.Server.Port = "" }},
		{name: "zero iterations", mutate: func(c *Config) { c.Sandbox.MaxIterations = 0 }},
		{name: "negative timeout", mutate: func(c *Config) { c.Sandbox.Timeout = Duration(-time.Second) }},
		{name: "negative output", mutate: func(c *Config) { c.Sandbox.MaxOutputBytes = -1 }},
		{name: "zero pool", mutate: func(c *Config) { c.Sandbox.PoolSize = 0 }},
		{name: "zero breaker threshold", mutate: func(c *Config) { c.Sandbox.BreakerThreshold = 0 }},
		{name: "rate limit without burst", mutate: func(c *Config) { c.RateLimit.Burst = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestResolvePath(t *testing.T) {
	err := os.Setenv(PathEnv, "/etc/playground.toml")
	require.NoError(t, err)
	defer os.Unsetenv(PathEnv)

	assert.Equal(t, "/etc/playground.toml", ResolvePath(""))
	assert.Equal(t, "local.yaml", ResolvePath("local.yaml"))
}

func TestDuration(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte(" 1m30s ")))
	assert.Equal(t, 90*time.Second, d.Std())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("ten")))
}
