package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// PathEnv names the environment variable holding the config file path
const PathEnv = "PLAYGROUND_CONFIG"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server" yaml:"server" json:"server"`
	Sandbox   SandboxConfig   `toml:"sandbox" yaml:"sandbox" json:"sandbox"`
	Logging   LogConfig       `toml:"logging" yaml:"logging" json:"logging"`
	RateLimit RateLimitConfig `toml:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" toml:"port" yaml:"port" json:"port"`
	Host string `envconfig:"HOST" toml:"host" yaml:"host" json:"host"`
}

// SandboxConfig holds script execution limits.
type SandboxConfig struct {
	MaxIterations    int      `envconfig:"SANDBOX_MAX_ITERATIONS" toml:"max_iterations" yaml:"max_iterations" json:"max_iterations"`
	Timeout          Duration `envconfig:"SANDBOX_TIMEOUT" toml:"timeout" yaml:"timeout" json:"timeout"`
	MaxCallStackSize int      `envconfig:"SANDBOX_MAX_STACK" toml:"max_call_stack" yaml:"max_call_stack" json:"max_call_stack"`
	MaxOutputBytes   int      `envconfig:"SANDBOX_MAX_OUTPUT" toml:"max_output_bytes" yaml:"max_output_bytes" json:"max_output_bytes"`
	MaxSourceBytes   int      `envconfig:"SANDBOX_MAX_SOURCE" toml:"max_source_bytes" yaml:"max_source_bytes" json:"max_source_bytes"`
	PoolSize         int      `envconfig:"SANDBOX_POOL_SIZE" toml:"pool_size" yaml:"pool_size" json:"pool_size"`
	AcquireTimeout   Duration `envconfig:"SANDBOX_ACQUIRE_TIMEOUT" toml:"acquire_timeout" yaml:"acquire_timeout" json:"acquire_timeout"`
	BreakerThreshold int      `envconfig:"SANDBOX_BREAKER_THRESHOLD" toml:"breaker_threshold" yaml:"breaker_threshold" json:"breaker_threshold"`
	BreakerCooldown  Duration `envconfig:"SANDBOX_BREAKER_COOLDOWN" toml:"breaker_cooldown" yaml:"breaker_cooldown" json:"breaker_cooldown"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" toml:"level" yaml:"level" json:"level"`
	Development bool   `envconfig:"LOG_DEV" toml:"development" yaml:"development" json:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" toml:"requests_per_second" yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" toml:"burst" yaml:"burst" json:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" toml:"enabled" yaml:"enabled" json:"enabled"`
}

// Duration is a time.Duration read from strings such as "5s" in files and
// the environment.
type Duration time.Duration

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Load builds configuration from defaults, then the file at path (if any),
// then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Fields without a matching variable keep their current value
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load(os.Getenv(PathEnv))
	if err != nil {
		return Default()
	}
	return cfg
}

// ResolvePath prefers an explicit path over PLAYGROUND_CONFIG
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	return os.Getenv(PathEnv)
}

// LoadFile overlays the file at path onto cfg. The format follows the
// extension: .toml, .yaml/.yml or .json.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".json":
		err = sonic.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config file extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects values the server cannot start with
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port must be set")
	}
	if c.Sandbox.MaxIterations <= 0 {
		return fmt.Errorf("sandbox max iterations must be positive, got %d", c.Sandbox.MaxIterations)
	}
	if c.Sandbox.Timeout < 0 || c.Sandbox.AcquireTimeout < 0 || c.Sandbox.BreakerCooldown < 0 {
		return fmt.Errorf("sandbox timeouts must not be negative")
	}
	if c.Sandbox.MaxCallStackSize < 0 || c.Sandbox.MaxOutputBytes < 0 || c.Sandbox.MaxSourceBytes < 0 {
		return fmt.Errorf("sandbox size limits must not be negative")
	}
	if c.Sandbox.PoolSize <= 0 {
		return fmt.Errorf("sandbox pool size must be positive, got %d", c.Sandbox.PoolSize)
	}
	if c.Sandbox.BreakerThreshold <= 0 {
		return fmt.Errorf("sandbox breaker threshold must be positive, got %d", c.Sandbox.BreakerThreshold)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit requires positive rps and burst")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Sandbox: SandboxConfig{
			MaxIterations:    1000,
			Timeout:          Duration(5 * time.Second),
			MaxCallStackSize: 1024,
			MaxOutputBytes:   1 << 20,
			MaxSourceBytes:   256 << 10,
			PoolSize:         4,
			AcquireTimeout:   Duration(5 * time.Second),
			BreakerThreshold: 5,
			BreakerCooldown:  Duration(10 * time.Second),
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
