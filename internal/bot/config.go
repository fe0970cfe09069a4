package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sglre6355/joovy/internal/command"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// ConfigPathEnv names the environment variable pointing at an optional YAML config file.
const ConfigPathEnv = "JOOVY_CONFIG"

// ErrMissingToken is returned when no Discord token is configured.
var ErrMissingToken = errors.New("DISCORD_TOKEN is required")

// Config holds the bot configuration.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN" yaml:"-"` // from env only
	LogLevel     string `env:"LOG_LEVEL"     yaml:"log_level"`

	InboundBuffer  int           `env:"INBOUND_BUFFER"  yaml:"inbound_buffer"`
	MaxConcurrent  int           `env:"MAX_CONCURRENT"  yaml:"max_concurrent"`
	CommandTimeout time.Duration `env:"COMMAND_TIMEOUT" yaml:"command_timeout"`
	CommandRate    float64       `env:"COMMAND_RATE"    yaml:"command_rate"` // per author per second, 0 disables
	CommandBurst   int           `env:"COMMAND_BURST"   yaml:"command_burst"`

	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// TelemetryConfig holds the OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled         bool          `env:"OTEL_ENABLED"          yaml:"enabled"`
	ServiceName     string        `env:"OTEL_SERVICE_NAME"     yaml:"service_name"`
	TracesEndpoint  string        `env:"OTEL_TRACES_ENDPOINT"  yaml:"traces_endpoint"`
	MetricsInterval time.Duration `env:"OTEL_METRICS_INTERVAL" yaml:"metrics_interval"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:       "info",
		InboundBuffer:  command.DefaultInboundBuffer,
		MaxConcurrent:  command.DefaultMaxConcurrent,
		CommandTimeout: 30 * time.Second,
		CommandBurst:   1,
		Telemetry: TelemetryConfig{
			ServiceName:     "joovy",
			MetricsInterval: 30 * time.Second,
		},
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// named by JOOVY_CONFIG, and environment variables, in increasing precedence.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(ConfigPathEnv); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// config file is optional
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for missing or out of range values.
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return ErrMissingToken
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.InboundBuffer < 1 {
		return fmt.Errorf("INBOUND_BUFFER must be positive, got %d", c.InboundBuffer)
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("MAX_CONCURRENT must be positive, got %d", c.MaxConcurrent)
	}
	if c.CommandTimeout < 0 {
		return fmt.Errorf("COMMAND_TIMEOUT must not be negative, got %s", c.CommandTimeout)
	}
	if c.CommandRate < 0 {
		return fmt.Errorf("COMMAND_RATE must not be negative, got %g", c.CommandRate)
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// HandlerConfig returns the message pipeline settings.
func (c *Config) HandlerConfig() command.HandlerConfig {
	return command.HandlerConfig{
		InboundBuffer: c.InboundBuffer,
		MaxConcurrent: c.MaxConcurrent,
		Timeout:       c.CommandTimeout,
		RateLimit:     rate.Limit(c.CommandRate),
		RateBurst:     c.CommandBurst,
	}
}
