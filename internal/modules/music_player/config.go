package music_player

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sglre6355/joovy/internal/modules/music_player/infrastructure"
)

// Config holds the music player module configuration.
type Config struct {
	LavalinkAddress  string        `env:"LAVALINK_ADDRESS"`
	LavalinkPassword string        `env:"LAVALINK_PASSWORD"`
	LavalinkSecure   bool          `env:"LAVALINK_SECURE"`
	VoiceJoinTimeout time.Duration `env:"VOICE_JOIN_TIMEOUT" envDefault:"10s"`
	EventBufferSize  int           `env:"PLAYER_EVENT_BUFFER" envDefault:"100"`
}

// Validate checks for missing Lavalink settings.
func (c *Config) Validate() error {
	var errs []error
	if c.LavalinkAddress == "" {
		errs = append(errs, errors.New("LAVALINK_ADDRESS is required"))
	}
	if c.LavalinkPassword == "" {
		errs = append(errs, errors.New("LAVALINK_PASSWORD is required"))
	}
	if c.VoiceJoinTimeout <= 0 {
		errs = append(errs, fmt.Errorf("VOICE_JOIN_TIMEOUT must be positive, got %s", c.VoiceJoinTimeout))
	}
	if c.EventBufferSize < 1 {
		errs = append(errs, fmt.Errorf("PLAYER_EVENT_BUFFER must be positive, got %d", c.EventBufferSize))
	}
	return errors.Join(errs...)
}

// LavalinkConfig returns the adapter settings.
func (c *Config) LavalinkConfig() infrastructure.LavalinkConfig {
	return infrastructure.LavalinkConfig{
		Address:     c.LavalinkAddress,
		Password:    c.LavalinkPassword,
		Secure:      c.LavalinkSecure,
		JoinTimeout: c.VoiceJoinTimeout,
	}
}

func loadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse music player config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
