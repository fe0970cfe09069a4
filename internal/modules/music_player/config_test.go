package music_player

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("LAVALINK_ADDRESS", "lavalink:2333")
	t.Setenv("LAVALINK_PASSWORD", "youshallnotpass")
	t.Setenv("LAVALINK_SECURE", "true")
	for _, key := range []string{"VOICE_JOIN_TIMEOUT", "PLAYER_EVENT_BUFFER"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lc := cfg.LavalinkConfig()
	if lc.Address != "lavalink:2333" || lc.Password != "youshallnotpass" || !lc.Secure {
		t.Errorf("unexpected lavalink config %+v", lc)
	}
	if lc.JoinTimeout != 10*time.Second {
		t.Errorf("expected default join timeout, got %s", lc.JoinTimeout)
	}
	if cfg.EventBufferSize != 100 {
		t.Errorf("expected default event buffer, got %d", cfg.EventBufferSize)
	}
}

func TestLoadConfig_MissingLavalink(t *testing.T) {
	t.Setenv("LAVALINK_ADDRESS", "")
	t.Setenv("LAVALINK_PASSWORD", "")

	if _, err := loadConfig(); err == nil {
		t.Error("expected error for missing Lavalink settings")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid",
			cfg: Config{
				LavalinkAddress: "a", LavalinkPassword: "p",
				VoiceJoinTimeout: time.Second, EventBufferSize: 1,
			},
		},
		{
			name: "zero timeout",
			cfg: Config{
				LavalinkAddress: "a", LavalinkPassword: "p",
				EventBufferSize: 1,
			},
			wantErr: true,
		},
		{
			name: "zero buffer",
			cfg: Config{
				LavalinkAddress: "a", LavalinkPassword: "p",
				VoiceJoinTimeout: time.Second,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
