package music_player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/joovy/internal/bot"
	"github.com/sglre6355/joovy/internal/command"
	"github.com/sglre6355/joovy/internal/modules/music_player/application"
	"github.com/sglre6355/joovy/internal/modules/music_player/application/ports"
	"github.com/sglre6355/joovy/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/joovy/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/joovy/internal/modules/music_player/presentation"
)

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*MusicPlayerModule)(nil)

// ErrNoSession is returned when the module is initialized without a Discord session.
var ErrNoSession = errors.New("music player requires a Discord session")

// MusicPlayerModule provides the playlist commands and drives Lavalink playback.
type MusicPlayerModule struct {
	config          *Config
	lavalinkAdapter *infrastructure.LavalinkAdapter

	registry      *infrastructure.PlaylistRegistry
	eventBus      *infrastructure.ChannelEventBus
	commands      []command.Command
	eventHandlers *presentation.EventHandlers
}

// components are the outside collaborators the module drives.
type components struct {
	botID      snowflake.ID
	player     ports.AudioPlayer
	voice      ports.VoiceConnection
	voiceState ports.VoiceStateProvider
	notifier   ports.NotificationSender
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the chat commands for this module.
func (m *MusicPlayerModule) Commands() []command.Command {
	return m.commands
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.handleVoiceServerUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.handleVoiceStateUpdate(s, event)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init connects to Lavalink and wires the playlist services.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil || deps.Session.State == nil || deps.Session.State.User == nil {
		return ErrNoSession
	}
	if m.config == nil {
		if err := m.LoadConfig(); err != nil {
			return err
		}
	}

	botID, err := snowflake.Parse(deps.Session.State.User.ID)
	if err != nil {
		return fmt.Errorf("failed to parse bot ID: %w", err)
	}

	// Create event bus (needed by Lavalink adapter for publishing events)
	m.eventBus = infrastructure.NewChannelEventBus(m.config.EventBufferSize)

	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(
		context.Background(),
		deps.Session,
		m.eventBus,
		m.config.LavalinkConfig(),
	)
	if err != nil {
		m.eventBus.Close()
		return err
	}
	m.lavalinkAdapter = lavalinkAdapter

	m.wire(components{
		botID:      botID,
		player:     lavalinkAdapter,
		voice:      lavalinkAdapter,
		voiceState: infrastructure.NewVoiceStateProvider(deps.Session.State),
		notifier:   infrastructure.NewNotifier(deps.Session),
	})

	slog.Info("music_player module initialized with Lavalink")

	return nil
}

// wire builds the services, event handlers and commands around c.
// The event bus must already exist.
func (m *MusicPlayerModule) wire(c components) {
	m.registry = infrastructure.NewPlaylistRegistry()

	playlist := usecases.NewPlaylistService(m.registry, c.voice, c.voiceState, m.eventBus)
	playback := usecases.NewPlaybackService(m.registry, c.player, m.eventBus)

	application.NewPlaybackEventHandler(playback, m.eventBus).Start()
	application.NewNotificationEventHandler(m.eventBus, c.notifier).Start()

	m.commands = presentation.Commands(playlist, playback)
	m.eventHandlers = presentation.NewEventHandlers(c.botID, playlist, c.voiceState)
}

// Shutdown cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	// Close event bus
	if m.eventBus != nil {
		m.eventBus.Close()
	}

	// Close Lavalink connection
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Link().Close()
	}

	if m.registry != nil && m.registry.Count() > 0 {
		slog.Info("discarded active playlists", "count", m.registry.Count())
	}

	return nil
}

// Event handlers.

func (m *MusicPlayerModule) handleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceServerUpdate(event)
	}
}

func (m *MusicPlayerModule) handleVoiceStateUpdate(
	s *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceStateUpdate(event)
	}
	if m.eventHandlers != nil {
		m.eventHandlers.HandleVoiceStateUpdate(s, event)
	}
}
