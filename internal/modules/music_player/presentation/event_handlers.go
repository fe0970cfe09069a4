package presentation

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/joovy/internal/modules/music_player/application/ports"
	"github.com/sglre6355/joovy/internal/modules/music_player/application/usecases"
)

// EventHandlers reacts to gateway events that end a guild's voice session.
type EventHandlers struct {
	botID      snowflake.ID
	playlist   *usecases.PlaylistService
	voiceState ports.VoiceStateProvider
}

// NewEventHandlers creates EventHandlers for the bot user botID. voiceState
// must reflect the gateway's latest view, ahead of handler execution.
func NewEventHandlers(
	botID snowflake.ID,
	playlist *usecases.PlaylistService,
	voiceState ports.VoiceStateProvider,
) *EventHandlers {
	return &EventHandlers{botID: botID, playlist: playlist, voiceState: voiceState}
}

// HandleVoiceStateUpdate discards the guild's playlist once the bot is no
// longer in any voice channel, whether it left, was kicked or was moved out.
// Handlers run concurrently, so a leave can be handled after the bot already
// rejoined for a new playlist; such a stale leave is ignored.
func (h *EventHandlers) HandleVoiceStateUpdate(_ *discordgo.Session, event *discordgo.VoiceStateUpdate) {
	if !h.botLeftVoice(event) {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	channelID, err := h.voiceState.GetUserVoiceChannel(guildID, h.botID)
	if err != nil {
		slog.Warn("failed to look up bot voice state, discarding playlist", "guild", guildID, "error", err)
	} else if channelID != 0 {
		slog.Debug("ignored stale voice disconnect", "guild", guildID, "channel", channelID)
		return
	}

	h.playlist.HandleBotDisconnected(guildID)
}

func (h *EventHandlers) botLeftVoice(event *discordgo.VoiceStateUpdate) bool {
	return event.VoiceState != nil && event.UserID == h.botID.String() && event.ChannelID == ""
}
