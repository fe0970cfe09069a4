package infrastructure

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/joovy/internal/modules/music_player/application/ports"
	"github.com/sglre6355/joovy/internal/modules/music_player/domain"
)

// ChannelSender is the subset of *discordgo.Session used to post to text channels.
type ChannelSender interface {
	ChannelMessageSend(
		channelID string,
		content string,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
}

// Notifier sends playback announcements to Discord channels.
type Notifier struct {
	sender ChannelSender
}

// NewNotifier creates a new Notifier.
func NewNotifier(sender ChannelSender) *Notifier {
	return &Notifier{
		sender: sender,
	}
}

// SendNowPlaying announces the track that just started.
func (n *Notifier) SendNowPlaying(channelID snowflake.ID, track domain.Track) error {
	content := fmt.Sprintf("Now playing %s", track.Name)
	if _, err := n.sender.ChannelMessageSend(channelID.String(), content); err != nil {
		return fmt.Errorf("failed to send now playing message: %w", err)
	}
	return nil
}

// SendEndOfPlaylist announces that the playlist ran out of tracks.
func (n *Notifier) SendEndOfPlaylist(channelID snowflake.ID) error {
	if _, err := n.sender.ChannelMessageSend(channelID.String(), "End of playlist"); err != nil {
		return fmt.Errorf("failed to send end of playlist message: %w", err)
	}
	return nil
}

// Ensure Notifier implements ports.NotificationSender.
var _ ports.NotificationSender = (*Notifier)(nil)
