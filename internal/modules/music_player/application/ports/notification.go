package ports

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/joovy/internal/modules/music_player/domain"
)

// NotificationSender posts playback announcements to a text channel.
type NotificationSender interface {
	SendNowPlaying(channelID snowflake.ID, track domain.Track) error
	SendEndOfPlaylist(channelID snowflake.ID) error
}
