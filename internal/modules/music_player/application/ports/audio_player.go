package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/joovy/internal/modules/music_player/domain"
)

// AudioPlayer is the playback engine a playlist drives.
type AudioPlayer interface {
	// Play resolves the track's link and starts playing it, replacing whatever is playing.
	Play(ctx context.Context, guildID snowflake.ID, track domain.Track) error

	// Stop stops the current playback.
	Stop(ctx context.Context, guildID snowflake.ID) error
}
