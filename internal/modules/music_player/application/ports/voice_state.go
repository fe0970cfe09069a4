package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// VoiceStateProvider looks up where users currently are.
type VoiceStateProvider interface {
	// GetUserVoiceChannel returns the voice channel the user is in, or 0 if none.
	GetUserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error)
}
