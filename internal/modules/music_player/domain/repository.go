package domain

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// PlaylistFactory builds the playlist for a guild that has none yet.
type PlaylistFactory func(ctx context.Context) (*Playlist, error)

// PlaylistRepository keeps the live playlist of every guild.
type PlaylistRepository interface {
	// Get returns the playlist for the given guild, or nil if none exists.
	Get(guildID snowflake.ID) *Playlist

	// GetOrCreate returns the guild's playlist, calling create at most once
	// across concurrent callers. created is true only for the caller whose
	// factory produced the playlist.
	GetOrCreate(
		ctx context.Context,
		guildID snowflake.ID,
		create PlaylistFactory,
	) (playlist *Playlist, created bool, err error)

	// Delete removes the playlist for the given guild.
	Delete(guildID snowflake.ID)
}
