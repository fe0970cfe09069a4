package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Track is a queued request. Everything but the removed flag is fixed once enqueued.
type Track struct {
	Name        string // full message content that requested the track
	Link        string // URL or free-text search query handed to the audio engine
	RequesterID snowflake.ID
	EnqueuedAt  time.Time

	removed bool
}

// NewTrack creates a Track requested by the given user.
func NewTrack(name, link string, requesterID snowflake.ID) Track {
	return Track{
		Name:        name,
		Link:        link,
		RequesterID: requesterID,
		EnqueuedAt:  time.Now().UTC(),
	}
}

// Removed reports whether the track has been tombstoned.
func (t Track) Removed() bool {
	return t.removed
}

// Query classifies the track's link for the audio engine.
func (t Track) Query() SearchQuery {
	return ParseSearchQuery(t.Link)
}
