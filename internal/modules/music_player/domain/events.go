package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// TrackEndReason represents why a track ended.
type TrackEndReason string

const (
	TrackEndFinished   TrackEndReason = "finished"
	TrackEndLoadFailed TrackEndReason = "load_failed"
	TrackEndStopped    TrackEndReason = "stopped"
	TrackEndReplaced   TrackEndReason = "replaced"
	TrackEndCleanup    TrackEndReason = "cleanup"
)

// ShouldAdvanceQueue returns true if this end reason should advance the queue.
func (r TrackEndReason) ShouldAdvanceQueue() bool {
	return r == TrackEndFinished || r == TrackEndLoadFailed
}

// TrackEnqueuedEvent is published when a track is appended to a playlist.
type TrackEnqueuedEvent struct {
	GuildID     snowflake.ID
	Index       int
	Track       Track
	ShouldStart bool // nothing was playing, so playback has to be kicked off
}

// TrackEndedEvent is published by the audio engine when a track stops.
type TrackEndedEvent struct {
	GuildID snowflake.ID
	Reason  TrackEndReason
}

// CurrentTrackRemovedEvent is published when the playing track was tombstoned by a user.
type CurrentTrackRemovedEvent struct {
	GuildID snowflake.ID
}

// PlaybackStartedEvent is published once the audio engine accepted a track.
type PlaybackStartedEvent struct {
	GuildID               snowflake.ID
	Track                 Track
	NotificationChannelID snowflake.ID
}

// PlaylistExhaustedEvent is published when the cursor runs past the last track.
type PlaylistExhaustedEvent struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID
}
