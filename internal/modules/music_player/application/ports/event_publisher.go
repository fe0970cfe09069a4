package ports

import (
	"context"

	"github.com/sglre6355/joovy/internal/modules/music_player/domain"
)

// EventPublisher publishes playlist events asynchronously.
type EventPublisher interface {
	PublishTrackEnqueued(event domain.TrackEnqueuedEvent)
	PublishTrackEnded(event domain.TrackEndedEvent)
	PublishCurrentTrackRemoved(event domain.CurrentTrackRemovedEvent)
	PublishPlaybackStarted(event domain.PlaybackStartedEvent)
	PublishPlaylistExhausted(event domain.PlaylistExhaustedEvent)
}

// EventSubscriber registers handlers for playlist events.
type EventSubscriber interface {
	OnTrackEnqueued(handler func(context.Context, domain.TrackEnqueuedEvent))
	OnTrackEnded(handler func(context.Context, domain.TrackEndedEvent))
	OnCurrentTrackRemoved(handler func(context.Context, domain.CurrentTrackRemovedEvent))
	OnPlaybackStarted(handler func(context.Context, domain.PlaybackStartedEvent))
	OnPlaylistExhausted(handler func(context.Context, domain.PlaylistExhaustedEvent))
}
