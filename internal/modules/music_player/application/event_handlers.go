package application

import (
	"context"
	"log/slog"

	"github.com/sglre6355/joovy/internal/modules/music_player/application/ports"
	"github.com/sglre6355/joovy/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/joovy/internal/modules/music_player/domain"
)

// PlaybackEventHandler drives the audio engine from playlist events.
type PlaybackEventHandler struct {
	playback   *usecases.PlaybackService
	subscriber ports.EventSubscriber
}

// NewPlaybackEventHandler creates a new PlaybackEventHandler.
func NewPlaybackEventHandler(
	playback *usecases.PlaybackService,
	subscriber ports.EventSubscriber,
) *PlaybackEventHandler {
	return &PlaybackEventHandler{
		playback:   playback,
		subscriber: subscriber,
	}
}

// Start registers event handlers with the subscriber.
func (h *PlaybackEventHandler) Start() {
	h.subscriber.OnTrackEnqueued(h.handleTrackEnqueued)
	h.subscriber.OnTrackEnded(h.handleTrackEnded)
	h.subscriber.OnCurrentTrackRemoved(h.handleCurrentTrackRemoved)

	slog.Debug("playback event handlers registered")
}

func (h *PlaybackEventHandler) handleTrackEnqueued(
	ctx context.Context,
	event domain.TrackEnqueuedEvent,
) {
	if !event.ShouldStart {
		return
	}

	if err := h.playback.PlayCurrent(ctx, event.GuildID); err != nil {
		slog.Error("failed to start playback after enqueue",
			"guild", event.GuildID,
			"index", event.Index,
			"error", err,
		)
	}
}

func (h *PlaybackEventHandler) handleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	if err := h.playback.HandleTrackEnded(ctx, event); err != nil {
		slog.Error("failed to advance playlist",
			"guild", event.GuildID,
			"reason", event.Reason,
			"error", err,
		)
	}
}

func (h *PlaybackEventHandler) handleCurrentTrackRemoved(
	ctx context.Context,
	event domain.CurrentTrackRemovedEvent,
) {
	if err := h.playback.PlayCurrent(ctx, event.GuildID); err != nil {
		slog.Error("failed to resume playback after removal",
			"guild", event.GuildID,
			"error", err,
		)
	}
}

// NotificationEventHandler announces playback progress in the playlist's text channel.
type NotificationEventHandler struct {
	subscriber ports.EventSubscriber
	notifier   ports.NotificationSender
}

// NewNotificationEventHandler creates a new NotificationEventHandler.
func NewNotificationEventHandler(
	subscriber ports.EventSubscriber,
	notifier ports.NotificationSender,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		subscriber: subscriber,
		notifier:   notifier,
	}
}

// Start registers event handlers with the subscriber.
func (h *NotificationEventHandler) Start() {
	h.subscriber.OnPlaybackStarted(h.handlePlaybackStarted)
	h.subscriber.OnPlaylistExhausted(h.handlePlaylistExhausted)

	slog.Debug("notification event handlers registered")
}

func (h *NotificationEventHandler) handlePlaybackStarted(
	_ context.Context,
	event domain.PlaybackStartedEvent,
) {
	if err := h.notifier.SendNowPlaying(event.NotificationChannelID, event.Track); err != nil {
		slog.Error("failed to send now playing notification",
			"guild", event.GuildID,
			"channel", event.NotificationChannelID,
			"error", err,
		)
	}
}

func (h *NotificationEventHandler) handlePlaylistExhausted(
	_ context.Context,
	event domain.PlaylistExhaustedEvent,
) {
	if err := h.notifier.SendEndOfPlaylist(event.NotificationChannelID); err != nil {
		slog.Error("failed to send end of playlist notification",
			"guild", event.GuildID,
			"channel", event.NotificationChannelID,
			"error", err,
		)
	}
}
