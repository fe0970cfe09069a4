package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/joovy/internal/modules/music_player/application/ports"
	"github.com/sglre6355/joovy/internal/modules/music_player/domain"
)

// SkipOutput contains the result of the Skip use case.
type SkipOutput struct {
	Skipped domain.Track
	Next    *domain.Track // nil when the playlist ran out
}

// PlaybackService keeps the audio engine in step with the playlist cursor.
type PlaybackService struct {
	repo      domain.PlaylistRepository
	player    ports.AudioPlayer
	publisher ports.EventPublisher
}

// NewPlaybackService creates a new PlaybackService.
func NewPlaybackService(
	repo domain.PlaylistRepository,
	player ports.AudioPlayer,
	publisher ports.EventPublisher,
) *PlaybackService {
	return &PlaybackService{
		repo:      repo,
		player:    player,
		publisher: publisher,
	}
}

// PlayCurrent plays the track under the cursor. Tracks the engine refuses are
// dropped and the next one is tried; once nothing is left playback stops and
// the exhaustion is published.
func (s *PlaybackService) PlayCurrent(ctx context.Context, guildID snowflake.ID) error {
	playlist := s.repo.Get(guildID)
	if playlist == nil {
		return ErrNotConnected
	}

	for {
		track, index, ok := playlist.Current()
		if !ok {
			s.stop(ctx, playlist)
			return nil
		}

		playlist.Start()
		err := s.player.Play(ctx, guildID, track)
		if err == nil {
			s.publisher.PublishPlaybackStarted(domain.PlaybackStartedEvent{
				GuildID:               guildID,
				Track:                 track,
				NotificationChannelID: playlist.NotificationChannelID(),
			})
			return nil
		}
		if ctx.Err() != nil {
			// Nothing is playing; the next enqueue must be able to start again.
			playlist.Stop()
			return fmt.Errorf("failed to play %s: %w", track.Name, err)
		}

		slog.Warn("failed to play track, advancing",
			"guild", guildID,
			"index", index,
			"link", track.Link,
			"error", err,
		)
		playlist.Advance()
	}
}

// Skip drops the current track and plays the next one.
func (s *PlaybackService) Skip(ctx context.Context, guildID snowflake.ID) (*SkipOutput, error) {
	playlist := s.repo.Get(guildID)
	if playlist == nil {
		return nil, ErrNotConnected
	}

	skipped, _, ok := playlist.Current()
	if !ok {
		return nil, ErrNotPlaying
	}

	output := &SkipOutput{Skipped: skipped}
	if next, ok := playlist.Advance(); ok {
		output.Next = &next
	}

	if err := s.PlayCurrent(ctx, guildID); err != nil {
		return nil, err
	}
	return output, nil
}

// HandleTrackEnded advances the playlist when the engine finished a track on its own.
func (s *PlaybackService) HandleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) error {
	if !event.Reason.ShouldAdvanceQueue() {
		return nil
	}

	playlist := s.repo.Get(event.GuildID)
	if playlist == nil {
		// Session was torn down while the track was playing.
		return nil
	}

	playlist.Advance()
	return s.PlayCurrent(ctx, event.GuildID)
}

func (s *PlaybackService) stop(ctx context.Context, playlist *domain.Playlist) {
	playlist.Stop()

	if err := s.player.Stop(ctx, playlist.GuildID()); err != nil {
		slog.Warn("failed to stop playback", "guild", playlist.GuildID(), "error", err)
	}

	s.publisher.PublishPlaylistExhausted(domain.PlaylistExhaustedEvent{
		GuildID:               playlist.GuildID(),
		NotificationChannelID: playlist.NotificationChannelID(),
	})
}
