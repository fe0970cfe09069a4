package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/joovy/internal/modules/music_player/application/ports"
	"github.com/sglre6355/joovy/internal/modules/music_player/domain"
)

// JoinInput contains the input for the Join use case.
type JoinInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
}

// JoinOutput contains the result of the Join use case.
type JoinOutput struct {
	Playlist *domain.Playlist
	Created  bool
}

// EnqueueInput contains the input for the Enqueue use case.
type EnqueueInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
	Name                  string
	Link                  string
}

// EnqueueOutput contains the result of the Enqueue use case.
type EnqueueOutput struct {
	Track           domain.Track
	Index           int
	PlaylistCreated bool
}

// RemoveInput contains the input for the Remove use case.
type RemoveInput struct {
	GuildID snowflake.ID
	From    int
	To      *int // exclusive; nil removes only From
}

// RemoveOutput contains the result of the Remove use case.
type RemoveOutput struct {
	Removed []domain.Track
}

// PlaylistService manages the per-guild playlists and their voice sessions.
type PlaylistService struct {
	repo            domain.PlaylistRepository
	voiceConnection ports.VoiceConnection
	voiceState      ports.VoiceStateProvider
	publisher       ports.EventPublisher
}

// NewPlaylistService creates a new PlaylistService.
func NewPlaylistService(
	repo domain.PlaylistRepository,
	voiceConnection ports.VoiceConnection,
	voiceState ports.VoiceStateProvider,
	publisher ports.EventPublisher,
) *PlaylistService {
	return &PlaylistService{
		repo:            repo,
		voiceConnection: voiceConnection,
		voiceState:      voiceState,
		publisher:       publisher,
	}
}

// Join returns the guild's playlist, joining the requester's voice channel if
// the guild has none yet. Concurrent first calls share a single join.
func (s *PlaylistService) Join(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	playlist, created, err := s.repo.GetOrCreate(ctx, input.GuildID,
		func(ctx context.Context) (*domain.Playlist, error) {
			channelID, err := s.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
			if err != nil {
				return nil, fmt.Errorf("failed to look up voice state: %w", err)
			}
			if channelID == 0 {
				return nil, ErrUserNotInVoice
			}

			if err := s.voiceConnection.JoinChannel(ctx, input.GuildID, channelID); err != nil {
				return nil, fmt.Errorf("failed to join voice channel: %w", err)
			}

			slog.Info("created playlist", "guild", input.GuildID, "channel", channelID)

			return domain.NewPlaylist(input.GuildID, channelID, input.NotificationChannelID), nil
		},
	)
	if err != nil {
		return nil, err
	}

	if !created {
		playlist.SetNotificationChannelID(input.NotificationChannelID)
	}

	return &JoinOutput{Playlist: playlist, Created: created}, nil
}

// Enqueue appends a track to the guild's playlist, creating the playlist on first use.
func (s *PlaylistService) Enqueue(ctx context.Context, input EnqueueInput) (*EnqueueOutput, error) {
	if input.Link == "" {
		return nil, ErrEmptyLink
	}

	joined, err := s.Join(ctx, JoinInput{
		GuildID:               input.GuildID,
		UserID:                input.UserID,
		NotificationChannelID: input.NotificationChannelID,
	})
	if err != nil {
		return nil, err
	}

	track := domain.NewTrack(input.Name, input.Link, input.UserID)
	index, start := joined.Playlist.Add(track)

	s.publisher.PublishTrackEnqueued(domain.TrackEnqueuedEvent{
		GuildID:     input.GuildID,
		Index:       index,
		Track:       track,
		ShouldStart: start,
	})

	return &EnqueueOutput{
		Track:           track,
		Index:           index,
		PlaylistCreated: joined.Created,
	}, nil
}

// List returns the live tracks of the guild's playlist.
func (s *PlaylistService) List(guildID snowflake.ID) ([]domain.Entry, error) {
	playlist := s.repo.Get(guildID)
	if playlist == nil {
		return nil, ErrNotConnected
	}
	return playlist.Entries(), nil
}

// Remove tombstones the tracks at positions input.From up to, but not
// including, input.To. Positions without a live track are skipped.
func (s *PlaylistService) Remove(input RemoveInput) (*RemoveOutput, error) {
	end := input.From + 1
	if input.To != nil {
		if input.From > *input.To {
			return nil, &RangeError{From: input.From, To: *input.To}
		}
		end = *input.To
	}

	playlist := s.repo.Get(input.GuildID)
	if playlist == nil {
		return nil, ErrNotConnected
	}

	output := &RemoveOutput{}
	currentRemoved := false
	for i := input.From; i < end; i++ {
		track, wasCurrent, err := playlist.Remove(i)
		if errors.Is(err, domain.ErrTrackNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to remove track %d: %w", i, err)
		}
		output.Removed = append(output.Removed, track)
		currentRemoved = currentRemoved || wasCurrent
	}

	if len(output.Removed) == 0 {
		return nil, ErrInvalidPosition
	}

	if currentRemoved {
		s.publisher.PublishCurrentTrackRemoved(domain.CurrentTrackRemovedEvent{
			GuildID: input.GuildID,
		})
	}

	return output, nil
}

// Disconnect leaves the voice channel and discards the guild's playlist.
func (s *PlaylistService) Disconnect(ctx context.Context, guildID snowflake.ID) error {
	if s.repo.Get(guildID) == nil {
		return ErrNotConnected
	}

	s.repo.Delete(guildID)

	if err := s.voiceConnection.LeaveChannel(ctx, guildID); err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// HandleBotDisconnected discards the playlist of a guild whose voice session ended elsewhere.
func (s *PlaylistService) HandleBotDisconnected(guildID snowflake.ID) {
	if s.repo.Get(guildID) == nil {
		return
	}
	s.repo.Delete(guildID)
	slog.Info("discarded playlist after voice disconnect", "guild", guildID)
}
