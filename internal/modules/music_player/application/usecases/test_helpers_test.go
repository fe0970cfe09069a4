package usecases

import (
	"context"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/joovy/internal/modules/music_player/domain"
)

type mockRepository struct {
	mu        sync.Mutex
	playlists map[snowflake.ID]*domain.Playlist
	deleted   []snowflake.ID
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		playlists: make(map[snowflake.ID]*domain.Playlist),
	}
}

func (m *mockRepository) Get(guildID snowflake.ID) *domain.Playlist {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playlists[guildID]
}

func (m *mockRepository) GetOrCreate(
	ctx context.Context,
	guildID snowflake.ID,
	create domain.PlaylistFactory,
) (*domain.Playlist, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.playlists[guildID]; ok {
		return p, false, nil
	}
	p, err := create(ctx)
	if err != nil {
		return nil, false, err
	}
	m.playlists[guildID] = p
	return p, true, nil
}

func (m *mockRepository) Delete(guildID snowflake.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, guildID)
	delete(m.playlists, guildID)
}

// createPlaylist stores a playlist holding the given links.
func (m *mockRepository) createPlaylist(guildID snowflake.ID, links ...string) *domain.Playlist {
	p := domain.NewPlaylist(guildID, snowflake.ID(100), snowflake.ID(200))
	for _, link := range links {
		p.Add(domain.NewTrack("/play "+link, link, snowflake.ID(3)))
	}
	m.mu.Lock()
	m.playlists[guildID] = p
	m.mu.Unlock()
	return p
}

type mockAudioPlayer struct {
	mu      sync.Mutex
	played  []string
	stopped int
	// playErrs maps a link to the error Play returns for it.
	playErrs map[string]error
	stopErr  error
}

func (m *mockAudioPlayer) Play(_ context.Context, _ snowflake.ID, track domain.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.playErrs[track.Link]; err != nil {
		return err
	}
	m.played = append(m.played, track.Link)
	return nil
}

func (m *mockAudioPlayer) Stop(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped++
	return m.stopErr
}

type mockVoiceConnection struct {
	mu       sync.Mutex
	joins    int
	leaves   int
	joinErr  error
	leaveErr error
}

func (m *mockVoiceConnection) JoinChannel(_ context.Context, _, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joins++
	return m.joinErr
}

func (m *mockVoiceConnection) LeaveChannel(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaves++
	return m.leaveErr
}

type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	err      error
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(
	_, userID snowflake.ID,
) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

type mockEventPublisher struct {
	mu                  sync.Mutex
	trackEnqueued       []domain.TrackEnqueuedEvent
	trackEnded          []domain.TrackEndedEvent
	currentTrackRemoved []domain.CurrentTrackRemovedEvent
	playbackStarted     []domain.PlaybackStartedEvent
	playlistExhausted   []domain.PlaylistExhaustedEvent
}

func (m *mockEventPublisher) PublishTrackEnqueued(event domain.TrackEnqueuedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackEnqueued = append(m.trackEnqueued, event)
}

func (m *mockEventPublisher) PublishTrackEnded(event domain.TrackEndedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackEnded = append(m.trackEnded, event)
}

func (m *mockEventPublisher) PublishCurrentTrackRemoved(event domain.CurrentTrackRemovedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTrackRemoved = append(m.currentTrackRemoved, event)
}

func (m *mockEventPublisher) PublishPlaybackStarted(event domain.PlaybackStartedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playbackStarted = append(m.playbackStarted, event)
}

func (m *mockEventPublisher) PublishPlaylistExhausted(event domain.PlaylistExhaustedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playlistExhausted = append(m.playlistExhausted, event)
}
