package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/joovy/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/joovy/internal/modules/music_player/domain"
)

const guildID = snowflake.ID(1)

// syncBus delivers events synchronously to whatever handlers were registered.
type syncBus struct {
	trackEnqueued       []func(context.Context, domain.TrackEnqueuedEvent)
	trackEnded          []func(context.Context, domain.TrackEndedEvent)
	currentTrackRemoved []func(context.Context, domain.CurrentTrackRemovedEvent)
	playbackStarted     []func(context.Context, domain.PlaybackStartedEvent)
	playlistExhausted   []func(context.Context, domain.PlaylistExhaustedEvent)
}

func (b *syncBus) OnTrackEnqueued(h func(context.Context, domain.TrackEnqueuedEvent)) {
	b.trackEnqueued = append(b.trackEnqueued, h)
}

func (b *syncBus) OnTrackEnded(h func(context.Context, domain.TrackEndedEvent)) {
	b.trackEnded = append(b.trackEnded, h)
}

func (b *syncBus) OnCurrentTrackRemoved(h func(context.Context, domain.CurrentTrackRemovedEvent)) {
	b.currentTrackRemoved = append(b.currentTrackRemoved, h)
}

func (b *syncBus) OnPlaybackStarted(h func(context.Context, domain.PlaybackStartedEvent)) {
	b.playbackStarted = append(b.playbackStarted, h)
}

func (b *syncBus) OnPlaylistExhausted(h func(context.Context, domain.PlaylistExhaustedEvent)) {
	b.playlistExhausted = append(b.playlistExhausted, h)
}

func (b *syncBus) PublishTrackEnqueued(e domain.TrackEnqueuedEvent) {
	for _, h := range b.trackEnqueued {
		h(context.Background(), e)
	}
}

func (b *syncBus) PublishTrackEnded(e domain.TrackEndedEvent) {
	for _, h := range b.trackEnded {
		h(context.Background(), e)
	}
}

func (b *syncBus) PublishCurrentTrackRemoved(e domain.CurrentTrackRemovedEvent) {
	for _, h := range b.currentTrackRemoved {
		h(context.Background(), e)
	}
}

func (b *syncBus) PublishPlaybackStarted(e domain.PlaybackStartedEvent) {
	for _, h := range b.playbackStarted {
		h(context.Background(), e)
	}
}

func (b *syncBus) PublishPlaylistExhausted(e domain.PlaylistExhaustedEvent) {
	for _, h := range b.playlistExhausted {
		h(context.Background(), e)
	}
}

type singleRepository struct {
	playlist *domain.Playlist
}

func (r *singleRepository) Get(snowflake.ID) *domain.Playlist { return r.playlist }

func (r *singleRepository) GetOrCreate(
	ctx context.Context,
	_ snowflake.ID,
	create domain.PlaylistFactory,
) (*domain.Playlist, bool, error) {
	if r.playlist != nil {
		return r.playlist, false, nil
	}
	p, err := create(ctx)
	if err != nil {
		return nil, false, err
	}
	r.playlist = p
	return p, true, nil
}

func (r *singleRepository) Delete(snowflake.ID) { r.playlist = nil }

type recordingPlayer struct {
	mu     sync.Mutex
	played []string
	stops  int
}

func (p *recordingPlayer) Play(_ context.Context, _ snowflake.ID, track domain.Track) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, track.Link)
	return nil
}

func (p *recordingPlayer) Stop(context.Context, snowflake.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
	return nil
}

type recordingNotifier struct {
	nowPlaying []string
	ended      []snowflake.ID
	err        error
}

func (n *recordingNotifier) SendNowPlaying(_ snowflake.ID, track domain.Track) error {
	n.nowPlaying = append(n.nowPlaying, track.Name)
	return n.err
}

func (n *recordingNotifier) SendEndOfPlaylist(channelID snowflake.ID) error {
	n.ended = append(n.ended, channelID)
	return n.err
}

type harness struct {
	bus      *syncBus
	repo     *singleRepository
	player   *recordingPlayer
	notifier *recordingNotifier
}

func newHarness(links ...string) *harness {
	h := &harness{
		bus:      &syncBus{},
		repo:     &singleRepository{playlist: domain.NewPlaylist(guildID, 100, 200)},
		player:   &recordingPlayer{},
		notifier: &recordingNotifier{},
	}
	for _, link := range links {
		h.repo.playlist.Add(domain.NewTrack("/play "+link, link, 3))
	}

	playback := usecases.NewPlaybackService(h.repo, h.player, h.bus)
	NewPlaybackEventHandler(playback, h.bus).Start()
	NewNotificationEventHandler(h.bus, h.notifier).Start()
	return h
}

func TestPlaybackEventHandler_TrackEnqueued(t *testing.T) {
	tests := []struct {
		name        string
		shouldStart bool
		wantPlayed  int
	}{
		{name: "idle playlist starts", shouldStart: true, wantPlayed: 1},
		{name: "busy playlist waits", shouldStart: false, wantPlayed: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness("a")

			h.bus.PublishTrackEnqueued(domain.TrackEnqueuedEvent{
				GuildID:     guildID,
				ShouldStart: tt.shouldStart,
			})

			if len(h.player.played) != tt.wantPlayed {
				t.Errorf("expected %d plays, got %d", tt.wantPlayed, len(h.player.played))
			}
			if len(h.notifier.nowPlaying) != tt.wantPlayed {
				t.Errorf("expected %d now playing notices, got %d", tt.wantPlayed, len(h.notifier.nowPlaying))
			}
		})
	}
}

func TestPlaybackEventHandler_TrackEnded_AdvancesToEnd(t *testing.T) {
	h := newHarness("a", "b")
	h.bus.PublishTrackEnqueued(domain.TrackEnqueuedEvent{GuildID: guildID, ShouldStart: true})

	h.bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: guildID, Reason: domain.TrackEndFinished})
	h.bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: guildID, Reason: domain.TrackEndFinished})

	if len(h.player.played) != 2 || h.player.played[1] != "b" {
		t.Errorf("expected a then b, got %v", h.player.played)
	}
	want := []string{"/play a", "/play b"}
	for i, name := range want {
		if i >= len(h.notifier.nowPlaying) || h.notifier.nowPlaying[i] != name {
			t.Errorf("expected now playing %v, got %v", want, h.notifier.nowPlaying)
			break
		}
	}
	if len(h.notifier.ended) != 1 || h.notifier.ended[0] != snowflake.ID(200) {
		t.Errorf("expected end of playlist in channel 200, got %v", h.notifier.ended)
	}
}

func TestPlaybackEventHandler_TrackEnded_StoppedDoesNotAdvance(t *testing.T) {
	h := newHarness("a", "b")
	h.bus.PublishTrackEnqueued(domain.TrackEnqueuedEvent{GuildID: guildID, ShouldStart: true})

	h.bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: guildID, Reason: domain.TrackEndStopped})

	if len(h.player.played) != 1 {
		t.Errorf("expected no further plays, got %v", h.player.played)
	}
}

func TestPlaybackEventHandler_CurrentTrackRemoved(t *testing.T) {
	h := newHarness("a", "b")
	h.bus.PublishTrackEnqueued(domain.TrackEnqueuedEvent{GuildID: guildID, ShouldStart: true})

	if _, _, err := h.repo.playlist.Remove(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.bus.PublishCurrentTrackRemoved(domain.CurrentTrackRemovedEvent{GuildID: guildID})

	if len(h.player.played) != 2 || h.player.played[1] != "b" {
		t.Errorf("expected b to replace a, got %v", h.player.played)
	}
}

func TestPlaybackEventHandler_PlaylistGone(t *testing.T) {
	h := newHarness()
	h.repo.playlist = nil

	// Must only log.
	h.bus.PublishTrackEnqueued(domain.TrackEnqueuedEvent{GuildID: guildID, ShouldStart: true})
	h.bus.PublishCurrentTrackRemoved(domain.CurrentTrackRemovedEvent{GuildID: guildID})

	if len(h.player.played) != 0 {
		t.Errorf("expected nothing to play, got %v", h.player.played)
	}
}

func TestNotificationEventHandler_SendFailureIsLogged(t *testing.T) {
	h := newHarness("a")
	h.notifier.err = errors.New("missing permissions")

	h.bus.PublishPlaybackStarted(domain.PlaybackStartedEvent{GuildID: guildID, NotificationChannelID: 200})
	h.bus.PublishPlaylistExhausted(domain.PlaylistExhaustedEvent{GuildID: guildID, NotificationChannelID: 200})

	if len(h.notifier.nowPlaying) != 1 || len(h.notifier.ended) != 1 {
		t.Error("expected both notifications to be attempted")
	}
}
