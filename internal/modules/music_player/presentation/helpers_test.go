package presentation

import (
	"context"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/joovy/internal/command"
	"github.com/sglre6355/joovy/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/joovy/internal/modules/music_player/domain"
	"github.com/sglre6355/joovy/internal/modules/music_player/infrastructure"
)

const (
	testGuild = snowflake.ID(1)
	testText  = snowflake.ID(2)
	testUser  = snowflake.ID(3)
	testVoice = snowflake.ID(100)
	loneUser  = snowflake.ID(4)
	testBot   = snowflake.ID(500)
)

type mockVoiceConnection struct {
	mu     sync.Mutex
	joins  int
	leaves int
}

func (m *mockVoiceConnection) JoinChannel(context.Context, snowflake.ID, snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joins++
	return nil
}

func (m *mockVoiceConnection) LeaveChannel(context.Context, snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaves++
	return nil
}

func (m *mockVoiceConnection) joinCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.joins
}

// mockVoiceState puts every user but loneUser in testVoice. The bot is in
// botChannel, 0 meaning it has left voice.
type mockVoiceState struct {
	botChannel snowflake.ID
}

func (m mockVoiceState) GetUserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, error) {
	switch userID {
	case loneUser:
		return 0, nil
	case testBot:
		return m.botChannel, nil
	}
	return testVoice, nil
}

type mockAudioPlayer struct {
	mu     sync.Mutex
	played []string
}

func (m *mockAudioPlayer) Play(_ context.Context, _ snowflake.ID, track domain.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.played = append(m.played, track.Link)
	return nil
}

func (m *mockAudioPlayer) Stop(context.Context, snowflake.ID) error { return nil }

// nopPublisher drops events; playback is driven explicitly in tests.
type nopPublisher struct{}

func (nopPublisher) PublishTrackEnqueued(domain.TrackEnqueuedEvent)             {}
func (nopPublisher) PublishTrackEnded(domain.TrackEndedEvent)                   {}
func (nopPublisher) PublishCurrentTrackRemoved(domain.CurrentTrackRemovedEvent) {}
func (nopPublisher) PublishPlaybackStarted(domain.PlaybackStartedEvent)         {}
func (nopPublisher) PublishPlaylistExhausted(domain.PlaylistExhaustedEvent)     {}

type fixture struct {
	registry *infrastructure.PlaylistRegistry
	voice    *mockVoiceConnection
	player   *mockAudioPlayer
	playlist *usecases.PlaylistService
	playback *usecases.PlaybackService
	router   *command.Router
	handler  *command.MessageHandler
}

func newFixture() *fixture {
	f := &fixture{
		registry: infrastructure.NewPlaylistRegistry(),
		voice:    &mockVoiceConnection{},
		player:   &mockAudioPlayer{},
	}
	f.playlist = usecases.NewPlaylistService(f.registry, f.voice, mockVoiceState{}, nopPublisher{})
	f.playback = usecases.NewPlaybackService(f.registry, f.player, nopPublisher{})
	f.router = command.NewRouter(Commands(f.playlist, f.playback)...)
	f.handler = command.NewMessageHandler(f.router, command.HandlerConfig{})
	return f
}

// resultLog collects results from concurrent events.
type resultLog struct {
	mu      sync.Mutex
	results []command.Result
}

func (l *resultLog) emit(r command.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, r)
}

func (l *resultLog) snapshot() []command.Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]command.Result, len(l.results))
	copy(out, l.results)
	return out
}

// send runs content through the full message pipeline as testUser.
func (f *fixture) send(content string) ([]command.Result, *command.MockReplier) {
	return f.sendAs(testUser, content)
}

func (f *fixture) sendAs(user snowflake.ID, content string) ([]command.Result, *command.MockReplier) {
	log := &resultLog{}
	replier := &command.MockReplier{}
	f.handler.Process(context.Background(), &command.Message{
		GuildID:   testGuild,
		ChannelID: testText,
		AuthorID:  user,
		Content:   content,
	}, replier, log.emit)
	return log.snapshot(), replier
}

func fieldsOf(results []command.Result, key string) []command.Fields {
	var out []command.Fields
	for _, r := range results {
		if _, ok := r.Fields[key]; ok {
			out = append(out, r.Fields)
		}
	}
	return out
}
