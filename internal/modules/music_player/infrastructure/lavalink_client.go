package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/joovy/internal/modules/music_player/application/ports"
	"github.com/sglre6355/joovy/internal/modules/music_player/domain"
)

// DefaultVoiceJoinTimeout is used when LavalinkConfig.JoinTimeout is unset.
const DefaultVoiceJoinTimeout = 10 * time.Second

const lavalinkNodeName = "main"

var (
	// ErrNoMatches is returned when a link resolves to nothing playable.
	ErrNoMatches = errors.New("no matches found")

	// ErrNoNode is returned when no Lavalink node is available.
	ErrNoNode = errors.New("no available Lavalink node")
)

// LavalinkConfig contains Lavalink connection configuration.
type LavalinkConfig struct {
	Address     string
	Password    string
	Secure      bool
	JoinTimeout time.Duration
}

// LavalinkAdapter drives a Lavalink node: it is both the AudioPlayer and the
// VoiceConnection of the music player, and reports track ends to publisher.
type LavalinkAdapter struct {
	link        disgolink.Client
	session     *discordgo.Session
	botID       snowflake.ID
	joinTimeout time.Duration
	publisher   ports.EventPublisher
	handshakes  *voiceHandshakes
}

// NewLavalinkAdapter connects to the Lavalink node described by config.
// The session must be open so the bot's own user is known.
func NewLavalinkAdapter(
	ctx context.Context,
	session *discordgo.Session,
	publisher ports.EventPublisher,
	config LavalinkConfig,
) (*LavalinkAdapter, error) {
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot ID: %w", err)
	}

	joinTimeout := config.JoinTimeout
	if joinTimeout <= 0 {
		joinTimeout = DefaultVoiceJoinTimeout
	}

	a := &LavalinkAdapter{
		session:     session,
		botID:       botID,
		joinTimeout: joinTimeout,
		publisher:   publisher,
		handshakes:  newVoiceHandshakes(),
	}
	a.link = disgolink.New(botID,
		disgolink.WithListenerFunc(a.onTrackEnd),
		disgolink.WithListenerFunc(a.onTrackException),
		disgolink.WithListenerFunc(a.onTrackStuck),
	)

	node, err := a.link.AddNode(ctx, disgolink.NodeConfig{
		Name:     lavalinkNodeName,
		Address:  config.Address,
		Password: config.Password,
		Secure:   config.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address)
	return a, nil
}

// Link returns the underlying DisGoLink client.
func (a *LavalinkAdapter) Link() disgolink.Client {
	return a.link
}

// JoinChannel asks Discord to move the bot into channelID and blocks until
// both voice updates have reached Lavalink.
func (a *LavalinkAdapter) JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error {
	joined := a.handshakes.expect(guildID)
	defer a.handshakes.forget(guildID)

	if err := a.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, true); err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	timer := time.NewTimer(a.joinTimeout)
	defer timer.Stop()

	select {
	case <-joined:
		slog.Debug("joined voice channel", "guild", guildID, "channel", channelID)
		return nil
	case <-timer.C:
		return fmt.Errorf("failed to join voice channel: no voice server after %s", a.joinTimeout)
	case <-ctx.Done():
		return fmt.Errorf("failed to join voice channel: %w", ctx.Err())
	}
}

// LeaveChannel destroys the guild's player and leaves voice.
func (a *LavalinkAdapter) LeaveChannel(ctx context.Context, guildID snowflake.ID) error {
	if player := a.link.ExistingPlayer(guildID); player != nil {
		if err := player.Destroy(ctx); err != nil {
			slog.Warn("failed to destroy player", "guild", guildID, "error", err)
		}
	}

	if err := a.session.ChannelVoiceJoinManual(guildID.String(), "", false, false); err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// Play resolves the track's link and replaces whatever the guild's player is playing.
func (a *LavalinkAdapter) Play(ctx context.Context, guildID snowflake.ID, track domain.Track) error {
	resolved, err := a.resolve(ctx, track.Query())
	if err != nil {
		return err
	}

	// WithEncodedTrack rather than WithTrack: the latter sends userData: null,
	// which Lavalink rejects.
	if err := a.link.Player(guildID).Update(ctx, lavalink.WithEncodedTrack(resolved.Encoded)); err != nil {
		return fmt.Errorf("failed to play track: %w", err)
	}

	slog.Debug("playing track", "guild", guildID, "link", track.Link, "title", resolved.Info.Title)
	return nil
}

// Stop clears the guild's player. A guild without a player is already stopped.
func (a *LavalinkAdapter) Stop(ctx context.Context, guildID snowflake.ID) error {
	player := a.link.ExistingPlayer(guildID)
	if player == nil {
		return nil
	}

	if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}
	return nil
}

func (a *LavalinkAdapter) resolve(ctx context.Context, query domain.SearchQuery) (lavalink.Track, error) {
	node := a.link.BestNode()
	if node == nil {
		return lavalink.Track{}, ErrNoNode
	}

	result, err := node.LoadTracks(ctx, query.Identifier())
	if err != nil {
		return lavalink.Track{}, fmt.Errorf("failed to load tracks: %w", err)
	}
	return pickTrack(result)
}

// pickTrack selects the playable track out of a load result.
func pickTrack(result *lavalink.LoadResult) (lavalink.Track, error) {
	switch data := result.Data.(type) {
	case lavalink.Track:
		return data, nil

	case lavalink.Playlist:
		if len(data.Tracks) == 0 {
			return lavalink.Track{}, ErrNoMatches
		}
		if i := data.Info.SelectedTrack; i >= 0 && i < len(data.Tracks) {
			return data.Tracks[i], nil
		}
		return data.Tracks[0], nil

	case lavalink.Search:
		if len(data) == 0 {
			return lavalink.Track{}, ErrNoMatches
		}
		return data[0], nil

	case lavalink.Exception:
		return lavalink.Track{}, fmt.Errorf("failed to load track: %s", data.Message)

	default:
		return lavalink.Track{}, ErrNoMatches
	}
}

// OnVoiceServerUpdate feeds a Discord voice server update into the handshake.
func (a *LavalinkAdapter) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	if update, ok := a.handshakes.server(guildID, event.Token, event.Endpoint); ok {
		a.forward(guildID, update)
	}
}

// OnVoiceStateUpdate feeds the bot's own voice state updates into the handshake.
func (a *LavalinkAdapter) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	if event.UserID != a.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	if event.ChannelID == "" {
		a.link.OnVoiceStateUpdate(context.Background(), guildID, nil, event.SessionID)
		a.handshakes.reset(guildID)
		return
	}

	channelID, err := snowflake.Parse(event.ChannelID)
	if err != nil {
		slog.Error("failed to parse channel ID in voice state update", "error", err)
		return
	}

	if update, ok := a.handshakes.state(guildID, &channelID, event.SessionID); ok {
		a.forward(guildID, update)
	}
}

// forward hands a complete voice update to Lavalink, state first.
func (a *LavalinkAdapter) forward(guildID snowflake.ID, update voiceUpdate) {
	slog.Debug("forwarding voice update to Lavalink", "guild", guildID, "channel", update.channelID)

	a.link.OnVoiceStateUpdate(context.Background(), guildID, update.channelID, update.sessionID)
	a.link.OnVoiceServerUpdate(context.Background(), guildID, update.token, update.endpoint)
}

func (a *LavalinkAdapter) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	slog.Debug("track ended", "guild", player.GuildID(), "reason", event.Reason)

	a.publisher.PublishTrackEnded(domain.TrackEndedEvent{
		GuildID: player.GuildID(),
		Reason:  convertEndReason(event.Reason),
	})
}

func (a *LavalinkAdapter) onTrackException(player disgolink.Player, event lavalink.TrackExceptionEvent) {
	slog.Warn("track exception", "guild", player.GuildID(), "error", event.Exception.Message)
}

func (a *LavalinkAdapter) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("track stuck", "guild", player.GuildID(), "threshold", event.Threshold)
}

func convertEndReason(reason lavalink.TrackEndReason) domain.TrackEndReason {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return domain.TrackEndFinished
	case lavalink.TrackEndReasonLoadFailed:
		return domain.TrackEndLoadFailed
	case lavalink.TrackEndReasonReplaced:
		return domain.TrackEndReplaced
	case lavalink.TrackEndReasonCleanup:
		return domain.TrackEndCleanup
	default:
		return domain.TrackEndStopped
	}
}

var (
	_ ports.AudioPlayer     = (*LavalinkAdapter)(nil)
	_ ports.VoiceConnection = (*LavalinkAdapter)(nil)
)
