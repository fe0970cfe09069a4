package infrastructure

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// voiceUpdate is a complete voice connection as Lavalink needs it: the session
// half from VOICE_STATE_UPDATE and the server half from VOICE_SERVER_UPDATE.
type voiceUpdate struct {
	channelID *snowflake.ID
	sessionID string
	token     string
	endpoint  string
}

// voiceHandshake is the per-guild state of a voice connection in progress.
// Discord delivers the two halves in either order.
type voiceHandshake struct {
	update     voiceUpdate
	haveState  bool
	haveServer bool

	// joined is closed once both halves arrived after expect; nil when no
	// JoinChannel is waiting.
	joined chan struct{}
}

func (h *voiceHandshake) complete() bool {
	return h.haveState && h.haveServer
}

// signal wakes a waiting join, at most once.
func (h *voiceHandshake) signal() {
	if h.joined == nil {
		return
	}
	select {
	case <-h.joined:
	default:
		close(h.joined)
	}
}

// voiceHandshakes tracks the handshake of every guild the bot is joining or in.
type voiceHandshakes struct {
	mu     sync.Mutex
	guilds map[snowflake.ID]*voiceHandshake
}

func newVoiceHandshakes() *voiceHandshakes {
	return &voiceHandshakes{guilds: make(map[snowflake.ID]*voiceHandshake)}
}

// lookup returns the guild's handshake, creating it if needed.
// Must be called with mu held.
func (t *voiceHandshakes) lookup(guildID snowflake.ID) *voiceHandshake {
	h, ok := t.guilds[guildID]
	if !ok {
		h = &voiceHandshake{}
		t.guilds[guildID] = h
	}
	return h
}

// expect starts a fresh handshake for a join and returns a channel that is
// closed once both halves have arrived.
func (t *voiceHandshakes) expect(guildID snowflake.ID) <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	joined := make(chan struct{})
	t.guilds[guildID] = &voiceHandshake{joined: joined}
	return joined
}

// forget detaches a join that stopped waiting. Received halves are kept.
func (t *voiceHandshakes) forget(guildID snowflake.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if h, ok := t.guilds[guildID]; ok {
		h.joined = nil
	}
}

// state records the session half. The returned update is valid when ok is true.
func (t *voiceHandshakes) state(
	guildID snowflake.ID,
	channelID *snowflake.ID,
	sessionID string,
) (update voiceUpdate, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.lookup(guildID)
	h.update.channelID = channelID
	h.update.sessionID = sessionID
	h.haveState = true
	return t.settle(h)
}

// server records the server half. The returned update is valid when ok is true.
func (t *voiceHandshakes) server(
	guildID snowflake.ID,
	token, endpoint string,
) (update voiceUpdate, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.lookup(guildID)
	h.update.token = token
	h.update.endpoint = endpoint
	h.haveServer = true
	return t.settle(h)
}

// settle must be called with mu held.
func (t *voiceHandshakes) settle(h *voiceHandshake) (voiceUpdate, bool) {
	if !h.complete() {
		return voiceUpdate{}, false
	}
	h.signal()
	return h.update, true
}

// reset drops everything known about the guild's voice connection.
func (t *voiceHandshakes) reset(guildID snowflake.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.guilds, guildID)
}
