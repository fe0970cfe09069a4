package domain

import (
	"errors"
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// ErrTrackNotFound is returned when an index does not name a live track.
var ErrTrackNotFound = errors.New("track not found")

// Entry is a live track together with its position in the playlist.
type Entry struct {
	Index   int
	Track   Track
	Current bool
}

// Playlist is the ordered track list of one guild's voice session.
// Tracks are only ever appended or tombstoned, so an index stays valid for the
// playlist's lifetime. The cursor names a live track or sits past the end.
// Playlist is safe for concurrent use.
type Playlist struct {
	mu sync.Mutex

	guildID               snowflake.ID
	voiceChannelID        snowflake.ID
	notificationChannelID snowflake.ID

	tracks  []Track
	cursor  int
	playing bool
}

// NewPlaylist creates an empty Playlist bound to a voice and a text channel.
func NewPlaylist(guildID, voiceChannelID, notificationChannelID snowflake.ID) *Playlist {
	return &Playlist{
		guildID:               guildID,
		voiceChannelID:        voiceChannelID,
		notificationChannelID: notificationChannelID,
		tracks:                make([]Track, 0),
	}
}

// GuildID returns the guild ID.
func (p *Playlist) GuildID() snowflake.ID {
	// guildID is never modified after construction
	return p.guildID
}

// VoiceChannelID returns the voice channel the session is connected to.
func (p *Playlist) VoiceChannelID() snowflake.ID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.voiceChannelID
}

// NotificationChannelID returns the text channel used for announcements.
func (p *Playlist) NotificationChannelID() snowflake.ID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notificationChannelID
}

// SetNotificationChannelID moves announcements to another text channel.
func (p *Playlist) SetNotificationChannelID(channelID snowflake.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notificationChannelID = channelID
}

// Add appends a track and returns its index. start reports whether the caller
// is responsible for starting playback; it is true for exactly one of any set
// of concurrent Adds on an idle playlist.
func (p *Playlist) Add(track Track) (index int, start bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	track.removed = false
	p.tracks = append(p.tracks, track)
	index = len(p.tracks) - 1

	if !p.playing {
		p.playing = true
		start = true
	}
	return index, start
}

// Current returns the track under the cursor.
func (p *Playlist) Current() (Track, int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cursor >= len(p.tracks) {
		return Track{}, -1, false
	}
	return p.tracks[p.cursor], p.cursor, true
}

// IsPlaying reports whether playback is considered active.
func (p *Playlist) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Start marks playback active.
func (p *Playlist) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = true
}

// Stop marks playback inactive.
func (p *Playlist) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

// Advance tombstones the current track and moves the cursor to the next live one.
// It returns false, and stops playback, when the playlist is exhausted.
func (p *Playlist) Advance() (Track, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cursor < len(p.tracks) {
		p.tracks[p.cursor].removed = true
	}
	p.seekLive(p.cursor + 1)

	if p.cursor >= len(p.tracks) {
		p.playing = false
		return Track{}, false
	}
	return p.tracks[p.cursor], true
}

// Remove tombstones the track at index. wasCurrent reports whether the cursor
// had to move because the removed track was the current one.
func (p *Playlist) Remove(index int) (track Track, wasCurrent bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || index >= len(p.tracks) || p.tracks[index].removed {
		return Track{}, false, ErrTrackNotFound
	}

	p.tracks[index].removed = true
	track = p.tracks[index]

	if index == p.cursor {
		p.seekLive(index + 1)
		wasCurrent = true
	}
	return track, wasCurrent, nil
}

// Entries returns the live tracks in order, with the current one marked.
func (p *Playlist) Entries() []Entry {
	p.mu.Lock()
	defer p.mu.Unlock()

	entries := make([]Entry, 0, len(p.tracks))
	for i, t := range p.tracks {
		if t.removed {
			continue
		}
		entries = append(entries, Entry{
			Index:   i,
			Track:   t,
			Current: i == p.cursor,
		})
	}
	return entries
}

// Len returns the number of tracks ever added, tombstoned ones included.
func (p *Playlist) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tracks)
}

// seekLive moves the cursor to the first live track at or after from.
// Must be called with mu held.
func (p *Playlist) seekLive(from int) {
	p.cursor = from
	for p.cursor < len(p.tracks) && p.tracks[p.cursor].removed {
		p.cursor++
	}
}
