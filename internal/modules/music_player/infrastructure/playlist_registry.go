package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/joovy/internal/modules/music_player/domain"
	"golang.org/x/sync/singleflight"
)

// ErrNilPlaylist is returned when a factory reports success without a playlist.
var ErrNilPlaylist = errors.New("playlist factory returned nil")

// PlaylistRegistry is an in-memory PlaylistRepository.
// Creation is deduplicated per guild with singleflight, so concurrent first
// callers share one factory run and no lock is held while it runs. Exactly one
// of the callers that receive a new playlist reports it as created.
type PlaylistRegistry struct {
	mu        sync.RWMutex
	playlists map[snowflake.ID]*domain.Playlist

	creating singleflight.Group
}

// NewPlaylistRegistry creates a new PlaylistRegistry.
func NewPlaylistRegistry() *PlaylistRegistry {
	return &PlaylistRegistry{
		playlists: make(map[snowflake.ID]*domain.Playlist),
	}
}

// Get returns the playlist for the given guild, or nil if none exists.
func (r *PlaylistRegistry) Get(guildID snowflake.ID) *domain.Playlist {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.playlists[guildID]
}

// creation is the value shared by one singleflight run. unclaimed is set only
// when the run built a new playlist; the first waiter to receive it reports
// the creation, even if the caller that started the run already gave up.
type creation struct {
	playlist  *domain.Playlist
	unclaimed *atomic.Bool
}

func (c creation) claim() bool {
	return c.unclaimed != nil && c.unclaimed.CompareAndSwap(true, false)
}

// GetOrCreate returns the guild's playlist, running create at most once across
// concurrent callers. The factory runs detached from ctx so a caller that gives
// up does not fail the others; ctx only bounds how long this caller waits.
func (r *PlaylistRegistry) GetOrCreate(
	ctx context.Context,
	guildID snowflake.ID,
	create domain.PlaylistFactory,
) (*domain.Playlist, bool, error) {
	if p := r.Get(guildID); p != nil {
		return p, false, nil
	}

	ch := r.creating.DoChan(guildID.String(), func() (any, error) {
		// Another flight may have finished between Get and DoChan.
		if p := r.Get(guildID); p != nil {
			return creation{playlist: p}, nil
		}

		p, err := create(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, ErrNilPlaylist
		}

		r.mu.Lock()
		r.playlists[guildID] = p
		r.mu.Unlock()

		unclaimed := &atomic.Bool{}
		unclaimed.Store(true)
		return creation{playlist: p, unclaimed: unclaimed}, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		c := res.Val.(creation)
		return c.playlist, c.claim(), nil
	case <-ctx.Done():
		return nil, false, fmt.Errorf("failed to wait for playlist creation: %w", ctx.Err())
	}
}

// Delete removes the playlist for the given guild.
func (r *PlaylistRegistry) Delete(guildID snowflake.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.playlists, guildID)
}

// Count returns the number of live playlists (for testing/monitoring).
func (r *PlaylistRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.playlists)
}

// Ensure PlaylistRegistry implements PlaylistRepository.
var _ domain.PlaylistRepository = (*PlaylistRegistry)(nil)
