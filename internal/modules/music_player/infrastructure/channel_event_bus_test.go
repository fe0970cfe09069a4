package infrastructure

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/joovy/internal/modules/music_player/domain"
)

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event delivery")
	}
}

func TestChannelEventBus_DeliversInOrder(t *testing.T) {
	bus := NewChannelEventBus(10)
	defer bus.Close()

	var mu sync.Mutex
	var got []int
	done := make(chan struct{})

	bus.OnTrackEnqueued(func(_ context.Context, e domain.TrackEnqueuedEvent) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.Index)
		if len(got) == 3 {
			close(done)
		}
	})

	for i := range 3 {
		bus.PublishTrackEnqueued(domain.TrackEnqueuedEvent{GuildID: 1, Index: i})
	}
	waitFor(t, done)

	mu.Lock()
	defer mu.Unlock()
	for i, index := range got {
		if index != i {
			t.Errorf("expected index %d at position %d, got %d", i, i, index)
		}
	}
}

func TestChannelEventBus_AllTopics(t *testing.T) {
	bus := NewChannelEventBus(10)
	defer bus.Close()

	guildID := snowflake.ID(1)
	var wg sync.WaitGroup
	wg.Add(5)

	bus.OnTrackEnqueued(func(context.Context, domain.TrackEnqueuedEvent) { wg.Done() })
	bus.OnTrackEnded(func(context.Context, domain.TrackEndedEvent) { wg.Done() })
	bus.OnCurrentTrackRemoved(func(context.Context, domain.CurrentTrackRemovedEvent) { wg.Done() })
	bus.OnPlaybackStarted(func(context.Context, domain.PlaybackStartedEvent) { wg.Done() })
	bus.OnPlaylistExhausted(func(context.Context, domain.PlaylistExhaustedEvent) { wg.Done() })

	bus.PublishTrackEnqueued(domain.TrackEnqueuedEvent{GuildID: guildID})
	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: guildID})
	bus.PublishCurrentTrackRemoved(domain.CurrentTrackRemovedEvent{GuildID: guildID})
	bus.PublishPlaybackStarted(domain.PlaybackStartedEvent{GuildID: guildID})
	bus.PublishPlaylistExhausted(domain.PlaylistExhaustedEvent{GuildID: guildID})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	waitFor(t, done)
}

func TestChannelEventBus_DropsWhenFull(t *testing.T) {
	bus := NewChannelEventBus(1)
	defer bus.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	var mu sync.Mutex
	delivered := 0

	bus.OnTrackEnded(func(context.Context, domain.TrackEndedEvent) {
		once.Do(func() { close(started) })
		<-block
		mu.Lock()
		delivered++
		mu.Unlock()
	})

	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1})
	waitFor(t, started)

	// One slot in the buffer, the rest must be dropped without blocking.
	for range 5 {
		bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1})
	}
	close(block)

	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		n := delivered
		mu.Unlock()
		if n == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected 2 deliveries, got %d", n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestChannelEventBus_RecoversHandlerPanic(t *testing.T) {
	bus := NewChannelEventBus(10)
	defer bus.Close()

	done := make(chan struct{})
	bus.OnPlaybackStarted(func(context.Context, domain.PlaybackStartedEvent) { panic("boom") })
	bus.OnPlaybackStarted(func(context.Context, domain.PlaybackStartedEvent) { close(done) })

	bus.PublishPlaybackStarted(domain.PlaybackStartedEvent{GuildID: 1})
	waitFor(t, done)
}

func TestChannelEventBus_Close(t *testing.T) {
	bus := NewChannelEventBus(10)
	bus.Close()

	// Publishing after close and closing twice must not panic.
	bus.PublishTrackEnqueued(domain.TrackEnqueuedEvent{GuildID: 1})
	bus.Close()
}
