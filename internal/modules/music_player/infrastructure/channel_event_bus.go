package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sglre6355/joovy/internal/modules/music_player/application/ports"
	"github.com/sglre6355/joovy/internal/modules/music_player/domain"
)

// DefaultEventBufferSize is the default buffer size for event channels.
const DefaultEventBufferSize = 100

// Compile-time checks that ChannelEventBus implements ports interfaces.
var (
	_ ports.EventPublisher  = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber = (*ChannelEventBus)(nil)
)

// topic is one buffered event stream with its own dispatcher goroutine.
type topic[T any] struct {
	name     string
	events   chan T
	mu       sync.RWMutex
	handlers []func(context.Context, T)
}

func newTopic[T any](name string, bufferSize int) *topic[T] {
	return &topic[T]{
		name:   name,
		events: make(chan T, bufferSize),
	}
}

func (t *topic[T]) subscribe(handler func(context.Context, T)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers = append(t.handlers, handler)
}

// publish never blocks: if the buffer is full the event is dropped with a warning.
func (t *topic[T]) publish(event T) {
	select {
	case t.events <- event:
		slog.Debug("published event", "type", t.name)
	default:
		slog.Warn("event buffer full, dropping event", "type", t.name)
	}
}

func (t *topic[T]) dispatch(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-t.events:
			if !ok {
				return
			}
			t.mu.RLock()
			handlers := t.handlers
			t.mu.RUnlock()
			for _, handler := range handlers {
				t.safeCall(ctx, handler, event)
			}
		}
	}
}

func (t *topic[T]) safeCall(ctx context.Context, handler func(context.Context, T), event T) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("recovered from panic in event handler", "type", t.name, "panic", r)
		}
	}()
	handler(ctx, event)
}

// ChannelEventBus provides a channel-based event bus for async event handling.
// Events of one type are delivered in publish order; different types are independent.
type ChannelEventBus struct {
	trackEnqueued       *topic[domain.TrackEnqueuedEvent]
	trackEnded          *topic[domain.TrackEndedEvent]
	currentTrackRemoved *topic[domain.CurrentTrackRemovedEvent]
	playbackStarted     *topic[domain.PlaybackStartedEvent]
	playlistExhausted   *topic[domain.PlaylistExhaustedEvent]

	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewChannelEventBus creates a new ChannelEventBus with the given buffer size.
func NewChannelEventBus(bufferSize int) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	bus := &ChannelEventBus{
		trackEnqueued:       newTopic[domain.TrackEnqueuedEvent]("TrackEnqueued", bufferSize),
		trackEnded:          newTopic[domain.TrackEndedEvent]("TrackEnded", bufferSize),
		currentTrackRemoved: newTopic[domain.CurrentTrackRemovedEvent]("CurrentTrackRemoved", bufferSize),
		playbackStarted:     newTopic[domain.PlaybackStartedEvent]("PlaybackStarted", bufferSize),
		playlistExhausted:   newTopic[domain.PlaylistExhaustedEvent]("PlaylistExhausted", bufferSize),
		cancel:              cancel,
	}

	bus.wg.Add(5)
	go bus.trackEnqueued.dispatch(ctx, &bus.wg)
	go bus.trackEnded.dispatch(ctx, &bus.wg)
	go bus.currentTrackRemoved.dispatch(ctx, &bus.wg)
	go bus.playbackStarted.dispatch(ctx, &bus.wg)
	go bus.playlistExhausted.dispatch(ctx, &bus.wg)

	return bus
}

// publishTo guards a publish against a closed bus.
func publishTo[T any](b *ChannelEventBus, t *topic[T], event T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", t.name)
		return
	}
	t.publish(event)
}

// --- EventPublisher interface ---

// PublishTrackEnqueued publishes a TrackEnqueuedEvent.
func (b *ChannelEventBus) PublishTrackEnqueued(event domain.TrackEnqueuedEvent) {
	publishTo(b, b.trackEnqueued, event)
}

// PublishTrackEnded publishes a TrackEndedEvent.
func (b *ChannelEventBus) PublishTrackEnded(event domain.TrackEndedEvent) {
	publishTo(b, b.trackEnded, event)
}

// PublishCurrentTrackRemoved publishes a CurrentTrackRemovedEvent.
func (b *ChannelEventBus) PublishCurrentTrackRemoved(event domain.CurrentTrackRemovedEvent) {
	publishTo(b, b.currentTrackRemoved, event)
}

// PublishPlaybackStarted publishes a PlaybackStartedEvent.
func (b *ChannelEventBus) PublishPlaybackStarted(event domain.PlaybackStartedEvent) {
	publishTo(b, b.playbackStarted, event)
}

// PublishPlaylistExhausted publishes a PlaylistExhaustedEvent.
func (b *ChannelEventBus) PublishPlaylistExhausted(event domain.PlaylistExhaustedEvent) {
	publishTo(b, b.playlistExhausted, event)
}

// --- EventSubscriber interface ---

// OnTrackEnqueued registers a handler for TrackEnqueuedEvent.
func (b *ChannelEventBus) OnTrackEnqueued(handler func(context.Context, domain.TrackEnqueuedEvent)) {
	b.trackEnqueued.subscribe(handler)
}

// OnTrackEnded registers a handler for TrackEndedEvent.
func (b *ChannelEventBus) OnTrackEnded(handler func(context.Context, domain.TrackEndedEvent)) {
	b.trackEnded.subscribe(handler)
}

// OnCurrentTrackRemoved registers a handler for CurrentTrackRemovedEvent.
func (b *ChannelEventBus) OnCurrentTrackRemoved(
	handler func(context.Context, domain.CurrentTrackRemovedEvent),
) {
	b.currentTrackRemoved.subscribe(handler)
}

// OnPlaybackStarted registers a handler for PlaybackStartedEvent.
func (b *ChannelEventBus) OnPlaybackStarted(
	handler func(context.Context, domain.PlaybackStartedEvent),
) {
	b.playbackStarted.subscribe(handler)
}

// OnPlaylistExhausted registers a handler for PlaylistExhaustedEvent.
func (b *ChannelEventBus) OnPlaylistExhausted(
	handler func(context.Context, domain.PlaylistExhaustedEvent),
) {
	b.playlistExhausted.subscribe(handler)
}

// Close stops the dispatchers. Events still buffered are discarded and later
// publishes are dropped.
func (b *ChannelEventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()

	close(b.trackEnqueued.events)
	close(b.trackEnded.events)
	close(b.currentTrackRemoved.events)
	close(b.playbackStarted.events)
	close(b.playlistExhausted.events)

	b.wg.Wait()

	slog.Debug("channel event bus closed")
}
