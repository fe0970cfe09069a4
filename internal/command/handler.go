package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Defaults for HandlerConfig.
const (
	DefaultInboundBuffer = 64
	DefaultMaxConcurrent = 16
	DefaultResultBuffer  = 256
)

// limiterSweepThreshold is the number of tracked authors that triggers the
// first sweep of idle rate limiters.
const limiterSweepThreshold = 1024

// replyTimeout bounds the error reply, which may outlive the command's own deadline.
const replyTimeout = 10 * time.Second

// HandlerConfig tunes the message pipeline.
type HandlerConfig struct {
	InboundBuffer int           // queued messages before Submit starts dropping
	MaxConcurrent int           // messages processed at the same time
	Timeout       time.Duration // per-message deadline, 0 disables it
	RateLimit     rate.Limit    // commands per second per author, 0 disables throttling
	RateBurst     int
}

type inboundMessage struct {
	msg     *Message
	replier Replier
}

// MessageHandler is the top-level pipeline: it filters messages, dispatches
// commands and reports their results on a single outbound channel.
type MessageHandler struct {
	dispatcher Dispatcher
	config     HandlerConfig

	inbound chan inboundMessage
	results chan Result

	limiterMu      sync.Mutex
	limiters       map[snowflake.ID]*rate.Limiter
	limiterSweepAt int
}

// NewMessageHandler creates a MessageHandler dispatching to d.
func NewMessageHandler(d Dispatcher, config HandlerConfig) *MessageHandler {
	if config.InboundBuffer <= 0 {
		config.InboundBuffer = DefaultInboundBuffer
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = DefaultMaxConcurrent
	}
	if config.RateBurst <= 0 {
		config.RateBurst = 1
	}

	return &MessageHandler{
		dispatcher: d,
		config:     config,
		inbound:    make(chan inboundMessage, config.InboundBuffer),
		results:    make(chan Result, DefaultResultBuffer),
		limiters:   make(map[snowflake.ID]*rate.Limiter),

		limiterSweepAt: limiterSweepThreshold,
	}
}

// Submit queues a message for processing.
// Non-blocking: if the inbound buffer is full, the message is dropped with a warning.
func (h *MessageHandler) Submit(msg *Message, replier Replier) bool {
	select {
	case h.inbound <- inboundMessage{msg: msg, replier: replier}:
		return true
	default:
		slog.Warn("inbound buffer full, dropping message",
			"guild", msg.GuildID,
			"channel", msg.ChannelID,
		)
		return false
	}
}

// Results returns the outbound stream of non-empty results.
// The channel is closed once Run has returned.
func (h *MessageHandler) Results() <-chan Result {
	return h.results
}

// Run processes queued messages until ctx is cancelled, each in its own task.
// In-flight messages are awaited before the results channel is closed.
func (h *MessageHandler) Run(ctx context.Context) {
	defer close(h.results)

	var g errgroup.Group
	g.SetLimit(h.config.MaxConcurrent)

	for {
		select {
		case <-ctx.Done():
			_ = g.Wait()
			return
		case in := <-h.inbound:
			g.Go(func() error {
				h.Process(ctx, in.msg, in.replier, h.forward(ctx))
				return nil
			})
		}
	}
}

func (h *MessageHandler) forward(ctx context.Context) func(Result) {
	return func(r Result) {
		select {
		case h.results <- r:
		case <-ctx.Done():
			slog.Debug("dropped result after shutdown", "kind", r.Kind())
		}
	}
}

// Process runs one message through the pipeline synchronously. Every non-empty
// result is passed to emit in emission order. Failures are answered with a
// direct reply carrying the error text and end the event.
func (h *MessageHandler) Process(
	ctx context.Context,
	msg *Message,
	replier Replier,
	emit func(Result),
) {
	ev := NewEvent(msg, replier, func(r Result) {
		if r.IsEmpty() {
			return
		}
		emit(r)
	})
	defer ev.Finish()

	switch {
	case msg.AuthorBot:
		ev.Emit(Fields{"ignored": fmt.Sprintf("%s was sent by a bot", msg.Content)})
		return
	case !strings.HasPrefix(msg.Content, Prefix):
		ev.Emit(Fields{"ignored": fmt.Sprintf("%s does not start with a slash", msg.Content)})
		return
	case !h.allow(msg.AuthorID):
		ev.Emit(Fields{"ignored": fmt.Sprintf("%s was rate limited", msg.Content)})
		return
	}

	dispatchCtx := ctx
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		dispatchCtx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	err := h.dispatch(dispatchCtx, ev)
	if err == nil {
		return
	}

	// Nothing emitted from here on belongs to the event anymore.
	ev.Finish()

	slog.Warn("failed to handle command",
		"guild", msg.GuildID,
		"content", msg.Content,
		"error", err,
	)

	replyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), replyTimeout)
	defer cancel()

	if err := ev.Reply(replyCtx, err.Error()); err != nil {
		slog.Error("failed to send error reply", "channel", msg.ChannelID, "error", err)
	}
}

// dispatch converts a panicking command into an ordinary failure.
func (h *MessageHandler) dispatch(ctx context.Context, ev *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("recovered from panic while handling command", "panic", r)
			err = fmt.Errorf("%v", r)
		}
	}()

	return h.dispatcher.Dispatch(ctx, ev)
}

// allow applies the per-author token bucket.
func (h *MessageHandler) allow(authorID snowflake.ID) bool {
	if h.config.RateLimit <= 0 {
		return true
	}

	h.limiterMu.Lock()
	limiter, ok := h.limiters[authorID]
	if !ok {
		if len(h.limiters) >= h.limiterSweepAt {
			h.sweepLimiters(time.Now())
		}
		limiter = rate.NewLimiter(h.config.RateLimit, h.config.RateBurst)
		h.limiters[authorID] = limiter
	}
	h.limiterMu.Unlock()

	return limiter.Allow()
}

// sweepLimiters drops limiters whose bucket has refilled to burst; such a
// limiter behaves exactly like a new one. The next sweep waits until the map
// doubles so the cost stays amortized. Must be called with limiterMu held.
func (h *MessageHandler) sweepLimiters(now time.Time) {
	burst := float64(h.config.RateBurst)
	for id, limiter := range h.limiters {
		if limiter.TokensAt(now) >= burst {
			delete(h.limiters, id)
		}
	}
	h.limiterSweepAt = max(limiterSweepThreshold, 2*len(h.limiters))
}
