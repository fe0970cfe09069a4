package command

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/disgoorg/snowflake/v2"
)

// Message is an inbound chat message as seen by the dispatcher.
type Message struct {
	ID         snowflake.ID
	GuildID    snowflake.ID
	ChannelID  snowflake.ID
	AuthorID   snowflake.ID
	AuthorName string
	AuthorBot  bool
	Content    string
}

// Fields is free-form metadata describing what happened, e.g. {"commandCalled": "play"}.
type Fields map[string]any

// Result is a tagged record produced while handling a message.
// A Result without fields is the empty sentinel: nothing worth reporting.
type Result struct {
	Message *Message
	Fields  Fields
}

// IsEmpty reports whether r is the empty sentinel.
func (r Result) IsEmpty() bool {
	return len(r.Fields) == 0
}

// Kind returns the alphabetically first field key, used to classify results.
func (r Result) Kind() string {
	if r.IsEmpty() {
		return ""
	}
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}

// Replier sends a direct reply into the channel a message arrived on.
type Replier interface {
	Reply(ctx context.Context, channelID snowflake.ID, content string) error
}

// Event wraps one inbound message for the duration of a single dispatch.
type Event struct {
	Message *Message

	replier Replier
	emit    func(Result)
	done    atomic.Bool
}

// NewEvent creates an Event. emit receives every result in emission order; nil discards them.
func NewEvent(msg *Message, replier Replier, emit func(Result)) *Event {
	if emit == nil {
		emit = func(Result) {}
	}
	return &Event{
		Message: msg,
		replier: replier,
		emit:    emit,
	}
}

// Emit records a result tagged with fields. Nil or empty fields emit the empty sentinel.
// Results emitted after the event has finished are discarded.
func (e *Event) Emit(fields Fields) {
	if e.done.Load() {
		return
	}
	e.emit(Result{
		Message: e.Message,
		Fields:  fields,
	})
}

// Finish ends the event's lifetime; later calls to Emit are dropped.
func (e *Event) Finish() {
	e.done.Store(true)
}

// Reply sends content back to the channel the message came from.
func (e *Event) Reply(ctx context.Context, content string) error {
	if e.replier == nil {
		return nil
	}
	return e.replier.Reply(ctx, e.Message.ChannelID, content)
}

// MockReplier is a test double for Replier. It is safe for concurrent use.
type MockReplier struct {
	Err error

	mu      sync.Mutex
	replies []string
}

// Reply records the content for testing.
func (m *MockReplier) Reply(_ context.Context, _ snowflake.ID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, content)
	return m.Err
}

// Replies returns a snapshot of everything replied so far.
func (m *MockReplier) Replies() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.replies))
	copy(result, m.replies)
	return result
}
