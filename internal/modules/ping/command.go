package ping

import (
	"context"
	"fmt"
	"time"

	"github.com/sglre6355/joovy/internal/command"
)

// LatencyFunc reports the current gateway round trip.
type LatencyFunc func() time.Duration

// Command handles /ping.
type Command struct {
	parser  *command.ArgParser
	latency LatencyFunc
}

// NewCommand creates a new ping Command. latency may be nil.
func NewCommand(latency LatencyFunc) *Command {
	return &Command{
		parser:  command.Create("ping"),
		latency: latency,
	}
}

func (c *Command) Parser() *command.ArgParser { return c.parser }

func (c *Command) HelpText() string {
	return "Replies with Pong!"
}

func (c *Command) Handle(ctx context.Context, ev *command.Event) error {
	if err := ev.Reply(ctx, "Pong!"); err != nil {
		return fmt.Errorf("failed to send pong: %w", err)
	}

	fields := command.Fields{"pong": ev.Message.AuthorID.String()}
	if c.latency != nil {
		fields["latency"] = c.latency().String()
	}
	ev.Emit(fields)
	return nil
}

var _ command.Command = (*Command)(nil)
