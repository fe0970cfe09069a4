package command

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/sglre6355/joovy/internal/command"

// Compile-time check that Router implements Dispatcher.
var _ Dispatcher = (*Router)(nil)

// Router holds the ordered command list and the Help fallback built from it.
type Router struct {
	commands []Command
	help     *Help
	tracer   trace.Tracer
}

// NewRouter registers cmds in order. Help is constructed afterwards from the
// finalized list, so it can describe every command without being one of them.
func NewRouter(cmds ...Command) *Router {
	commands := make([]Command, len(cmds))
	copy(commands, cmds)

	return &Router{
		commands: commands,
		help:     NewHelp(commands),
		tracer:   otel.Tracer(tracerName),
	}
}

// Commands returns a copy of the registered commands in registration order.
func (r *Router) Commands() []Command {
	result := make([]Command, len(r.commands))
	copy(result, r.commands)
	return result
}

// Help returns the fallback command.
func (r *Router) Help() *Help {
	return r.help
}

// Match returns the first registered command whose grammar accepts content, or nil.
func (r *Router) Match(content string) Command {
	for _, cmd := range r.commands {
		if cmd.Parser().Is(content) {
			return cmd
		}
	}
	return nil
}

// Dispatch invokes exactly one command for ev: the first match, or Help.
func (r *Router) Dispatch(ctx context.Context, ev *Event) error {
	content := ev.Message.Content

	ctx, span := r.tracer.Start(ctx, "command.dispatch",
		trace.WithAttributes(attribute.String("guild.id", ev.Message.GuildID.String())),
	)
	defer span.End()

	cmd := r.Match(content)
	if cmd == nil {
		span.SetAttributes(attribute.String("command.name", r.help.Parser().Command()))
		slog.Debug("found no matching command", "content", content)

		ev.Emit(Fields{"invalidCommand": content})
		return r.record(span, r.help.Handle(ctx, ev))
	}

	name := cmd.Parser().Command()
	span.SetAttributes(attribute.String("command.name", name))

	ev.Emit(Fields{"commandCalled": name})
	return r.record(span, cmd.Handle(ctx, ev))
}

func (r *Router) record(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
