package command

import (
	"context"
	"fmt"
	"strings"
)

// Help lists every registered command. It is the router's unconditional fallback.
type Help struct {
	parser   *ArgParser
	commands []Command
}

// NewHelp creates a Help command describing commands.
func NewHelp(commands []Command) *Help {
	return &Help{
		parser:   Create("help"),
		commands: commands,
	}
}

// Parser returns the grammar used to describe Help itself.
func (h *Help) Parser() *ArgParser {
	return h.parser
}

// HelpText describes the command.
func (h *Help) HelpText() string {
	return "Show the available commands."
}

// Lines returns one entry per registered command, followed by Help itself.
func (h *Help) Lines() []Fields {
	lines := make([]Fields, 0, len(h.commands)+1)
	for _, cmd := range h.commands {
		lines = append(lines, Fields{
			"command": cmd.Parser().String(),
			"help":    cmd.HelpText(),
		})
	}
	lines = append(lines, Fields{
		"command": h.parser.String(),
		"help":    h.HelpText(),
	})
	return lines
}

// Handle replies with the listing and emits one result per line.
func (h *Help) Handle(ctx context.Context, ev *Event) error {
	lines := h.Lines()

	var b strings.Builder
	b.WriteString("Available commands:")
	for _, line := range lines {
		fmt.Fprintf(&b, "\n`%s` %s", line["command"], line["help"])
	}

	if err := ev.Reply(ctx, b.String()); err != nil {
		return fmt.Errorf("failed to send help: %w", err)
	}

	for _, line := range lines {
		ev.Emit(line)
	}

	return nil
}

// Compile-time check that Help implements Command.
var _ Command = (*Help)(nil)
