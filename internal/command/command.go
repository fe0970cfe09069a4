package command

import "context"

// Command is a registered chat command.
type Command interface {
	// Parser returns the grammar deciding when the command runs.
	Parser() *ArgParser

	// HelpText describes what the command does.
	HelpText() string

	// Handle runs the command for a message matching Parser.
	// Results are reported through ev.Emit; a returned error ends the event.
	Handle(ctx context.Context, ev *Event) error
}

// Dispatcher routes an event to exactly one command.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev *Event) error
}
