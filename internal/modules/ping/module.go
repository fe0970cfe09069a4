package ping

import (
	"github.com/sglre6355/joovy/internal/bot"
	"github.com/sglre6355/joovy/internal/command"
)

func init() {
	bot.Register(&Module{})
}

// Module provides the /ping health check.
type Module struct {
	ping *Command
}

// Name returns the module name.
func (m *Module) Name() string {
	return "ping"
}

// Commands returns the chat commands for this module.
func (m *Module) Commands() []command.Command {
	return []command.Command{m.ping}
}

// EventHandlers returns the event handlers for this module.
func (m *Module) EventHandlers() []bot.EventHandler {
	return nil
}

// Init initializes the module.
func (m *Module) Init(deps bot.ModuleDependencies) error {
	var latency LatencyFunc
	if deps.Session != nil {
		latency = deps.Session.HeartbeatLatency
	}
	m.ping = NewCommand(latency)
	return nil
}

// Shutdown cleans up module resources.
func (m *Module) Shutdown() error {
	return nil
}
