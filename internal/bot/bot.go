package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/joovy/internal/command"
)

// Intents requested from the gateway. Message content is privileged and must
// be enabled for the application.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsMessageContent

// ResultSink consumes the results of handled messages.
type ResultSink interface {
	Consume(ctx context.Context, results <-chan command.Result)
}

// Bot manages the Discord bot lifecycle and module coordination.
type Bot struct {
	config  *Config
	sink    ResultSink
	session *discordgo.Session
	modules []Module

	router  *command.Router
	handler *command.MessageHandler

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBot creates a new Bot instance. Handled results are passed to sink.
func NewBot(cfg *Config, sink ResultSink) *Bot {
	return &Bot{
		config:  cfg,
		sink:    sink,
		modules: make([]Module, 0),
	}
}

// LoadModules loads modules from the global registry and their configuration.
func (b *Bot) LoadModules() error {
	b.modules = Modules()

	for _, mod := range b.modules {
		configurable, ok := mod.(ConfigurableModule)
		if !ok {
			continue
		}
		if err := configurable.LoadConfig(); err != nil {
			return fmt.Errorf("failed to load %s module config: %w", mod.Name(), err)
		}
	}

	return nil
}

// Start connects to Discord, initializes the modules and starts the message pipeline.
// The pipeline runs until Stop is called or ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	// Create Discord session
	session, err := discordgo.New("Bot " + b.config.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = Intents
	b.session = session

	// Open first: modules need the bot user from the ready state
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if err := b.initModules(ModuleDependencies{Session: session}); err != nil {
		return fmt.Errorf("failed to initialize modules: %w", err)
	}

	b.registerEventHandlers()
	b.startPipeline(ctx)

	b.session.AddHandler(b.handleMessageCreate)

	slog.Info("started bot",
		"user_id", b.session.State.User.ID,
		"username", b.session.State.User.Username,
		"commands", len(b.router.Commands()),
	)

	return nil
}

// Stop gracefully shuts down the bot.
func (b *Bot) Stop() error {
	// Stop accepting results before tearing the modules down
	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()

	// Shutdown modules
	for _, mod := range b.modules {
		if err := mod.Shutdown(); err != nil {
			slog.Warn("failed to shutdown module", "module", mod.Name(), "error", err)
		}
	}

	// Close Discord session
	if b.session != nil {
		return b.session.Close()
	}

	return nil
}

// initModules initializes all loaded modules.
func (b *Bot) initModules(deps ModuleDependencies) error {
	for _, mod := range b.modules {
		if err := mod.Init(deps); err != nil {
			return fmt.Errorf("failed to initialize %s module: %w", mod.Name(), err)
		}
		slog.Debug("initialized module", "module", mod.Name())
	}

	moduleNames := make([]string, len(b.modules))
	for i, mod := range b.modules {
		moduleNames[i] = mod.Name()
	}
	slog.Info("initialized modules", "modules", moduleNames)

	return nil
}

// registerEventHandlers registers all module event handlers with the session.
func (b *Bot) registerEventHandlers() {
	for _, mod := range b.modules {
		for _, handler := range mod.EventHandlers() {
			b.session.AddHandler(handler)
		}
	}
}

// collectCommands gathers the commands of all loaded modules in module order.
func (b *Bot) collectCommands() []command.Command {
	var commands []command.Command
	for _, mod := range b.modules {
		commands = append(commands, mod.Commands()...)
	}
	return commands
}

// startPipeline builds the router over the module commands and runs the
// message handler and the result sink in the background.
func (b *Bot) startPipeline(ctx context.Context) {
	b.router = command.NewRouter(b.collectCommands()...)
	b.handler = command.NewMessageHandler(b.router, b.config.HandlerConfig())

	ctx, b.cancel = context.WithCancel(ctx)

	b.wg.Go(func() {
		b.handler.Run(ctx)
	})
	b.wg.Go(func() {
		b.sink.Consume(ctx, b.handler.Results())
	})
}

// handleMessageCreate feeds gateway messages into the pipeline.
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	msg, err := toMessage(m.Message)
	if err != nil {
		slog.Warn("failed to convert message", "message_id", m.ID, "error", err)
		return
	}

	b.handler.Submit(msg, NewDiscordReplier(s, m.Message))
}

// toMessage converts a gateway message. Direct messages have no guild and get guild ID 0.
func toMessage(m *discordgo.Message) (*command.Message, error) {
	msg := &command.Message{Content: m.Content}

	var err error
	if msg.ID, err = snowflake.Parse(m.ID); err != nil {
		return nil, fmt.Errorf("failed to parse message ID: %w", err)
	}
	if msg.ChannelID, err = snowflake.Parse(m.ChannelID); err != nil {
		return nil, fmt.Errorf("failed to parse channel ID: %w", err)
	}
	if m.GuildID != "" {
		if msg.GuildID, err = snowflake.Parse(m.GuildID); err != nil {
			return nil, fmt.Errorf("failed to parse guild ID: %w", err)
		}
	}
	if m.Author != nil {
		if msg.AuthorID, err = snowflake.Parse(m.Author.ID); err != nil {
			return nil, fmt.Errorf("failed to parse author ID: %w", err)
		}
		msg.AuthorName = m.Author.Username
		msg.AuthorBot = m.Author.Bot
	}

	return msg, nil
}
