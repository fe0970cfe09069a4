package presentation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sglre6355/joovy/internal/command"
	"github.com/sglre6355/joovy/internal/modules/music_player/application/usecases"
)

// ErrInvalidArgument is returned when a command argument cannot be parsed.
var ErrInvalidArgument = errors.New("invalid argument")

// Commands returns the music player commands in registration order.
func Commands(
	playlist *usecases.PlaylistService,
	playback *usecases.PlaybackService,
) []command.Command {
	return []command.Command{
		NewPlayCommand(playlist),
		NewDisconnectCommand(playlist),
		NewQueueCommand(playlist),
		NewSkipCommand(playback),
		NewRemoveCommand(playlist),
	}
}

// PlayCommand handles /play.
type PlayCommand struct {
	parser   *command.ArgParser
	playlist *usecases.PlaylistService
}

// NewPlayCommand creates a new PlayCommand.
func NewPlayCommand(playlist *usecases.PlaylistService) *PlayCommand {
	return &PlayCommand{
		parser: command.Create("play").
			WithArg("url", func(a *command.Arg) { a.Or("query") }),
		playlist: playlist,
	}
}

func (c *PlayCommand) Parser() *command.ArgParser { return c.parser }

func (c *PlayCommand) HelpText() string {
	return "Play a track or queue it if a track is already playing."
}

// Handle enqueues whatever follows the keyword. URLs and search terms are
// told apart later, when the track is resolved for playback.
func (c *PlayCommand) Handle(ctx context.Context, ev *command.Event) error {
	msg := ev.Message

	output, err := c.playlist.Enqueue(ctx, usecases.EnqueueInput{
		GuildID:               msg.GuildID,
		UserID:                msg.AuthorID,
		NotificationChannelID: msg.ChannelID,
		Name:                  msg.Content,
		Link:                  command.Rest(msg.Content),
	})
	if err != nil {
		return err
	}

	if output.PlaylistCreated {
		ev.Emit(command.Fields{"playlistCreated": msg.GuildID.String()})
	}

	reply(ctx, ev, fmt.Sprintf("%s has been added to the queue.", output.Track.Name))

	ev.Emit(command.Fields{
		"trackAdded": output.Track.Link,
		"position":   output.Index,
	})
	return nil
}

// DisconnectCommand handles /disconnect.
type DisconnectCommand struct {
	parser   *command.ArgParser
	playlist *usecases.PlaylistService
}

// NewDisconnectCommand creates a new DisconnectCommand.
func NewDisconnectCommand(playlist *usecases.PlaylistService) *DisconnectCommand {
	return &DisconnectCommand{
		parser:   command.Create("disconnect"),
		playlist: playlist,
	}
}

func (c *DisconnectCommand) Parser() *command.ArgParser { return c.parser }

func (c *DisconnectCommand) HelpText() string {
	return "Leave the voice channel and clear the queue."
}

func (c *DisconnectCommand) Handle(ctx context.Context, ev *command.Event) error {
	guildID := ev.Message.GuildID

	if err := c.playlist.Disconnect(ctx, guildID); err != nil {
		return err
	}

	reply(ctx, ev, "Disconnected.")
	ev.Emit(command.Fields{"disconnected": guildID.String()})
	return nil
}

// QueueCommand handles /queue.
type QueueCommand struct {
	parser   *command.ArgParser
	playlist *usecases.PlaylistService
}

// NewQueueCommand creates a new QueueCommand.
func NewQueueCommand(playlist *usecases.PlaylistService) *QueueCommand {
	return &QueueCommand{
		parser:   command.Create("queue"),
		playlist: playlist,
	}
}

func (c *QueueCommand) Parser() *command.ArgParser { return c.parser }

func (c *QueueCommand) HelpText() string {
	return "Show the tracks in the queue."
}

// Handle replies with the live tracks, the current one marked. A guild
// without a voice session has an empty queue.
func (c *QueueCommand) Handle(ctx context.Context, ev *command.Event) error {
	entries, err := c.playlist.List(ev.Message.GuildID)
	if err != nil && !errors.Is(err, usecases.ErrNotConnected) {
		return err
	}

	if len(entries) == 0 {
		if err := ev.Reply(ctx, "Queue is empty"); err != nil {
			return fmt.Errorf("failed to send queue: %w", err)
		}
		ev.Emit(command.Fields{"queue": []string{}})
		return nil
	}

	names := make([]string, 0, len(entries))
	current := -1

	var b strings.Builder
	b.WriteString("Queue:")
	for _, entry := range entries {
		marker := "  "
		if entry.Current {
			marker = "▶ "
			current = entry.Index
		}
		fmt.Fprintf(&b, "\n%s`%d` %s", marker, entry.Index, entry.Track.Name)
		names = append(names, entry.Track.Name)
	}

	if err := ev.Reply(ctx, b.String()); err != nil {
		return fmt.Errorf("failed to send queue: %w", err)
	}

	ev.Emit(command.Fields{
		"queue":   names,
		"current": current,
	})
	return nil
}

// SkipCommand handles /skip.
type SkipCommand struct {
	parser   *command.ArgParser
	playback *usecases.PlaybackService
}

// NewSkipCommand creates a new SkipCommand.
func NewSkipCommand(playback *usecases.PlaybackService) *SkipCommand {
	return &SkipCommand{
		parser:   command.Create("skip"),
		playback: playback,
	}
}

func (c *SkipCommand) Parser() *command.ArgParser { return c.parser }

func (c *SkipCommand) HelpText() string {
	return "Skip the current track."
}

func (c *SkipCommand) Handle(ctx context.Context, ev *command.Event) error {
	output, err := c.playback.Skip(ctx, ev.Message.GuildID)
	if err != nil {
		return err
	}

	reply(ctx, ev, fmt.Sprintf("Skipped %s.", output.Skipped.Name))

	fields := command.Fields{"trackSkipped": output.Skipped.Link}
	if output.Next != nil {
		fields["next"] = output.Next.Link
	}
	ev.Emit(fields)
	return nil
}

// RemoveCommand handles /remove.
type RemoveCommand struct {
	parser   *command.ArgParser
	playlist *usecases.PlaylistService
}

// NewRemoveCommand creates a new RemoveCommand.
func NewRemoveCommand(playlist *usecases.PlaylistService) *RemoveCommand {
	return &RemoveCommand{
		parser:   command.Create("remove").WithArg("from").WithOptionalArg("to"),
		playlist: playlist,
	}
}

func (c *RemoveCommand) Parser() *command.ArgParser { return c.parser }

func (c *RemoveCommand) HelpText() string {
	return "Remove the track at a queue position, or the tracks from one position up to another."
}

func (c *RemoveCommand) Handle(ctx context.Context, ev *command.Event) error {
	input, err := parseRemoveInput(ev.Message)
	if err != nil {
		return err
	}

	output, err := c.playlist.Remove(input)
	if err != nil {
		return err
	}

	for _, track := range output.Removed {
		reply(ctx, ev, fmt.Sprintf("%s has been removed from the queue.", track.Name))
		ev.Emit(command.Fields{"trackRemoved": track.Link})
	}
	return nil
}

func parseRemoveInput(msg *command.Message) (usecases.RemoveInput, error) {
	tokens := strings.Fields(msg.Content)
	input := usecases.RemoveInput{GuildID: msg.GuildID}
	if len(tokens) < 2 {
		return input, fmt.Errorf("%w: missing queue position", ErrInvalidArgument)
	}

	from, err := parsePosition(tokens[1])
	if err != nil {
		return input, err
	}
	input.From = from

	if len(tokens) > 2 {
		to, err := parsePosition(tokens[2])
		if err != nil {
			return input, err
		}
		input.To = &to
	}
	return input, nil
}

func parsePosition(token string) (int, error) {
	n, err := strconv.Atoi(token)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q is not a queue position", ErrInvalidArgument, token)
	}
	return n, nil
}

// reply sends a confirmation. The command already took effect, so a failed
// confirmation is logged rather than reported as a command failure.
func reply(ctx context.Context, ev *command.Event, content string) {
	if err := ev.Reply(ctx, content); err != nil {
		slog.Warn("failed to send reply",
			"guild", ev.Message.GuildID,
			"channel", ev.Message.ChannelID,
			"error", err,
		)
	}
}

// Compile-time interface checks.
var (
	_ command.Command = (*PlayCommand)(nil)
	_ command.Command = (*DisconnectCommand)(nil)
	_ command.Command = (*QueueCommand)(nil)
	_ command.Command = (*SkipCommand)(nil)
	_ command.Command = (*RemoveCommand)(nil)
)
