package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/joovy/internal/command"
)

// MessageSender is the subset of *discordgo.Session used to reply to messages.
type MessageSender interface {
	ChannelMessageSendReply(
		channelID string,
		content string,
		reference *discordgo.MessageReference,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
}

// DiscordReplier replies to one inbound message as a threaded reply.
type DiscordReplier struct {
	sender    MessageSender
	reference *discordgo.MessageReference
}

// NewDiscordReplier creates a DiscordReplier answering m.
func NewDiscordReplier(sender MessageSender, m *discordgo.Message) *DiscordReplier {
	return &DiscordReplier{
		sender:    sender,
		reference: m.Reference(),
	}
}

// Reply sends content to channelID, referencing the original message.
func (r *DiscordReplier) Reply(ctx context.Context, channelID snowflake.ID, content string) error {
	_, err := r.sender.ChannelMessageSendReply(
		channelID.String(),
		content,
		r.reference,
		discordgo.WithContext(ctx),
	)
	return err
}

// Compile-time check that DiscordReplier implements command.Replier.
var _ command.Replier = (*DiscordReplier)(nil)
