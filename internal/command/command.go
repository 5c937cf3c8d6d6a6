// Package command holds the chat command model: who sent a command, the
// transport replies go through, and the descriptor each verb is built from.
package command

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"

	"discord-music-bot/internal/music/autoplay"
	"discord-music-bot/internal/music/catalog"
	"discord-music-bot/internal/music/player"
	"discord-music-bot/pkg/cmd"
)

// Sender identifies who issued a command and where.
type Sender struct {
	AuthorID      string
	AuthorName    string
	ChannelID     string
	MessageID     string
	DirectMessage bool
}

// Transport is the chat side of the bot.
type Transport interface {
	// Reply answers in channelID, addressing userID.
	Reply(channelID, userID, text string) error
	SendText(channelID, text string) error
	SendDirect(userID, text string) error
	SendEmbed(channelID string, embed *discordgo.MessageEmbed) error
	DeleteMessage(channelID, messageID string) error
	SetAvatar(ctx context.Context, image string) error
	SetUsername(name string) error
	Pin(channelID, messageID string) error
	Unpin(channelID, messageID string) error
	// Purge deletes up to limit recent messages in channelID.
	Purge(channelID string, limit int) (int, error)
	// JoinUser moves the bot into the voice channel userID is in.
	JoinUser(userID string) error
	// JoinHome moves the bot back into the configured voice channel.
	JoinHome() error
}

// AliasStore is the persisted alias table.
type AliasStore interface {
	Lookup(name string) (string, bool)
	SetAlias(name, target string) error
	DeleteAlias(name string) error
	Aliases() map[string]string
}

// Deps are the collaborators every command can reach.
type Deps struct {
	Player     *player.Player
	Catalog    *catalog.Catalog
	Aliases    AliasStore
	AutoPlay   *autoplay.List
	Transport  Transport
	Registry   *cmd.Registry
	Prefix     string
	PurgeLimit int
}

// MessageContext is the Invocation.Data of a chat command.
type MessageContext struct {
	Sender Sender
	Deps   *Deps
}

// Reply answers the sender where the command was issued.
func (m *MessageContext) Reply(text string) error {
	return m.Deps.Transport.Reply(m.Sender.ChannelID, m.Sender.AuthorID, text)
}

// Direct messages the sender privately.
func (m *MessageContext) Direct(text string) error {
	return m.Deps.Transport.SendDirect(m.Sender.AuthorID, text)
}

// DeleteInvocation removes the message that carried the command. Errors
// are ignored.
func (m *MessageContext) DeleteInvocation() {
	if m.Sender.DirectMessage || m.Sender.MessageID == "" {
		return
	}
	_ = m.Deps.Transport.DeleteMessage(m.Sender.ChannelID, m.Sender.MessageID)
}

// FromInvocation extracts the chat context, or nil for foreign adapters.
func FromInvocation(inv *cmd.Invocation) *MessageContext {
	mc, _ := inv.Data.(*MessageContext)
	return mc
}

// ChatMeta is read by the gate middlewares.
type ChatMeta interface {
	Parameters() []string
	RequireAdmin() bool
	RequireDM() bool
}

// Handler runs a verb with its positional parameters.
type Handler func(ctx context.Context, mc *MessageContext, params []string) error

// Descriptor is one chat verb.
type Descriptor struct {
	Verb       string
	Params     []string
	Help       string
	Admin      bool
	DirectOnly bool
	Handler    Handler
}

var (
	_ cmd.Command = (*Descriptor)(nil)
	_ ChatMeta    = (*Descriptor)(nil)
)

func (d *Descriptor) Name() string         { return d.Verb }
func (d *Descriptor) Description() string  { return d.Help }
func (d *Descriptor) Parameters() []string { return d.Params }
func (d *Descriptor) RequireAdmin() bool   { return d.Admin }
func (d *Descriptor) RequireDM() bool      { return d.DirectOnly }

func (d *Descriptor) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc := FromInvocation(inv)
	if mc == nil {
		return nil
	}
	return d.Handler(ctx, mc, inv.Args)
}

// Usage renders "!verb <param> <param>".
func Usage(prefix string, c cmd.Command) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(c.Name())
	if meta, ok := cmd.As[ChatMeta](c); ok {
		for _, p := range meta.Parameters() {
			sb.WriteString(" <")
			sb.WriteString(p)
			sb.WriteString(">")
		}
	}
	return sb.String()
}
