package discord

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"discord-music-bot/internal/command"
	"discord-music-bot/internal/config"
	"discord-music-bot/internal/music/player"
)

const (
	dmText      = "Hey there! Use %scommands on a public chat room to see the command list."
	mentionText = "Use %scommands to see the command list."
)

// Bot is the Discord side of the music bot: one server, one text channel,
// one voice channel.
type Bot struct {
	dg     *discordgo.Session
	cfg    *config.Config
	logger zerolog.Logger

	dispatcher *command.Dispatcher
	player     *player.Player

	mu             sync.RWMutex
	guildID        string
	textChannelID  string
	voiceChannelID string // configured home channel
	vc             *discordgo.VoiceConnection
}

// New creates the session. Nothing connects until Run.
func New(cfg *config.Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	b := &Bot{
		dg:     dg,
		cfg:    cfg,
		logger: log.With().Str("component", "discord").Logger(),
	}
	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onVoiceStateUpdate)
	return b, nil
}

// Attach sets the collaborators that need the bot to exist first.
func (b *Bot) Attach(d *command.Dispatcher, p *player.Player) {
	b.dispatcher = d
	b.player = p
}

// Run opens the gateway and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if b.dispatcher == nil || b.player == nil {
		return fmt.Errorf("bot is not attached to a dispatcher and player")
	}
	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.logger.Info().Msg("Shutdown signal received, leaving voice")

	b.mu.Lock()
	vc := b.vc
	b.vc = nil
	b.mu.Unlock()
	if vc != nil {
		_ = vc.Disconnect()
	}
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("Discord bot is running")
}

// onGuildCreate binds the configured channels and joins the voice channel.
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if b.cfg.ServerName != "" && !strings.EqualFold(g.Name, b.cfg.ServerName) {
		b.logger.Debug().Str("guild", g.Name).Msg("Ignoring guild that is not the configured server")
		return
	}

	textID, voiceID := findChannels(g.Guild, b.cfg.TextChannel, b.cfg.VoiceChannel)
	if textID == "" || voiceID == "" {
		b.logger.Error().
			Str("guild", g.Name).
			Str("text_channel", b.cfg.TextChannel).
			Str("voice_channel", b.cfg.VoiceChannel).
			Msg("Configured channels not found")
		return
	}

	b.mu.Lock()
	if b.guildID != "" && b.guildID != g.ID {
		b.mu.Unlock()
		b.logger.Warn().Str("guild", g.Name).Msg("Already bound to another server, ignoring")
		return
	}
	b.guildID = g.ID
	b.textChannelID = textID
	b.voiceChannelID = voiceID
	b.mu.Unlock()

	b.logger.Info().Str("guild", g.Name).Str("text", textID).Str("voice", voiceID).Msg("Bound to server")

	if err := b.joinVoice(voiceID); err != nil {
		b.logger.Error().Err(err).Msg("Failed to join voice channel")
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}

	b.mu.RLock()
	textID := b.textChannelID
	b.mu.RUnlock()

	msg := incoming{
		Content:   m.Content,
		Direct:    m.GuildID == "",
		Channel:   m.ChannelID,
		Mentioned: mentions(m.Mentions, s.State.User.ID),
	}
	action, text := route(msg, b.cfg.CommandPrefix, textID)

	switch action {
	case actionIgnore:
		return
	case actionDirectHelp:
		b.sendOrLog(m.ChannelID, fmt.Sprintf(dmText, b.cfg.CommandPrefix))
	case actionMentionHelp:
		b.sendOrLog(m.ChannelID, fmt.Sprintf("<@%s>, "+mentionText, m.Author.ID, b.cfg.CommandPrefix))
	case actionDispatch:
		sender := command.Sender{
			AuthorID:      m.Author.ID,
			AuthorName:    m.Author.Username,
			ChannelID:     m.ChannelID,
			MessageID:     m.ID,
			DirectMessage: msg.Direct,
		}
		if err := b.dispatcher.Dispatch(context.Background(), text, sender); err != nil {
			b.logger.Debug().Err(err).Str("user", sender.AuthorName).Msg("Command did not complete")
		}
	}
}

// onVoiceStateUpdate feeds channel occupancy to the player.
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	b.mu.RLock()
	guildID := b.guildID
	b.mu.RUnlock()
	if guildID == "" || v.GuildID != guildID {
		return
	}
	b.refreshOccupancy()
}

func (b *Bot) refreshOccupancy() {
	b.mu.RLock()
	guildID := b.guildID
	var channelID string
	if b.vc != nil {
		channelID = b.vc.ChannelID
	}
	b.mu.RUnlock()
	if channelID == "" || b.player == nil {
		return
	}

	g, err := b.dg.State.Guild(guildID)
	if err != nil {
		b.logger.Warn().Err(err).Msg("Guild not in state cache")
		return
	}
	b.player.SetOccupancy(countOccupants(g, channelID))
}

func (b *Bot) sendOrLog(channelID, text string) {
	if _, err := b.dg.ChannelMessageSend(channelID, text); err != nil {
		b.logger.Warn().Err(err).Str("channel", channelID).Msg("Failed to send message")
	}
}

type routeAction int

const (
	actionIgnore routeAction = iota
	actionDispatch
	actionDirectHelp
	actionMentionHelp
)

type incoming struct {
	Content   string
	Direct    bool
	Channel   string
	Mentioned bool
}

// route decides what a message is. For commands it also returns the text
// after the prefix.
func route(m incoming, prefix, textChannelID string) (routeAction, string) {
	content := strings.TrimSpace(m.Content)

	if !m.Direct && m.Channel != textChannelID {
		return actionIgnore, ""
	}
	if rest, ok := strings.CutPrefix(content, prefix); ok && rest != "" {
		return actionDispatch, rest
	}
	if m.Direct {
		return actionDirectHelp, ""
	}
	if m.Mentioned {
		return actionMentionHelp, ""
	}
	return actionIgnore, ""
}

func mentions(users []*discordgo.User, id string) bool {
	for _, u := range users {
		if u != nil && u.ID == id {
			return true
		}
	}
	return false
}

// findChannels looks up the text and voice channels by name, ignoring case.
func findChannels(g *discordgo.Guild, textName, voiceName string) (textID, voiceID string) {
	for _, ch := range g.Channels {
		switch {
		case ch.Type == discordgo.ChannelTypeGuildText && textID == "" && strings.EqualFold(ch.Name, textName):
			textID = ch.ID
		case ch.Type == discordgo.ChannelTypeGuildVoice && voiceID == "" && strings.EqualFold(ch.Name, voiceName):
			voiceID = ch.ID
		}
	}
	return textID, voiceID
}

// countOccupants counts members in channelID, the bot included.
func countOccupants(g *discordgo.Guild, channelID string) int {
	n := 0
	for _, vs := range g.VoiceStates {
		if vs.ChannelID == channelID {
			n++
		}
	}
	return n
}
