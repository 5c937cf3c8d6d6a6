package discord

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"discord-music-bot/internal/command"
	"discord-music-bot/internal/music"
	"discord-music-bot/internal/music/player"
	"discord-music-bot/internal/music/sources/youtube"
)

const (
	embedColor     = 0x9f00d4
	maxAvatarBytes = 8 << 20
	purgePageSize  = 100
)

var (
	_ command.Transport = (*Bot)(nil)
	_ player.Notifier   = (*Bot)(nil)
)

var avatarClient = &http.Client{Timeout: 30 * time.Second}

func (b *Bot) Reply(channelID, userID, text string) error {
	if userID != "" {
		text = fmt.Sprintf("<@%s>, %s", userID, text)
	}
	return b.SendText(channelID, text)
}

func (b *Bot) SendText(channelID, text string) error {
	_, err := b.dg.ChannelMessageSend(channelID, text)
	return err
}

func (b *Bot) SendDirect(userID, text string) error {
	ch, err := b.dg.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", err)
	}
	_, err = b.dg.ChannelMessageSend(ch.ID, text)
	return err
}

func (b *Bot) SendEmbed(channelID string, e *discordgo.MessageEmbed) error {
	_, err := b.dg.ChannelMessageSendEmbed(channelID, e)
	return err
}

func (b *Bot) DeleteMessage(channelID, messageID string) error {
	return b.dg.ChannelMessageDelete(channelID, messageID)
}

// SetAvatar downloads image and uploads it as the bot avatar.
func (b *Bot) SetAvatar(ctx context.Context, image string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, image, nil)
	if err != nil {
		return fmt.Errorf("invalid image URL: %w", err)
	}
	resp, err := avatarClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download image: %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes))
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	avatar, err := dataURI(data)
	if err != nil {
		return err
	}
	return b.updateSelf(map[string]string{"avatar": avatar})
}

func (b *Bot) SetUsername(name string) error {
	return b.updateSelf(map[string]string{"username": name})
}

func (b *Bot) updateSelf(fields map[string]string) error {
	_, err := b.dg.RequestWithBucketID(http.MethodPatch, discordgo.EndpointUser("@me"), fields, discordgo.EndpointUsers)
	return err
}

// dataURI encodes an image for the Discord avatar field.
func dataURI(data []byte) (string, error) {
	mime := http.DetectContentType(data)
	switch mime {
	case "image/png", "image/jpeg", "image/gif", "image/webp":
	default:
		return "", fmt.Errorf("unsupported image type %s", mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (b *Bot) Pin(channelID, messageID string) error {
	if err := b.checkManageMessages(channelID); err != nil {
		return err
	}
	return b.dg.ChannelMessagePin(channelID, messageID)
}

func (b *Bot) Unpin(channelID, messageID string) error {
	if err := b.checkManageMessages(channelID); err != nil {
		return err
	}
	return b.dg.ChannelMessageUnpin(channelID, messageID)
}

// Purge deletes up to limit recent messages in channelID, newest first.
func (b *Bot) Purge(channelID string, limit int) (int, error) {
	if err := b.checkManageMessages(channelID); err != nil {
		return 0, err
	}

	deleted := 0
	var lastID string
	for deleted < limit {
		page := min(purgePageSize, limit-deleted)
		msgs, err := b.dg.ChannelMessages(channelID, page, lastID, "", "")
		if err != nil {
			return deleted, err
		}
		if len(msgs) == 0 {
			break
		}

		for _, msg := range msgs {
			if err := b.dg.ChannelMessageDelete(channelID, msg.ID); err != nil {
				b.logger.Warn().Err(err).Str("message", msg.ID).Msg("Failed to delete message")
				continue
			}
			deleted++
			time.Sleep(300 * time.Millisecond)
		}

		lastID = msgs[len(msgs)-1].ID
		if len(msgs) < page {
			break
		}
	}

	b.logger.Info().Str("channel", channelID).Int("deleted", deleted).Msg("Purge complete")
	return deleted, nil
}

// SetPresence shows text as the "Listening to" status. Empty clears it.
func (b *Bot) SetPresence(text string) {
	if err := b.dg.UpdateListeningStatus(text); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to update presence")
	}
}

// Announce posts the now-playing embed in the text channel.
func (b *Bot) Announce(t music.Track) {
	channelID := b.textChannel()
	if channelID == "" {
		return
	}
	if err := b.SendEmbed(channelID, nowPlayingEmbed(t)); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to announce track")
	}
}

// Report tells the text channel a requested track could not be played.
func (b *Bot) Report(t music.Track, err error) {
	channelID := b.textChannel()
	if channelID == "" {
		return
	}

	text := fmt.Sprintf("The requested video (%s) does not exist or cannot be played.", t.VideoID)
	var apiErr *youtube.APIError
	if errors.As(err, &apiErr) {
		text = fmt.Sprintf("An error has occurred: %s - %s", apiErr.Message, apiErr.Reason)
	}
	b.sendOrLog(channelID, text)
}

func nowPlayingEmbed(t music.Track) *discordgo.MessageEmbed {
	e := embed.NewEmbed().
		SetColor(embedColor).
		SetTitle("Now playing").
		SetDescription(fmt.Sprintf("[%s](%s)", t.Title, t.URL())).
		AddField("Requested by", t.RequestedBy)
	if t.DurationSeconds > 0 {
		e = e.AddField("Duration", music.FormatDuration(t.DurationSeconds))
	}
	return e.MessageEmbed
}

func (b *Bot) textChannel() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.textChannelID
}
