package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"discord-music-bot/internal/music"
	"discord-music-bot/internal/music/parsers"
	"discord-music-bot/internal/music/player"
	"discord-music-bot/internal/music/stream"
)

var (
	ErrNotInVoice     = errors.New("user is not in a voice channel")
	ErrNotBound       = errors.New("bot is not bound to a server yet")
	ErrNoVoiceChannel = fmt.Errorf("bot is not connected to a voice channel: %w", player.ErrOutputUnavailable)
)

// JoinUser moves the bot into the voice channel userID is in.
func (b *Bot) JoinUser(userID string) error {
	b.mu.RLock()
	guildID := b.guildID
	b.mu.RUnlock()
	if guildID == "" {
		return ErrNotBound
	}

	g, err := b.dg.State.Guild(guildID)
	if err != nil {
		return fmt.Errorf("error retrieving guild: %w", err)
	}
	for _, vs := range g.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return b.joinVoice(vs.ChannelID)
		}
	}
	return ErrNotInVoice
}

// JoinHome moves the bot back into the configured voice channel.
func (b *Bot) JoinHome() error {
	b.mu.RLock()
	home := b.voiceChannelID
	b.mu.RUnlock()
	if home == "" {
		return ErrNotBound
	}
	return b.joinVoice(home)
}

// joinVoice joins channelID, reusing the connection when already there.
func (b *Bot) joinVoice(channelID string) error {
	b.mu.Lock()
	guildID := b.guildID
	if b.vc != nil && b.vc.ChannelID == channelID {
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	vc, err := b.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	b.mu.Lock()
	b.vc = vc
	b.mu.Unlock()

	b.logger.Info().Str("channel", channelID).Msg("Joined voice channel")
	b.refreshOccupancy()
	if b.player != nil {
		go b.player.OutputReady()
	}
	return nil
}

func (b *Bot) voiceConnection() *discordgo.VoiceConnection {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.vc
}

// VoiceOutput streams tracks into the bot's current voice connection.
type VoiceOutput struct {
	bot       *Bot
	streamers []parsers.Streamer
	logger    zerolog.Logger
}

var _ player.Output = (*VoiceOutput)(nil)

// NewVoiceOutput tries streamers in order for every track.
func NewVoiceOutput(bot *Bot, streamers []parsers.Streamer) *VoiceOutput {
	return &VoiceOutput{
		bot:       bot,
		streamers: streamers,
		logger:    log.With().Str("component", "voice").Logger(),
	}
}

func (o *VoiceOutput) Play(ctx context.Context, t music.Track, onEnd func(player.EndReason, error)) (player.Playback, error) {
	vc := o.bot.voiceConnection()
	if vc == nil {
		return nil, ErrNoVoiceChannel
	}

	ts, err := stream.AutoOpenStream(ctx, t.VideoID, o.streamers)
	if err != nil {
		return nil, err
	}
	o.logger.Debug().Str("video", t.VideoID).Str("parser", ts.Parser).Msg("Stream opened")

	pb := &voicePlayback{ctrl: stream.NewControl(), src: ts}
	go func() {
		err := stream.StreamToDiscord(ts, pb.ctrl, vc)
		pb.close()

		switch {
		case pb.interrupted():
			onEnd(player.EndInterrupted, nil)
		case err != nil:
			o.logger.Warn().Err(err).Str("video", t.VideoID).Msg("Stream failed")
			onEnd(player.EndFailed, err)
		default:
			onEnd(player.EndFinished, nil)
		}
	}()

	// The channel may already be empty when a track starts.
	o.bot.refreshOccupancy()
	return pb, nil
}

type voicePlayback struct {
	ctrl      *stream.Control
	src       *stream.TrackStream
	closeOnce sync.Once
}

func (p *voicePlayback) Pause()  { p.ctrl.Pause() }
func (p *voicePlayback) Resume() { p.ctrl.Resume() }

// End stops the encoder loop and closes the source so a blocked read
// returns.
func (p *voicePlayback) End() {
	p.ctrl.Stop()
	p.close()
}

func (p *voicePlayback) close() {
	p.closeOnce.Do(func() { _ = p.src.Close() })
}

func (p *voicePlayback) interrupted() bool {
	select {
	case <-p.ctrl.Done():
		return true
	default:
		return false
	}
}
