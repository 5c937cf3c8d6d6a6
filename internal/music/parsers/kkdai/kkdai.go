// Package kkdai streams audio through github.com/kkdai/youtube.
package kkdai

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/kkdai/youtube/v2"

	"discord-music-bot/internal/music/parsers"
	"discord-music-bot/internal/music/parsers/ffmpeg"
)

const (
	NameLink = "kkdai-link"
	NamePipe = "kkdai-pipe"
)

// Streamer resolves the best audio format and either hands its URL to
// ffmpeg (link mode) or pipes the downloaded bytes into it (pipe mode).
type Streamer struct {
	client *youtube.Client
	pipe   bool
}

var _ parsers.Streamer = (*Streamer)(nil)

func NewLink(client *youtube.Client) *Streamer {
	return &Streamer{client: client}
}

func NewPipe(client *youtube.Client) *Streamer {
	return &Streamer{client: client, pipe: true}
}

func (s *Streamer) Name() string {
	if s.pipe {
		return NamePipe
	}
	return NameLink
}

func (s *Streamer) Open(ctx context.Context, videoID string) (io.ReadCloser, func(), error) {
	video, err := s.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, nil, fmt.Errorf("[%s] youtube client error: %w", s.Name(), err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, nil, errors.New("[" + s.Name() + "] no audio formats found for video")
	}
	formats.Sort()
	format := &formats[0]

	if s.pipe {
		body, _, err := s.client.GetStreamContext(ctx, video, format)
		if err != nil {
			return nil, nil, fmt.Errorf("[%s] get stream error: %w", s.Name(), err)
		}
		return ffmpeg.FromReader(ctx, body)
	}

	link, err := s.client.GetStreamURLContext(ctx, video, format)
	if err != nil {
		return nil, nil, fmt.Errorf("[%s] get stream URL error: %w", s.Name(), err)
	}
	return ffmpeg.FromURL(ctx, link)
}
