// Package ytdlp streams audio through the yt-dlp binary.
package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lrstanley/go-ytdlp"

	"discord-music-bot/internal/music/parsers"
	"discord-music-bot/internal/music/parsers/ffmpeg"
)

const (
	NameLink = "ytdlp-link"
	NamePipe = "ytdlp-pipe"

	audioFormat = "bestaudio[ext=webm]/bestaudio[ext=m4a]/bestaudio/best"
)

type Streamer struct {
	proxy string
	pipe  bool
}

var _ parsers.Streamer = (*Streamer)(nil)

func NewLink(proxy string) *Streamer {
	return &Streamer{proxy: proxy}
}

func NewPipe(proxy string) *Streamer {
	return &Streamer{proxy: proxy, pipe: true}
}

func (s *Streamer) Name() string {
	if s.pipe {
		return NamePipe
	}
	return NameLink
}

func (s *Streamer) command() *ytdlp.Command {
	cmd := ytdlp.New().
		Quiet().
		NoWarnings().
		IgnoreConfig().
		NoPlaylist().
		Format(audioFormat)
	if s.proxy != "" {
		cmd.Proxy(s.proxy)
	}
	return cmd
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func (s *Streamer) Open(ctx context.Context, videoID string) (io.ReadCloser, func(), error) {
	if s.pipe {
		return s.openPipe(ctx, videoID)
	}

	res, err := s.command().
		Print("%(url)s").
		Run(ctx, "--skip-download", watchURL(videoID))
	if err != nil {
		return nil, nil, fmt.Errorf("[%s] yt-dlp get-url error: %w", s.Name(), err)
	}

	link := strings.TrimSpace(res.Stdout)
	if i := strings.IndexByte(link, '\n'); i >= 0 {
		link = link[:i]
	}
	if link == "" {
		return nil, nil, errors.New("[" + s.Name() + "] empty URL returned from yt-dlp")
	}

	return ffmpeg.FromURL(ctx, link)
}

func (s *Streamer) openPipe(ctx context.Context, videoID string) (io.ReadCloser, func(), error) {
	cmd := s.command().
		Output("-").
		NoPart().
		BuildCommand(ctx, watchURL(videoID))

	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("[%s] stdout pipe error: %w", s.Name(), err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("[%s] yt-dlp start error: %w", s.Name(), err)
	}

	pcm, stop, err := ffmpeg.FromReader(ctx, out)
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return nil, nil, err
	}

	cleanup := func() {
		stop()
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
		cmd.Wait()
	}
	return pcm, cleanup, nil
}
