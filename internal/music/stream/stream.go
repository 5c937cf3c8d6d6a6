// /internal/music/stream/stream.go
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"discord-music-bot/internal/music/parsers"
)

// Registry maps parser names to streamers.
type Registry map[string]parsers.Streamer

func NewRegistry(streamers ...parsers.Streamer) Registry {
	r := make(Registry, len(streamers))
	for _, s := range streamers {
		r[s.Name()] = s
	}
	return r
}

// Select returns the streamers named in order. Unknown names are logged
// and skipped.
func (r Registry) Select(names []string) []parsers.Streamer {
	var out []parsers.Streamer
	for _, name := range names {
		name = strings.TrimSpace(name)
		s, ok := r[name]
		if !ok {
			log.Warn().Str("component", "stream").Str("parser", name).Msg("Unknown parser, skipping")
			continue
		}
		out = append(out, s)
	}
	return out
}

// TrackStream is an open PCM stream. Close releases the parser's processes.
type TrackStream struct {
	io.ReadCloser
	Parser  string
	cleanup func()
}

func (t *TrackStream) Close() error {
	err := t.ReadCloser.Close()
	if t.cleanup != nil {
		t.cleanup()
	}
	return err
}

// AutoOpenStream tries each streamer in turn and returns the first stream
// that opens.
func AutoOpenStream(ctx context.Context, videoID string, streamers []parsers.Streamer) (*TrackStream, error) {
	if len(streamers) == 0 {
		return nil, errors.New("no parsers configured")
	}

	var errs []error
	for _, s := range streamers {
		r, cleanup, err := s.Open(ctx, videoID)
		if err == nil {
			return &TrackStream{ReadCloser: r, Parser: s.Name(), cleanup: cleanup}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		errs = append(errs, fmt.Errorf("parser %s failed: %w", s.Name(), err))
		log.Warn().Str("component", "stream").Str("parser", s.Name()).Str("video", videoID).Err(err).
			Msg("Parser failed, trying next parser")
	}

	return nil, fmt.Errorf("all parsers failed for video %s: %w", videoID, errors.Join(errs...))
}
