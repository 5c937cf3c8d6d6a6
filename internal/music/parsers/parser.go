// Package parsers turns a YouTube video ID into a raw PCM stream
// (s16le, 48 kHz, stereo) ready for Opus encoding.
package parsers

import (
	"context"
	"io"
)

// Streamer opens a PCM stream for a video. The returned cleanup func
// releases any child processes and must be called once playback ends.
type Streamer interface {
	Name() string
	Open(ctx context.Context, videoID string) (io.ReadCloser, func(), error)
}
