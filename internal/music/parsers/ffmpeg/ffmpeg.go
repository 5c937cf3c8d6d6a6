// Package ffmpeg wraps the ffmpeg binary as a PCM transcoder.
package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
)

const (
	Channels   = 2
	SampleRate = 48000
	FrameSize  = 960 // 20ms at 48kHz
)

func pcmArgs(input string, reconnect bool) []string {
	var args []string
	if reconnect {
		args = append(args,
			"-reconnect", "1",
			"-reconnect_streamed", "1",
			"-reconnect_delay_max", "5",
		)
	}
	return append(args,
		"-i", input,
		"-f", "s16le",
		"-ar", strconv.Itoa(SampleRate),
		"-ac", strconv.Itoa(Channels),
		"-loglevel", "warning",
		"pipe:1",
	)
}

// FromURL transcodes a remote media URL to PCM.
func FromURL(ctx context.Context, link string) (io.ReadCloser, func(), error) {
	return start(exec.CommandContext(ctx, "ffmpeg", pcmArgs(link, true)...), nil)
}

// FromReader transcodes whatever src produces to PCM. src is closed by the
// returned cleanup func.
func FromReader(ctx context.Context, src io.ReadCloser) (io.ReadCloser, func(), error) {
	cmd := exec.CommandContext(ctx, "ffmpeg", pcmArgs("pipe:0", false)...)
	cmd.Stdin = src
	return start(cmd, src)
}

// start launches cmd. On failure src is closed before returning.
func start(cmd *exec.Cmd, src io.Closer) (io.ReadCloser, func(), error) {
	fail := func(err error) (io.ReadCloser, func(), error) {
		if src != nil {
			src.Close()
		}
		return nil, nil, err
	}

	reader, err := cmd.StdoutPipe()
	if err != nil {
		return fail(fmt.Errorf("stdout pipe error: %w", err))
	}

	if err := cmd.Start(); err != nil {
		return fail(fmt.Errorf("ffmpeg start error: %w", err))
	}

	cleanup := func() {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
		if src != nil {
			src.Close()
		}
		cmd.Wait()
	}

	return reader, cleanup, nil
}
